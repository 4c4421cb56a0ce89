package pets

import "time"

// AdoptionStatus es el campo de lifecycle que comparten los dos workflows.
// @Enum available, pending, adopted
type AdoptionStatus string

const (
	StatusAvailable AdoptionStatus = "available"
	StatusPending   AdoptionStatus = "pending"
	StatusAdopted   AdoptionStatus = "adopted"
)

// Species define las especies soportadas.
// @Enum dog, cat, other
type Species string

const (
	SpeciesDog   Species = "dog"
	SpeciesCat   Species = "cat"
	SpeciesOther Species = "other"
)

// Sex define el sexo de la mascota.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Pet es un listing del marketplace. UploadedBy es el shelter (o el donante
// que actuó como uploader) dueño del listing: solo él o un admin autorizan
// transiciones disparadas por decisiones de adopción/donación.
type Pet struct {
	ID         string
	UploadedBy string

	Name        string
	Species     Species
	Breed       string
	Sex         Sex
	AgeMonths   int
	Description string

	// Imágenes inline-encoded (data URIs); los techos se aplican al crear.
	Images []string

	AdoptionStatus AdoptionStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}
