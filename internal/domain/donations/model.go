package donations

import "time"

// Status de la oferta de donación.
// @Enum pending, accepted, rejected, completed
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// DonationOffer es el ofrecimiento de un donante hacia un shelter.
// Su creación crea también el Pet (en estado intake-pending); PetID apunta
// a ese registro.
type DonationOffer struct {
	ID        string
	PetID     string
	ShelterID string

	DonorID    string
	DonorName  string
	DonorPhone string
	DonorEmail string

	Reason     string
	PickupDate *time.Time

	Status Status

	ProcessedBy string
	ProcessedAt *time.Time
	Notes       string

	CreatedAt time.Time
	UpdatedAt time.Time
}
