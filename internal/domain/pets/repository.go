package pets

import "context"

// ListFilter filtra listados. Campos vacíos = sin filtro.
type ListFilter struct {
	Status     AdoptionStatus
	UploadedBy string
}

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ListFilter) ([]Pet, error)

	// UpdateStatus es el primitive condicional (compare-and-swap):
	// transiciona id de `from` a `to` solo si el status actual sigue siendo
	// `from`; si no, devuelve ErrConflict. Es lo que garantiza un solo claim
	// activo por mascota aunque dos Submit pasen el precheck a la vez.
	UpdateStatus(ctx context.Context, id string, from, to AdoptionStatus) error
}
