package adoptions

import "context"

type Repository interface {
	Create(ctx context.Context, r AdoptionRequest) error
	Update(ctx context.Context, r AdoptionRequest) error
	GetByID(ctx context.Context, id string) (AdoptionRequest, error)
	Delete(ctx context.Context, id string) error

	// GetPendingByPet devuelve el request pending del pet, o ErrNotFound si
	// no hay ninguno. Respaldada por el guard de unicidad del storage.
	GetPendingByPet(ctx context.Context, petID string) (AdoptionRequest, error)

	ListByApplicant(ctx context.Context, applicantID string) ([]AdoptionRequest, error)

	// ListByPets alimenta el scope de shelters: requests cuyos pets
	// pertenecen al shelter. El filtro se aplica en el query, nunca post-hoc.
	ListByPets(ctx context.Context, petIDs []string) ([]AdoptionRequest, error)

	ListAll(ctx context.Context) ([]AdoptionRequest, error)
}
