package donations

import "context"

type Repository interface {
	Create(ctx context.Context, o DonationOffer) error
	Update(ctx context.Context, o DonationOffer) error
	GetByID(ctx context.Context, id string) (DonationOffer, error)
	Delete(ctx context.Context, id string) error

	ListByShelter(ctx context.Context, shelterID string) ([]DonationOffer, error)
	ListByDonor(ctx context.Context, donorID string) ([]DonationOffer, error)
	ListAll(ctx context.Context) ([]DonationOffer, error)
}
