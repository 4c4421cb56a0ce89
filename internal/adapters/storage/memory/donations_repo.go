package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-adoption-market/internal/domain/donations"
)

type donationRepo struct {
	mu   sync.RWMutex
	byID map[string]donations.DonationOffer
}

func NewDonationRepo() donations.Repository {
	return &donationRepo{
		byID: make(map[string]donations.DonationOffer),
	}
}

func (r *donationRepo) Create(ctx context.Context, o donations.DonationOffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return errors.New("offer id required")
	}
	if _, exists := r.byID[o.ID]; exists {
		return errors.New("offer already exists")
	}
	r.byID[o.ID] = o
	return nil
}

func (r *donationRepo) Update(ctx context.Context, o donations.DonationOffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[o.ID]; !exists {
		return ErrNotFound
	}
	r.byID[o.ID] = o
	return nil
}

func (r *donationRepo) GetByID(ctx context.Context, id string) (donations.DonationOffer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return donations.DonationOffer{}, ErrNotFound
	}
	return o, nil
}

func (r *donationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *donationRepo) ListByShelter(ctx context.Context, shelterID string) ([]donations.DonationOffer, error) {
	return r.list(func(o donations.DonationOffer) bool { return o.ShelterID == shelterID })
}

func (r *donationRepo) ListByDonor(ctx context.Context, donorID string) ([]donations.DonationOffer, error) {
	return r.list(func(o donations.DonationOffer) bool { return o.DonorID == donorID })
}

func (r *donationRepo) ListAll(ctx context.Context) ([]donations.DonationOffer, error) {
	return r.list(func(donations.DonationOffer) bool { return true })
}

func (r *donationRepo) list(keep func(donations.DonationOffer) bool) ([]donations.DonationOffer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]donations.DonationOffer, 0)
	for _, o := range r.byID {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
