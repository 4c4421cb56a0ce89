package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-adoption-market/internal/domain/adoptions"
)

type adoptionRepo struct {
	mu   sync.RWMutex
	byID map[string]adoptions.AdoptionRequest
}

func NewAdoptionRepo() adoptions.Repository {
	return &adoptionRepo{
		byID: make(map[string]adoptions.AdoptionRequest),
	}
}

func (r *adoptionRepo) Create(ctx context.Context, req adoptions.AdoptionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(req.ID) == "" {
		return errors.New("request id required")
	}
	if _, exists := r.byID[req.ID]; exists {
		return errors.New("request already exists")
	}
	// Guard de unicidad: un solo pending por pet, también acá en storage.
	if req.Status == adoptions.StatusPending {
		for _, other := range r.byID {
			if other.PetID == req.PetID && other.Status == adoptions.StatusPending {
				return errors.New("pet already has a pending request")
			}
		}
	}
	r.byID[req.ID] = req
	return nil
}

func (r *adoptionRepo) Update(ctx context.Context, req adoptions.AdoptionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[req.ID]; !exists {
		return ErrNotFound
	}
	r.byID[req.ID] = req
	return nil
}

func (r *adoptionRepo) GetByID(ctx context.Context, id string) (adoptions.AdoptionRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.byID[id]
	if !ok {
		return adoptions.AdoptionRequest{}, ErrNotFound
	}
	return req, nil
}

func (r *adoptionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *adoptionRepo) GetPendingByPet(ctx context.Context, petID string) (adoptions.AdoptionRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, req := range r.byID {
		if req.PetID == petID && req.Status == adoptions.StatusPending {
			return req, nil
		}
	}
	return adoptions.AdoptionRequest{}, ErrNotFound
}

func (r *adoptionRepo) ListByApplicant(ctx context.Context, applicantID string) ([]adoptions.AdoptionRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]adoptions.AdoptionRequest, 0)
	for _, req := range r.byID {
		if req.ApplicantID == applicantID {
			out = append(out, req)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *adoptionRepo) ListByPets(ctx context.Context, petIDs []string) ([]adoptions.AdoptionRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(petIDs))
	for _, id := range petIDs {
		wanted[id] = struct{}{}
	}

	out := make([]adoptions.AdoptionRequest, 0)
	for _, req := range r.byID {
		if _, ok := wanted[req.PetID]; ok {
			out = append(out, req)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *adoptionRepo) ListAll(ctx context.Context) ([]adoptions.AdoptionRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]adoptions.AdoptionRequest, 0, len(r.byID))
	for _, req := range r.byID {
		out = append(out, req)
	}
	sortByCreated(out)
	return out, nil
}

func sortByCreated(reqs []adoptions.AdoptionRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.Before(reqs[j].CreatedAt)
	})
}
