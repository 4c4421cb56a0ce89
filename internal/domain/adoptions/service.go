package adoptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption-market/internal/domain/authz"
	"pet-adoption-market/internal/domain/pets"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("adoption request not found")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("rate limit exceeded")

	// Estados inválidos de negocio (no races; no tiene sentido reintentar).
	ErrPetNotAvailable  = errors.New("pet is not available")
	ErrDuplicatePending = errors.New("pet already has a pending request")
	ErrInvalidState     = errors.New("invalid request state")
)

type Service struct {
	repo    Repository
	pets    *pets.Service
	now     func() time.Time
	limiter *rate.Limiter
}

func NewService(repo Repository, petsSvc *pets.Service) *Service {
	return &Service{
		repo:    repo,
		pets:    petsSvc,
		now:     time.Now,
		limiter: rate.NewLimiter(rate.Every(time.Second), 30),
	}
}

type SubmitInput struct {
	PetID        string
	Message      string
	ContactPhone string
}

// Submit crea la postulación y reclama el pet en un solo paso lógico:
// primero el CAS available→pending (quien pierde la carrera recibe
// pets.ErrConflict), después el insert del request. Si el insert falla se
// compensa el CAS para no dejar el pet colgado en pending.
func (s *Service) Submit(ctx context.Context, actor authz.Actor, in SubmitInput) (AdoptionRequest, error) {
	if d := authz.Authorize(actor, authz.ActionSubmitAdoption, authz.Resource{}); !d.Allowed {
		return AdoptionRequest{}, ErrForbidden
	}
	if !s.limiter.Allow() {
		return AdoptionRequest{}, ErrRateLimited
	}

	petID := strings.TrimSpace(in.PetID)
	if petID == "" {
		return AdoptionRequest{}, ErrInvalidInput
	}

	p, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return AdoptionRequest{}, fmt.Errorf("%w: %s", pets.ErrNotFound, petID)
	}
	if p.AdoptionStatus != pets.StatusAvailable {
		// Distinguimos "ya hay una postulación en curso" del resto.
		if _, err := s.repo.GetPendingByPet(ctx, petID); err == nil {
			return AdoptionRequest{}, ErrDuplicatePending
		}
		return AdoptionRequest{}, ErrPetNotAvailable
	}

	// Claim exclusivo. El precheck de arriba solo mejora el mensaje de error;
	// la garantía real es este conditional write.
	if err := s.pets.TransitionStatus(ctx, petID, pets.StatusAvailable, pets.StatusPending); err != nil {
		return AdoptionRequest{}, err
	}

	now := s.now()
	r := AdoptionRequest{
		ID:           uuid.NewString(),
		PetID:        petID,
		ApplicantID:  actor.ID,
		Message:      strings.TrimSpace(in.Message),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		// Compensación best-effort: soltar el claim que acabamos de tomar.
		_ = s.pets.TransitionStatus(ctx, petID, pets.StatusPending, pets.StatusAvailable)
		return AdoptionRequest{}, err
	}
	return r, nil
}

type DecideInput struct {
	Status          Status
	RejectionReason string
}

// Decide aplica la decisión del shelter dueño (o admin) y su efecto sobre
// el pet:
//   - approved  → pet adopted, approvedBy/approvedAt
//   - rejected  → pet vuelve al pool (available), rejectionReason
//   - completed → bookkeeping, el pet no se toca (ya está adopted)
//   - pending   → re-open administrativo, pet vuelve a pending
func (s *Service) Decide(ctx context.Context, actor authz.Actor, requestID string, in DecideInput) (AdoptionRequest, error) {
	r, err := s.repo.GetByID(ctx, strings.TrimSpace(requestID))
	if err != nil {
		return AdoptionRequest{}, ErrNotFound
	}

	ownerID, err := s.pets.OwnerOf(ctx, r.PetID)
	if err != nil {
		return AdoptionRequest{}, err
	}
	if d := authz.Authorize(actor, authz.ActionDecideAdoption, authz.Resource{PetOwnerID: ownerID}); !d.Allowed {
		return AdoptionRequest{}, ErrForbidden
	}

	now := s.now()
	switch in.Status {
	case StatusApproved:
		r.Status = StatusApproved
		r.ApprovedBy = actor.ID
		r.ApprovedAt = &now
		if err := s.pets.ForceStatus(ctx, r.PetID, pets.StatusAdopted); err != nil {
			return AdoptionRequest{}, err
		}

	case StatusRejected:
		r.Status = StatusRejected
		r.RejectionReason = strings.TrimSpace(in.RejectionReason)
		if err := s.pets.ForceStatus(ctx, r.PetID, pets.StatusAvailable); err != nil {
			return AdoptionRequest{}, err
		}

	case StatusCompleted:
		r.Status = StatusCompleted
		r.CompletedAt = &now

	case StatusPending:
		// Re-open: no puede violar el invariante de un solo pending por pet.
		if existing, err := s.repo.GetPendingByPet(ctx, r.PetID); err == nil && existing.ID != r.ID {
			return AdoptionRequest{}, ErrDuplicatePending
		}
		r.Status = StatusPending
		if err := s.pets.ForceStatus(ctx, r.PetID, pets.StatusPending); err != nil {
			return AdoptionRequest{}, err
		}

	default:
		return AdoptionRequest{}, ErrInvalidState
	}

	r.UpdatedAt = now
	if err := s.repo.Update(ctx, r); err != nil {
		return AdoptionRequest{}, err
	}
	return r, nil
}

// Delete (admin) borra el request. Si seguía pending, revierte el pet a
// available — vía CAS, para no pisar un status ya decidido por otra vía
// (stale revert).
func (s *Service) Delete(ctx context.Context, actor authz.Actor, requestID string) error {
	if d := authz.Authorize(actor, authz.ActionDeleteAdoption, authz.Resource{}); !d.Allowed {
		return ErrForbidden
	}

	r, err := s.repo.GetByID(ctx, strings.TrimSpace(requestID))
	if err != nil {
		return ErrNotFound
	}

	if r.Status == StatusPending {
		// Si el CAS falla, el pet ya no estaba pending: alguien decidió en el
		// medio y no hay nada que revertir.
		if err := s.pets.TransitionStatus(ctx, r.PetID, pets.StatusPending, pets.StatusAvailable); err != nil &&
			!errors.Is(err, pets.ErrConflict) {
			return err
		}
	}

	return s.repo.Delete(ctx, r.ID)
}

// Withdraw es la cancelación del propio applicant, solo sobre su request y
// solo mientras sigue pending.
func (s *Service) Withdraw(ctx context.Context, actor authz.Actor, requestID string) error {
	r, err := s.repo.GetByID(ctx, strings.TrimSpace(requestID))
	if err != nil {
		return ErrNotFound
	}
	if d := authz.Authorize(actor, authz.ActionWithdrawAdoption, authz.Resource{ApplicantID: r.ApplicantID}); !d.Allowed {
		return ErrForbidden
	}
	if r.Status != StatusPending {
		return ErrInvalidState
	}

	if err := s.pets.TransitionStatus(ctx, r.PetID, pets.StatusPending, pets.StatusAvailable); err != nil &&
		!errors.Is(err, pets.ErrConflict) {
		return err
	}
	return s.repo.Delete(ctx, r.ID)
}

// Get aplica el mismo scope que List para un solo request.
func (s *Service) Get(ctx context.Context, actor authz.Actor, requestID string) (AdoptionRequest, error) {
	r, err := s.repo.GetByID(ctx, strings.TrimSpace(requestID))
	if err != nil {
		return AdoptionRequest{}, ErrNotFound
	}

	switch actor.Role {
	case authz.RoleAdmin:
		return r, nil
	case authz.RoleUser:
		if r.ApplicantID == actor.ID {
			return r, nil
		}
	case authz.RoleShelter:
		ownerID, err := s.pets.OwnerOf(ctx, r.PetID)
		if err == nil && ownerID == actor.ID {
			return r, nil
		}
	}
	return AdoptionRequest{}, ErrForbidden
}

// List es scoped por rol EN EL QUERY (nunca filtrado post-hoc): un user ve
// solo sus postulaciones, un shelter solo las de sus pets, un admin todo.
func (s *Service) List(ctx context.Context, actor authz.Actor) ([]AdoptionRequest, error) {
	switch actor.Role {
	case authz.RoleAdmin:
		return s.repo.ListAll(ctx)
	case authz.RoleUser:
		return s.repo.ListByApplicant(ctx, actor.ID)
	case authz.RoleShelter:
		owned, err := s.pets.ListByUploader(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(owned))
		for _, p := range owned {
			ids = append(ids, p.ID)
		}
		if len(ids) == 0 {
			return []AdoptionRequest{}, nil
		}
		return s.repo.ListByPets(ctx, ids)
	default:
		return nil, ErrForbidden
	}
}
