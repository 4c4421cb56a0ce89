package donations

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption-market/internal/domain/authz"
	"pet-adoption-market/internal/domain/identity"
	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/platform/imaging"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("donation offer not found")
	ErrForbidden       = errors.New("forbidden")
	ErrShelterNotFound = errors.New("target shelter not found or inactive")
	ErrInvalidState    = errors.New("invalid offer state")
	ErrRateLimited     = errors.New("rate limit exceeded")
)

// Techos de imágenes para donation intake (más chicos que listados directos).
const (
	intakeMaxImageBytes = 1 << 20
	intakeMaxImages     = 3
)

type Service struct {
	repo     Repository
	pets     *pets.Service
	identity *identity.Service
	now      func() time.Time
	limiter  *rate.Limiter
}

func NewService(repo Repository, petsSvc *pets.Service, identitySvc *identity.Service) *Service {
	return &Service{
		repo:     repo,
		pets:     petsSvc,
		identity: identitySvc,
		now:      time.Now,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 30),
	}
}

type PetInput struct {
	Name        string
	Species     string
	Breed       string
	Sex         string
	AgeMonths   int
	Description string
}

type DonorInput struct {
	Name  string
	Phone string
	Email string
}

type CreateInput struct {
	Pet        PetInput
	Donor      DonorInput
	ShelterID  string
	Reason     string
	PickupDate *time.Time
	Images     []imaging.File
}

// Create registra la oferta como una unidad lógica: primero el Pet en
// intake-pending (uploadedBy = donante), después la offer que lo referencia.
// Si el insert de la offer falla, el Pet recién creado se revierte para no
// dejar huérfanos.
func (s *Service) Create(ctx context.Context, actor authz.Actor, in CreateInput) (DonationOffer, error) {
	if d := authz.Authorize(actor, authz.ActionCreateOffer, authz.Resource{}); !d.Allowed {
		return DonationOffer{}, ErrForbidden
	}
	if !s.limiter.Allow() {
		return DonationOffer{}, ErrRateLimited
	}

	shelterID := strings.TrimSpace(in.ShelterID)
	if shelterID == "" {
		return DonationOffer{}, ErrInvalidInput
	}

	// El shelter destino tiene que existir, estar activo y tener rol shelter.
	shelter, err := s.identity.Resolve(ctx, shelterID)
	if err != nil || !shelter.Active || shelter.Role != identity.RoleShelter {
		return DonationOffer{}, ErrShelterNotFound
	}

	images := imaging.EncodeAll(in.Images, imaging.Limits{
		MaxFileBytes: intakeMaxImageBytes,
		MaxFiles:     intakeMaxImages,
	})

	p, err := s.pets.CreateIntake(ctx, pets.IntakeInput{
		UploaderID:  actor.ID,
		Name:        in.Pet.Name,
		Species:     in.Pet.Species,
		Breed:       in.Pet.Breed,
		Sex:         in.Pet.Sex,
		AgeMonths:   in.Pet.AgeMonths,
		Description: in.Pet.Description,
		Images:      images,
	})
	if err != nil {
		if errors.Is(err, pets.ErrInvalidInput) {
			return DonationOffer{}, ErrInvalidInput
		}
		return DonationOffer{}, err
	}

	now := s.now()
	o := DonationOffer{
		ID:         uuid.NewString(),
		PetID:      p.ID,
		ShelterID:  shelterID,
		DonorID:    actor.ID,
		DonorName:  strings.TrimSpace(in.Donor.Name),
		DonorPhone: strings.TrimSpace(in.Donor.Phone),
		DonorEmail: strings.TrimSpace(in.Donor.Email),
		Reason:     strings.TrimSpace(in.Reason),
		PickupDate: in.PickupDate,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		// Rollback del pet para no dejar un intake huérfano.
		_ = s.pets.Delete(ctx, p.ID)
		return DonationOffer{}, err
	}
	return o, nil
}

type DecideInput struct {
	Status     Status
	PickupDate *time.Time
	Notes      string
}

// Decide aplica la decisión del shelter destino (o admin):
//   - accepted  → pet pending→available (CAS, listable desde ahora)
//   - rejected  → stamps de proceso; el pet queda pending, inerte/oculto
//   - completed → terminal, sin efecto sobre el pet
func (s *Service) Decide(ctx context.Context, actor authz.Actor, offerID string, in DecideInput) (DonationOffer, error) {
	o, err := s.repo.GetByID(ctx, strings.TrimSpace(offerID))
	if err != nil {
		return DonationOffer{}, ErrNotFound
	}

	if d := authz.Authorize(actor, authz.ActionDecideOffer, authz.Resource{ShelterID: o.ShelterID}); !d.Allowed {
		return DonationOffer{}, ErrForbidden
	}

	now := s.now()
	switch in.Status {
	case StatusAccepted:
		if o.Status != StatusPending {
			return DonationOffer{}, ErrInvalidState
		}
		// CAS: si el pet ya no está en intake-pending algo más lo movió.
		if err := s.pets.TransitionStatus(ctx, o.PetID, pets.StatusPending, pets.StatusAvailable); err != nil {
			return DonationOffer{}, err
		}
		o.Status = StatusAccepted
		o.ProcessedBy = actor.ID
		o.ProcessedAt = &now
		if in.PickupDate != nil {
			o.PickupDate = in.PickupDate
		}

	case StatusRejected:
		if o.Status != StatusPending {
			return DonationOffer{}, ErrInvalidState
		}
		// El pet NO se toca: queda pending, nunca llegó a listarse.
		o.Status = StatusRejected
		o.ProcessedBy = actor.ID
		o.ProcessedAt = &now

	case StatusCompleted:
		if o.Status != StatusAccepted && o.Status != StatusRejected {
			return DonationOffer{}, ErrInvalidState
		}
		o.Status = StatusCompleted

	default:
		return DonationOffer{}, ErrInvalidState
	}

	if strings.TrimSpace(in.Notes) != "" {
		o.Notes = strings.TrimSpace(in.Notes)
	}
	o.UpdatedAt = now

	if err := s.repo.Update(ctx, o); err != nil {
		return DonationOffer{}, err
	}
	return o, nil
}

// Delete (admin) limpia la oferta. Si la oferta nunca fue aceptada, su pet
// sigue en intake-pending sin camino de vuelta al pool: lo borramos junto
// con la oferta en vez de dejarlo huérfano para siempre.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, offerID string) error {
	if d := authz.Authorize(actor, authz.ActionDeleteOffer, authz.Resource{}); !d.Allowed {
		return ErrForbidden
	}

	o, err := s.repo.GetByID(ctx, strings.TrimSpace(offerID))
	if err != nil {
		return ErrNotFound
	}

	if o.Status == StatusPending || o.Status == StatusRejected {
		p, err := s.pets.GetByID(ctx, o.PetID)
		// Solo si sigue en intake-pending; un pet ya listado no se toca.
		if err == nil && p.AdoptionStatus == pets.StatusPending {
			_ = s.pets.Delete(ctx, o.PetID)
		}
	}

	return s.repo.Delete(ctx, o.ID)
}

// Get aplica el mismo scope que List para una sola oferta.
func (s *Service) Get(ctx context.Context, actor authz.Actor, offerID string) (DonationOffer, error) {
	o, err := s.repo.GetByID(ctx, strings.TrimSpace(offerID))
	if err != nil {
		return DonationOffer{}, ErrNotFound
	}

	switch actor.Role {
	case authz.RoleAdmin:
		return o, nil
	case authz.RoleShelter:
		if o.ShelterID == actor.ID {
			return o, nil
		}
		// Un shelter también puede haber donado a otro shelter.
		if o.DonorID == actor.ID {
			return o, nil
		}
	case authz.RoleUser:
		if o.DonorID == actor.ID {
			return o, nil
		}
	}
	return DonationOffer{}, ErrForbidden
}

// List scoped por rol en el query: donante ve sus ofertas, shelter las
// dirigidas a él, admin todas.
func (s *Service) List(ctx context.Context, actor authz.Actor) ([]DonationOffer, error) {
	switch actor.Role {
	case authz.RoleAdmin:
		return s.repo.ListAll(ctx)
	case authz.RoleShelter:
		return s.repo.ListByShelter(ctx, actor.ID)
	case authz.RoleUser:
		return s.repo.ListByDonor(ctx, actor.ID)
	default:
		return nil, ErrForbidden
	}
}
