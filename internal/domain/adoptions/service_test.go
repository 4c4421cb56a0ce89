package adoptions_test

import (
	"context"
	"errors"
	"testing"

	mem "pet-adoption-market/internal/adapters/storage/memory"
	"pet-adoption-market/internal/domain/adoptions"
	"pet-adoption-market/internal/domain/authz"
	"pet-adoption-market/internal/domain/pets"
)

type fixture struct {
	pets      *pets.Service
	adoptions *adoptions.Service
}

func newFixture() *fixture {
	petsSvc := pets.NewService(mem.NewPetRepo())
	return &fixture{
		pets:      petsSvc,
		adoptions: adoptions.NewService(mem.NewAdoptionRepo(), petsSvc),
	}
}

func (f *fixture) availablePet(t *testing.T, shelterID string) pets.Pet {
	t.Helper()
	p, err := f.pets.Create(context.Background(), authz.Actor{ID: shelterID, Role: authz.RoleShelter}, pets.CreateInput{
		Name:    "Milo",
		Species: "dog",
	})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	return p
}

var (
	applicant = authz.Actor{ID: "user-1", Role: authz.RoleUser}
	shelter   = authz.Actor{ID: "shelter-1", Role: authz.RoleShelter}
	admin     = authz.Actor{ID: "admin-1", Role: authz.RoleAdmin}
)

func TestSubmit_ClaimsPet(t *testing.T) {
	f := newFixture()
	p := f.availablePet(t, shelter.ID)

	r, err := f.adoptions.Submit(context.Background(), applicant, adoptions.SubmitInput{
		PetID:   p.ID,
		Message: "quiero adoptarlo",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if r.Status != adoptions.StatusPending {
		t.Fatalf("expected pending request, got %s", r.Status)
	}

	got, _ := f.pets.GetByID(context.Background(), p.ID)
	if got.AdoptionStatus != pets.StatusPending {
		t.Fatalf("expected pet pending after claim, got %s", got.AdoptionStatus)
	}
}

func TestSubmit_SecondApplicantGetsDuplicatePending(t *testing.T) {
	f := newFixture()
	p := f.availablePet(t, shelter.ID)

	if _, err := f.adoptions.Submit(context.Background(), applicant, adoptions.SubmitInput{PetID: p.ID}); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err := f.adoptions.Submit(context.Background(), authz.Actor{ID: "user-2", Role: authz.RoleUser}, adoptions.SubmitInput{PetID: p.ID})
	if !errors.Is(err, adoptions.ErrDuplicatePending) {
		t.Fatalf("expected ErrDuplicatePending, got %v", err)
	}
}

func TestSubmit_ShelterRoleForbidden(t *testing.T) {
	f := newFixture()
	p := f.availablePet(t, shelter.ID)

	_, err := f.adoptions.Submit(context.Background(), shelter, adoptions.SubmitInput{PetID: p.ID})
	if !errors.Is(err, adoptions.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for shelter submit, got %v", err)
	}
}

func TestSubmit_UnknownPet(t *testing.T) {
	f := newFixture()

	_, err := f.adoptions.Submit(context.Background(), applicant, adoptions.SubmitInput{PetID: "nope"})
	if !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected pets.ErrNotFound, got %v", err)
	}
}

func TestDecide_ApproveAdoptsPet(t *testing.T) {
	f := newFixture()
	p := f.availablePet(t, shelter.ID)
	r, _ := f.adoptions.Submit(context.Background(), applicant, adoptions.SubmitInput{PetID: p.ID})

	out, err := f.adoptions.Decide(context.Background(), shelter, r.ID, adoptions.DecideInput{
		Status: adoptions.StatusApproved,
	})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if out.ApprovedBy != shelter.ID || out.ApprovedAt == nil {
		t.Fatalf("expected approval stamps, got by=%q at=%v", out.ApprovedBy, out.ApprovedAt)
	}

	got, _ := f.pets.GetByID(context.Background(), p.ID)
	if got.AdoptionStatus != pets.StatusAdopted {
		t.Fatalf("expected pet adopted, got %s", got.AdoptionStatus)
	}
}

func TestDecide_RejectReturnsPetToPool(t *testing.T) {
	f := newFixture()
	p := f.availablePet(t, shelter.ID)
	r, _ := f.adoptions.Submit(context.Background(), applicant, adoptions.SubmitInput{PetID: p.ID})

	out, err := f.adoptions.Decide(context.Background(), shelter, r.ID, adoptions.DecideInput{
		Status:          adoptions.StatusRejected,
		RejectionReason: "no yard",
	})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if out.RejectionReason != "no yard" {
		t.Fatalf("expected rejection reason persisted, got %q", out.RejectionReason)
	}

	got, _ := f.pets.GetByID(context.Background(), p.ID)
	if got.AdoptionStatus != pets.StatusAvailable {
		t.Fatalf("expected pet back to available, got %s", got.AdoptionStatus)
	}

	// Otro applicant puede reclamar el mismo pet ahora.
	if _, err := f.adoptions.Submit(context.Background(), authz.Actor{ID: "user-2", Role: authz.RoleUser}, adoptions.SubmitInput{PetID: p.ID}); err != nil {
		t.Fatalf("resubmit after reject: %v", err)
	}
}

func TestDecide_WrongShelterForbidden(t *testing.T) {
	f := newFixture()
	p := f.availablePet(t, shelter.ID)
	r, _ := f.adoptions.Submit(context.Background(), applicant, adoptions.SubmitInput{PetID: p.ID})

	_, err := f.adoptions.Decide(context.Background(), authz.Actor{ID: "shelter-2", Role: authz.RoleShelter}, r.ID, adoptions.DecideInput{
		Status: adoptions.StatusApproved,
	})
	if !errors.Is(err, adoptions.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner shelter, got %v", err)
	}
}

func TestDecide_AdminCanDecideAnyRequest(t *testing.T) {
	f := newFixture()
	p := f.availablePet(t, shelter.ID)
	r, _ := f.adoptions.Submit(context.Background(), applicant, adoptions.SubmitInput{PetID: p.ID})

	if _, err := f.adoptions.Decide(context.Background(), admin, r.ID, adoptions.DecideInput{
		Status: adoptions.StatusApproved,
	}); err != nil {
		t.Fatalf("admin decide: %v", err)
	}
}

func TestDecide_CompleteStampsWithoutTouchingPet(t *testing.T) {
	f := newFixture()
	p := f.availablePet(t, shelter.ID)
	r, _ := f.adoptions.Submit(context.Background(), applicant, adoptions.SubmitInput{PetID: p.ID})
	_, _ = f.adoptions.Decide(context.Background(), shelter, r.ID, adoptions.DecideInput{Status: adoptions.StatusApproved})

	out, err := f.adoptions.Decide(context.Background(), shelter, r.ID, adoptions.DecideInput{
		Status: adoptions.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out.CompletedAt == nil {
		t.Fatal("expected completedAt stamp")
	}

	got, _ := f.pets.GetByID(context.Background(), p.ID)
	if got.AdoptionStatus != pets.StatusAdopted {
		t.Fatalf("complete should not move pet, got %s", got.AdoptionStatus)
	}
}

func TestDecide_ReopenRespectsSinglePending(t *testing.T) {
	f := newFixture()
	p := f.availablePet(t, shelter.ID)
	r1, _ := f.adoptions.Submit(context.Background(), applicant, adoptions.SubmitInput{PetID: p.ID})
	_, _ = f.adoptions.Decide(context.Background(), shelter, r1.ID, adoptions.DecideInput{Status: adoptions.StatusRejected})

	// Segundo request toma el claim.
	r2, err := f.adoptions.Submit(context.Background(), authz.Actor{ID: "user-2", Role: authz.RoleUser}, adoptions.SubmitInput{PetID: p.ID})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	// Re-abrir el primero violaría el invariante mientras r2 sigue pending.
	if _, err := f.adoptions.Decide(context.Background(), admin, r1.ID, adoptions.DecideInput{
		Status: adoptions.StatusPending,
	}); !errors.Is(err, adoptions.ErrDuplicatePending) {
		t.Fatalf("expected ErrDuplicatePending on reopen, got %v", err)
	}

	// Decidido r2, el re-open sí procede.
	_, _ = f.adoptions.Decide(context.Background(), shelter, r2.ID, adoptions.DecideInput{Status: adoptions.StatusRejected})
	if _, err := f.adoptions.Decide(context.Background(), admin, r1.ID, adoptions.DecideInput{
		Status: adoptions.StatusPending,
	}); err != nil {
		t.Fatalf("reopen after r2 decided: %v", err)
	}

	got, _ := f.pets.GetByID(context.Background(), p.ID)
	if got.AdoptionStatus != pets.StatusPending {
		t.Fatalf("expected pet pending after reopen, got %s", got.AdoptionStatus)
	}
}

func TestWithdraw_OwnPendingOnly(t *testing.T) {
	f := newFixture()
	p := f.availablePet(t, shelter.ID)
	r, _ := f.adoptions.Submit(context.Background(), applicant, adoptions.SubmitInput{PetID: p.ID})

	// Otro user no puede retirar un request ajeno.
	if err := f.adoptions.Withdraw(context.Background(), authz.Actor{ID: "user-2", Role: authz.RoleUser}, r.ID); !errors.Is(err, adoptions.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign withdraw, got %v", err)
	}

	if err := f.adoptions.Withdraw(context.Background(), applicant, r.ID); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	got, _ := f.pets.GetByID(context.Background(), p.ID)
	if got.AdoptionStatus != pets.StatusAvailable {
		t.Fatalf("expected pet released after withdraw, got %s", got.AdoptionStatus)
	}
	if _, err := f.adoptions.Get(context.Background(), admin, r.ID); !errors.Is(err, adoptions.ErrNotFound) {
		t.Fatalf("expected request gone, got %v", err)
	}
}

func TestWithdraw_DecidedRequestIsInvalidState(t *testing.T) {
	f := newFixture()
	p := f.availablePet(t, shelter.ID)
	r, _ := f.adoptions.Submit(context.Background(), applicant, adoptions.SubmitInput{PetID: p.ID})
	_, _ = f.adoptions.Decide(context.Background(), shelter, r.ID, adoptions.DecideInput{Status: adoptions.StatusApproved})

	if err := f.adoptions.Withdraw(context.Background(), applicant, r.ID); !errors.Is(err, adoptions.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestDelete_AdminRevertsPendingClaim(t *testing.T) {
	f := newFixture()
	p := f.availablePet(t, shelter.ID)
	r, _ := f.adoptions.Submit(context.Background(), applicant, adoptions.SubmitInput{PetID: p.ID})

	if err := f.adoptions.Delete(context.Background(), applicant, r.ID); !errors.Is(err, adoptions.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin delete, got %v", err)
	}

	if err := f.adoptions.Delete(context.Background(), admin, r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := f.pets.GetByID(context.Background(), p.ID)
	if got.AdoptionStatus != pets.StatusAvailable {
		t.Fatalf("expected pet released after delete, got %s", got.AdoptionStatus)
	}
}

func TestDelete_ApprovedRequestLeavesPetAdopted(t *testing.T) {
	f := newFixture()
	p := f.availablePet(t, shelter.ID)
	r, _ := f.adoptions.Submit(context.Background(), applicant, adoptions.SubmitInput{PetID: p.ID})
	_, _ = f.adoptions.Decide(context.Background(), shelter, r.ID, adoptions.DecideInput{Status: adoptions.StatusApproved})

	if err := f.adoptions.Delete(context.Background(), admin, r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := f.pets.GetByID(context.Background(), p.ID)
	if got.AdoptionStatus != pets.StatusAdopted {
		t.Fatalf("stale revert: expected adopted, got %s", got.AdoptionStatus)
	}
}

func TestListing_ScopedByRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p1 := f.availablePet(t, shelter.ID)
	p2, _ := f.pets.Create(ctx, authz.Actor{ID: "shelter-2", Role: authz.RoleShelter}, pets.CreateInput{Name: "Luna", Species: "cat"})

	r1, _ := f.adoptions.Submit(ctx, applicant, adoptions.SubmitInput{PetID: p1.ID})
	r2, _ := f.adoptions.Submit(ctx, authz.Actor{ID: "user-2", Role: authz.RoleUser}, adoptions.SubmitInput{PetID: p2.ID})

	// User: solo lo suyo.
	mine, err := f.adoptions.List(ctx, applicant)
	if err != nil {
		t.Fatalf("user list: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != r1.ID {
		t.Fatalf("user scope leak: %+v", mine)
	}

	// Shelter: solo requests de sus pets.
	theirs, err := f.adoptions.List(ctx, shelter)
	if err != nil {
		t.Fatalf("shelter list: %v", err)
	}
	if len(theirs) != 1 || theirs[0].ID != r1.ID {
		t.Fatalf("shelter scope leak: %+v", theirs)
	}

	// Admin: todo.
	all, err := f.adoptions.List(ctx, admin)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin should see both, got %d", len(all))
	}

	// Get aplica el mismo scope.
	if _, err := f.adoptions.Get(ctx, applicant, r2.ID); !errors.Is(err, adoptions.ErrForbidden) {
		t.Fatalf("expected ErrForbidden reading foreign request, got %v", err)
	}
	if _, err := f.adoptions.Get(ctx, shelter, r1.ID); err != nil {
		t.Fatalf("shelter get own pet request: %v", err)
	}
}
