package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-adoption-market/internal/domain/adoptions"
)

type AdoptionsRepo struct {
	db *sql.DB
}

func NewAdoptionsRepo(db *sql.DB) *AdoptionsRepo {
	return &AdoptionsRepo{db: db}
}

// Nota de schema: la tabla lleva un unique parcial
//   CREATE UNIQUE INDEX adoption_requests_one_pending
//   ON adoption_requests (pet_id) WHERE status = 'pending';
// como segunda línea de defensa del invariante un-pending-por-pet.
func (r *AdoptionsRepo) Create(ctx context.Context, req adoptions.AdoptionRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO adoption_requests (
			id, pet_id, applicant_id,
			message, contact_phone, status,
			approved_by, approved_at, completed_at, rejection_reason,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		req.ID,
		req.PetID,
		req.ApplicantID,
		req.Message,
		req.ContactPhone,
		req.Status,
		nullStr(req.ApprovedBy),
		req.ApprovedAt,
		req.CompletedAt,
		nullStr(req.RejectionReason),
		req.CreatedAt,
		req.UpdatedAt,
	)
	return err
}

func (r *AdoptionsRepo) Update(ctx context.Context, req adoptions.AdoptionRequest) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE adoption_requests
		SET
			status = $2,
			approved_by = $3,
			approved_at = $4,
			completed_at = $5,
			rejection_reason = $6,
			updated_at = $7
		WHERE id = $1
	`,
		req.ID,
		req.Status,
		nullStr(req.ApprovedBy),
		req.ApprovedAt,
		req.CompletedAt,
		nullStr(req.RejectionReason),
		req.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AdoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.AdoptionRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return adoptions.AdoptionRequest{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, selectRequest+` WHERE id = $1`, id)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return adoptions.AdoptionRequest{}, ErrNotFound
	}
	return req, err
}

func (r *AdoptionsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM adoption_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AdoptionsRepo) GetPendingByPet(ctx context.Context, petID string) (adoptions.AdoptionRequest, error) {
	row := r.db.QueryRowContext(ctx, selectRequest+` WHERE pet_id = $1 AND status = 'pending'`, petID)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return adoptions.AdoptionRequest{}, ErrNotFound
	}
	return req, err
}

func (r *AdoptionsRepo) ListByApplicant(ctx context.Context, applicantID string) ([]adoptions.AdoptionRequest, error) {
	rows, err := r.db.QueryContext(ctx, selectRequest+` WHERE applicant_id = $1 ORDER BY created_at ASC`, applicantID)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (r *AdoptionsRepo) ListByPets(ctx context.Context, petIDs []string) ([]adoptions.AdoptionRequest, error) {
	if len(petIDs) == 0 {
		return []adoptions.AdoptionRequest{}, nil
	}
	rows, err := r.db.QueryContext(ctx, selectRequest+` WHERE pet_id = ANY($1) ORDER BY created_at ASC`, petIDs)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (r *AdoptionsRepo) ListAll(ctx context.Context) ([]adoptions.AdoptionRequest, error) {
	rows, err := r.db.QueryContext(ctx, selectRequest+` ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

const selectRequest = `
	SELECT
		id, pet_id, applicant_id,
		message, contact_phone, status,
		approved_by, approved_at, completed_at, rejection_reason,
		created_at, updated_at
	FROM adoption_requests`

func scanRequest(row rowScanner) (adoptions.AdoptionRequest, error) {
	var req adoptions.AdoptionRequest
	var approvedBy, rejectionReason sql.NullString
	var approvedAt, completedAt sql.NullTime
	if err := row.Scan(
		&req.ID,
		&req.PetID,
		&req.ApplicantID,
		&req.Message,
		&req.ContactPhone,
		&req.Status,
		&approvedBy,
		&approvedAt,
		&completedAt,
		&rejectionReason,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return adoptions.AdoptionRequest{}, err
	}
	req.ApprovedBy = approvedBy.String
	req.RejectionReason = rejectionReason.String
	if approvedAt.Valid {
		t := approvedAt.Time
		req.ApprovedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		req.CompletedAt = &t
	}
	return req, nil
}

func collectRequests(rows *sql.Rows) ([]adoptions.AdoptionRequest, error) {
	defer rows.Close()

	out := make([]adoptions.AdoptionRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func nullStr(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
