package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-adoption-market/internal/domain/donations"
)

type DonationsRepo struct {
	db *sql.DB
}

func NewDonationsRepo(db *sql.DB) *DonationsRepo {
	return &DonationsRepo{db: db}
}

func (r *DonationsRepo) Create(ctx context.Context, o donations.DonationOffer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO donation_offers (
			id, pet_id, shelter_id,
			donor_id, donor_name, donor_phone, donor_email,
			reason, pickup_date, status,
			processed_by, processed_at, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		o.ID,
		o.PetID,
		o.ShelterID,
		o.DonorID,
		o.DonorName,
		o.DonorPhone,
		o.DonorEmail,
		o.Reason,
		o.PickupDate,
		o.Status,
		nullStr(o.ProcessedBy),
		o.ProcessedAt,
		o.Notes,
		o.CreatedAt,
		o.UpdatedAt,
	)
	return err
}

func (r *DonationsRepo) Update(ctx context.Context, o donations.DonationOffer) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE donation_offers
		SET
			pickup_date = $2,
			status = $3,
			processed_by = $4,
			processed_at = $5,
			notes = $6,
			updated_at = $7
		WHERE id = $1
	`,
		o.ID,
		o.PickupDate,
		o.Status,
		nullStr(o.ProcessedBy),
		o.ProcessedAt,
		o.Notes,
		o.UpdatedAt,
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

func (r *DonationsRepo) GetByID(ctx context.Context, id string) (donations.DonationOffer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return donations.DonationOffer{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, selectOffer+` WHERE id = $1`, id)
	o, err := scanOffer(row)
	if err == sql.ErrNoRows {
		return donations.DonationOffer{}, ErrNotFound
	}
	return o, err
}

func (r *DonationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM donation_offers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DonationsRepo) ListByShelter(ctx context.Context, shelterID string) ([]donations.DonationOffer, error) {
	rows, err := r.db.QueryContext(ctx, selectOffer+` WHERE shelter_id = $1 ORDER BY created_at ASC`, shelterID)
	if err != nil {
		return nil, err
	}
	return collectOffers(rows)
}

func (r *DonationsRepo) ListByDonor(ctx context.Context, donorID string) ([]donations.DonationOffer, error) {
	rows, err := r.db.QueryContext(ctx, selectOffer+` WHERE donor_id = $1 ORDER BY created_at ASC`, donorID)
	if err != nil {
		return nil, err
	}
	return collectOffers(rows)
}

func (r *DonationsRepo) ListAll(ctx context.Context) ([]donations.DonationOffer, error) {
	rows, err := r.db.QueryContext(ctx, selectOffer+` ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return collectOffers(rows)
}

const selectOffer = `
	SELECT
		id, pet_id, shelter_id,
		donor_id, donor_name, donor_phone, donor_email,
		reason, pickup_date, status,
		processed_by, processed_at, notes,
		created_at, updated_at
	FROM donation_offers`

func scanOffer(row rowScanner) (donations.DonationOffer, error) {
	var o donations.DonationOffer
	var processedBy sql.NullString
	var pickupDate, processedAt sql.NullTime
	if err := row.Scan(
		&o.ID,
		&o.PetID,
		&o.ShelterID,
		&o.DonorID,
		&o.DonorName,
		&o.DonorPhone,
		&o.DonorEmail,
		&o.Reason,
		&pickupDate,
		&o.Status,
		&processedBy,
		&processedAt,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return donations.DonationOffer{}, err
	}
	o.ProcessedBy = processedBy.String
	if pickupDate.Valid {
		t := pickupDate.Time
		o.PickupDate = &t
	}
	if processedAt.Valid {
		t := processedAt.Time
		o.ProcessedAt = &t
	}
	return o, nil
}

func collectOffers(rows *sql.Rows) ([]donations.DonationOffer, error) {
	defer rows.Close()

	out := make([]donations.DonationOffer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
