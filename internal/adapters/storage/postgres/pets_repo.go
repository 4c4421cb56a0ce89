package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"pet-adoption-market/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	imgs, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pets (
			id, uploaded_by,
			name, species, breed, sex, age_months, description,
			images, adoption_status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		p.ID,
		p.UploadedBy,
		p.Name,
		p.Species,
		p.Breed,
		p.Sex,
		p.AgeMonths,
		p.Description,
		imgs,
		p.AdoptionStatus,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	imgs, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			species = $3,
			breed = $4,
			sex = $5,
			age_months = $6,
			description = $7,
			images = $8,
			adoption_status = $9,
			updated_at = $10
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Species,
		p.Breed,
		p.Sex,
		p.AgeMonths,
		p.Description,
		imgs,
		p.AdoptionStatus,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

// UpdateStatus: conditional write. El WHERE sobre adoption_status hace del
// UPDATE un compare-and-swap a nivel row; RowsAffected=0 con la row presente
// significa que alguien ganó la carrera.
func (r *PetsRepo) UpdateStatus(ctx context.Context, id string, from, to pets.AdoptionStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET adoption_status = $3, updated_at = NOW()
		WHERE id = $1 AND adoption_status = $2
	`, id, from, to)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 1 {
		return nil
	}

	// Distinguir not-found de claim perdido.
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM pets WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pets.ErrNotFound
	}
	return pets.ErrConflict
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, uploaded_by,
			name, species, breed, sex, age_months, description,
			images, adoption_status,
			created_at, updated_at
		FROM pets
		WHERE id = $1
	`, id)

	p, err := scanPet(row)
	if err == sql.ErrNoRows {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	// Filtros opcionales resueltos en SQL (vacío = no filtra).
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, uploaded_by,
			name, species, breed, sex, age_months, description,
			images, adoption_status,
			created_at, updated_at
		FROM pets
		WHERE ($1 = '' OR adoption_status = $1)
		  AND ($2 = '' OR uploaded_by = $2)
		ORDER BY created_at ASC
	`, string(f.Status), f.UploadedBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var imgs []byte
	if err := row.Scan(
		&p.ID,
		&p.UploadedBy,
		&p.Name,
		&p.Species,
		&p.Breed,
		&p.Sex,
		&p.AgeMonths,
		&p.Description,
		&imgs,
		&p.AdoptionStatus,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}
	if len(imgs) > 0 {
		if err := json.Unmarshal(imgs, &p.Images); err != nil {
			return pets.Pet{}, err
		}
	}
	return p, nil
}
