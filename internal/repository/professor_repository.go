package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/library_service/internal/errs"
	"github.com/Freeeeeet/library_service/internal/model"
	"github.com/Freeeeeet/library_service/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfessorRepository struct {
	db base.Querier
}

func NewProfessorRepository(pool *pgxpool.Pool) *ProfessorRepository {
	return &ProfessorRepository{db: pool}
}

// Create создаёт нового преподавателя
func (r *ProfessorRepository) Create(ctx context.Context, professor *model.Professor) error {
	query := `
		INSERT INTO professors (name, email, department, short_bio, calendly_link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		professor.Name,
		professor.Email,
		professor.Department,
		professor.ShortBio,
		professor.CalendlyLink,
	).Scan(&professor.ID, &professor.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create professor: %w", errs.ErrConflict)
		}
		return fmt.Errorf("create professor: %w", err)
	}

	return nil
}

// GetByID получает преподавателя по ID
func (r *ProfessorRepository) GetByID(ctx context.Context, id int64) (*model.Professor, error) {
	query := `
		SELECT id, name, email, department, short_bio, calendly_link, created_at
		FROM professors
		WHERE id = $1
	`

	var professor model.Professor
	err := r.db.QueryRow(ctx, query, id).Scan(
		&professor.ID,
		&professor.Name,
		&professor.Email,
		&professor.Department,
		&professor.ShortBio,
		&professor.CalendlyLink,
		&professor.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get professor by id: %w", err)
	}

	return &professor, nil
}

// List получает всех преподавателей
func (r *ProfessorRepository) List(ctx context.Context) ([]*model.Professor, error) {
	query := `
		SELECT id, name, email, department, short_bio, calendly_link, created_at
		FROM professors
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list professors: %w", err)
	}
	defer rows.Close()

	var professors []*model.Professor
	for rows.Next() {
		var professor model.Professor
		err := rows.Scan(
			&professor.ID,
			&professor.Name,
			&professor.Email,
			&professor.Department,
			&professor.ShortBio,
			&professor.CalendlyLink,
			&professor.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan professor: %w", err)
		}
		professors = append(professors, &professor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate professors: %w", err)
	}

	return professors, nil
}

// Delete удаляет преподавателя
func (r *ProfessorRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM professors WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete professor: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete professor: %w", errs.ErrNotFound)
	}

	return nil
}
