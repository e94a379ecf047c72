package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/library_service/internal/errs"
	"github.com/Freeeeeet/library_service/internal/model"
	"github.com/Freeeeeet/library_service/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const memberColumns = `id, first_name, last_name, email, password_hash, phone_number, address, membership_status, role, credits, created_at`

type MemberRepository struct {
	db base.Querier
}

func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: pool}
}

// WithTx возвращает репозиторий, выполняющий запросы внутри транзакции
func (r *MemberRepository) WithTx(tx pgx.Tx) *MemberRepository {
	return &MemberRepository{db: tx}
}

// Create создаёт нового читателя
func (r *MemberRepository) Create(ctx context.Context, member *model.Member) error {
	query := `
		INSERT INTO members (first_name, last_name, email, password_hash, phone_number, address, membership_status, role, credits)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		member.FirstName,
		member.LastName,
		member.Email,
		member.PasswordHash,
		member.PhoneNumber,
		member.Address,
		member.MembershipStatus,
		member.Role,
		member.Credits,
	).Scan(&member.ID, &member.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create member: %w", errs.ErrConflict)
		}
		return fmt.Errorf("create member: %w", err)
	}

	return nil
}

func (r *MemberRepository) scanMember(row pgx.Row) (*model.Member, error) {
	var member model.Member
	err := row.Scan(
		&member.ID,
		&member.FirstName,
		&member.LastName,
		&member.Email,
		&member.PasswordHash,
		&member.PhoneNumber,
		&member.Address,
		&member.MembershipStatus,
		&member.Role,
		&member.Credits,
		&member.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// GetByID получает читателя по ID
func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	member, err := r.scanMember(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get member by id: %w", err)
	}
	return member, nil
}

// GetByEmail получает читателя по email
func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (*model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE email = $1`

	member, err := r.scanMember(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("get member by email: %w", err)
	}
	return member, nil
}

// GetByIDForUpdate получает читателя с блокировкой строки.
// Списание кредитов читает баланс под блокировкой, иначе два
// параллельных списания потеряют одно из обновлений.
func (r *MemberRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 FOR UPDATE`

	member, err := r.scanMember(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get member for update: %w", err)
	}
	return member, nil
}

// SetCredits записывает новый баланс кредитов
func (r *MemberRepository) SetCredits(ctx context.Context, id int64, credits int64) error {
	query := `UPDATE members SET credits = $1 WHERE id = $2`

	result, err := r.db.Exec(ctx, query, credits, id)
	if err != nil {
		return fmt.Errorf("set credits: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("set credits: %w", errs.ErrNotFound)
	}

	return nil
}

// Update обновляет данные читателя
func (r *MemberRepository) Update(ctx context.Context, member *model.Member) error {
	query := `
		UPDATE members
		SET first_name = $1, last_name = $2, phone_number = $3, address = $4, membership_status = $5
		WHERE id = $6
	`

	result, err := r.db.Exec(
		ctx, query,
		member.FirstName,
		member.LastName,
		member.PhoneNumber,
		member.Address,
		member.MembershipStatus,
		member.ID,
	)

	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update member: %w", errs.ErrNotFound)
	}

	return nil
}

// Delete удаляет читателя
func (r *MemberRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM members WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete member: %w", errs.ErrNotFound)
	}

	return nil
}

// List получает всех читателей
func (r *MemberRepository) List(ctx context.Context) ([]*model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []*model.Member
	for rows.Next() {
		var member model.Member
		err := rows.Scan(
			&member.ID,
			&member.FirstName,
			&member.LastName,
			&member.Email,
			&member.PasswordHash,
			&member.PhoneNumber,
			&member.Address,
			&member.MembershipStatus,
			&member.Role,
			&member.Credits,
			&member.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, &member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return members, nil
}
