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

type PaymentRepository struct {
	db base.Querier
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: pool}
}

// WithTx возвращает репозиторий, выполняющий запросы внутри транзакции
func (r *PaymentRepository) WithTx(tx pgx.Tx) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

// Create создаёт запись об оплате консультации
func (r *PaymentRepository) Create(ctx context.Context, payment *model.ConsultationPayment) error {
	query := `
		INSERT INTO consultation_payments (member_id, professor_id, order_ref, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, paid_at
	`

	err := r.db.QueryRow(
		ctx, query,
		payment.MemberID,
		payment.ProfessorID,
		payment.OrderRef,
		payment.Amount,
	).Scan(&payment.ID, &payment.PaidAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create payment: %w", errs.ErrConflict)
		}
		return fmt.Errorf("create payment: %w", err)
	}

	return nil
}

// GetByMemberAndProfessor получает оплату читателя за консультации преподавателя
func (r *PaymentRepository) GetByMemberAndProfessor(ctx context.Context, memberID, professorID int64) (*model.ConsultationPayment, error) {
	query := `
		SELECT id, member_id, professor_id, order_ref, amount, paid_at
		FROM consultation_payments
		WHERE member_id = $1 AND professor_id = $2
	`

	var payment model.ConsultationPayment
	err := r.db.QueryRow(ctx, query, memberID, professorID).Scan(
		&payment.ID,
		&payment.MemberID,
		&payment.ProfessorID,
		&payment.OrderRef,
		&payment.Amount,
		&payment.PaidAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}

	return &payment, nil
}

// ListByMember получает все оплаты читателя
func (r *PaymentRepository) ListByMember(ctx context.Context, memberID int64) ([]*model.ConsultationPayment, error) {
	query := `
		SELECT id, member_id, professor_id, order_ref, amount, paid_at
		FROM consultation_payments
		WHERE member_id = $1
		ORDER BY paid_at DESC
	`

	rows, err := r.db.Query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("list payments by member: %w", err)
	}
	defer rows.Close()

	var payments []*model.ConsultationPayment
	for rows.Next() {
		var payment model.ConsultationPayment
		err := rows.Scan(
			&payment.ID,
			&payment.MemberID,
			&payment.ProfessorID,
			&payment.OrderRef,
			&payment.Amount,
			&payment.PaidAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, &payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}

	return payments, nil
}
