package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/library_service/internal/errs"
	"github.com/Freeeeeet/library_service/internal/model"
	"github.com/Freeeeeet/library_service/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestColumns = `id, member_id, book_id, book_title, isbn_no, status, issue_date, due_date, return_date, created_at`

type RequestRepository struct {
	db base.Querier
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{db: pool}
}

// WithTx возвращает репозиторий, выполняющий запросы внутри транзакции
func (r *RequestRepository) WithTx(tx pgx.Tx) *RequestRepository {
	return &RequestRepository{db: tx}
}

// Create создаёт новую заявку в статусе pending, даты пустые
func (r *RequestRepository) Create(ctx context.Context, request *model.BorrowRequest) error {
	query := `
		INSERT INTO borrow_requests (member_id, book_id, book_title, isbn_no, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		request.MemberID,
		request.BookID,
		request.BookTitle,
		request.ISBN,
		model.RequestStatusPending,
	).Scan(&request.ID, &request.CreatedAt)

	if err != nil {
		return fmt.Errorf("create borrow request: %w", err)
	}

	request.Status = model.RequestStatusPending
	return nil
}

func (r *RequestRepository) scanRequest(row pgx.Row) (*model.BorrowRequest, error) {
	var request model.BorrowRequest
	err := row.Scan(
		&request.ID,
		&request.MemberID,
		&request.BookID,
		&request.BookTitle,
		&request.ISBN,
		&request.Status,
		&request.IssueDate,
		&request.DueDate,
		&request.ReturnDate,
		&request.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// GetByID получает заявку по ID
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*model.BorrowRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM borrow_requests WHERE id = $1`

	request, err := r.scanRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get request by id: %w", err)
	}
	return request, nil
}

// GetByIDForUpdate получает заявку с блокировкой строки.
// Переходы статуса сериализуются этой блокировкой: из двух
// конкурирующих approve только один увидит pending.
func (r *RequestRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.BorrowRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM borrow_requests WHERE id = $1 FOR UPDATE`

	request, err := r.scanRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get request for update: %w", err)
	}
	return request, nil
}

// MarkApproved переводит заявку в approved и фиксирует даты выдачи и возврата
func (r *RequestRepository) MarkApproved(ctx context.Context, id int64, issueDate, dueDate time.Time) error {
	query := `
		UPDATE borrow_requests
		SET status = $1, issue_date = $2, due_date = $3, return_date = NULL
		WHERE id = $4
	`

	// Даты шлём строками YYYY-MM-DD: колонка date, а timestamptz-параметр
	// конвертировался бы в дату по часовому поясу сервера
	result, err := r.db.Exec(ctx, query, model.RequestStatusApproved,
		issueDate.Format(time.DateOnly), dueDate.Format(time.DateOnly), id)
	if err != nil {
		return fmt.Errorf("mark request approved: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("mark request approved: %w", errs.ErrNotFound)
	}

	return nil
}

// MarkRejected переводит заявку в rejected, даты остаются пустыми
func (r *RequestRepository) MarkRejected(ctx context.Context, id int64) error {
	query := `UPDATE borrow_requests SET status = $1 WHERE id = $2`

	result, err := r.db.Exec(ctx, query, model.RequestStatusRejected, id)
	if err != nil {
		return fmt.Errorf("mark request rejected: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("mark request rejected: %w", errs.ErrNotFound)
	}

	return nil
}

// MarkReturned переводит заявку в returned и фиксирует дату возврата
func (r *RequestRepository) MarkReturned(ctx context.Context, id int64, returnDate time.Time) error {
	query := `UPDATE borrow_requests SET status = $1, return_date = $2 WHERE id = $3`

	result, err := r.db.Exec(ctx, query, model.RequestStatusReturned, returnDate.Format(time.DateOnly), id)
	if err != nil {
		return fmt.Errorf("mark request returned: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("mark request returned: %w", errs.ErrNotFound)
	}

	return nil
}

// Delete удаляет заявку (отзыв pending-заявки читателем)
func (r *RequestRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM borrow_requests WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete request: %w", errs.ErrNotFound)
	}

	return nil
}

func scanRequestRows(rows pgx.Rows, withMemberName bool) ([]*model.BorrowRequest, error) {
	var requests []*model.BorrowRequest
	for rows.Next() {
		var request model.BorrowRequest
		dest := []any{
			&request.ID,
			&request.MemberID,
			&request.BookID,
			&request.BookTitle,
			&request.ISBN,
			&request.Status,
			&request.IssueDate,
			&request.DueDate,
			&request.ReturnDate,
			&request.CreatedAt,
		}
		if withMemberName {
			dest = append(dest, &request.MemberName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, &request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	return requests, nil
}

// ListPaged получает страницу заявок с именем читателя, по порядку создания
func (r *RequestRepository) ListPaged(ctx context.Context, limit, offset int) ([]*model.BorrowRequest, error) {
	query := `
		SELECT r.` + requestColumnsPrefixed + `, m.first_name || ' ' || m.last_name AS member_name
		FROM borrow_requests r
		JOIN members m ON m.id = r.member_id
		ORDER BY r.id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	return scanRequestRows(rows, true)
}

const requestColumnsPrefixed = `id, r.member_id, r.book_id, r.book_title, r.isbn_no, r.status, r.issue_date, r.due_date, r.return_date, r.created_at`

// Count считает все заявки
func (r *RequestRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM borrow_requests`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count requests: %w", err)
	}
	return count, nil
}

// ListByMember получает заявки читателя, опционально по одному статусу
func (r *RequestRepository) ListByMember(ctx context.Context, memberID int64, status *model.RequestStatus) ([]*model.BorrowRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM borrow_requests WHERE member_id = $1`
	args := []any{memberID}

	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests by member: %w", err)
	}
	defer rows.Close()

	return scanRequestRows(rows, false)
}

// DueOn получает выданные книги со сроком возврата в указанную дату
func (r *RequestRepository) DueOn(ctx context.Context, date time.Time) ([]*model.DueSummary, error) {
	query := `
		SELECT r.id, m.first_name || ' ' || m.last_name, r.book_title, r.isbn_no, r.due_date
		FROM borrow_requests r
		JOIN members m ON m.id = r.member_id
		WHERE r.status = $1 AND r.due_date = $2
		ORDER BY r.id
	`

	rows, err := r.db.Query(ctx, query, model.RequestStatusApproved, date.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("list due requests: %w", err)
	}
	defer rows.Close()

	var due []*model.DueSummary
	for rows.Next() {
		var item model.DueSummary
		err := rows.Scan(
			&item.RequestID,
			&item.MemberName,
			&item.BookTitle,
			&item.ISBN,
			&item.DueDate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan due request: %w", err)
		}
		due = append(due, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due requests: %w", err)
	}

	return due, nil
}

// CountByMember считает заявки читателя: всего, выдано, ожидает
func (r *RequestRepository) CountByMember(ctx context.Context, memberID int64) (total, approved, pending int, err error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = $2),
		       COUNT(*) FILTER (WHERE status = $3)
		FROM borrow_requests
		WHERE member_id = $1
	`

	err = r.db.QueryRow(ctx, query, memberID, model.RequestStatusApproved, model.RequestStatusPending).
		Scan(&total, &approved, &pending)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("count requests by member: %w", err)
	}

	return total, approved, pending, nil
}
