package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/library_service/internal/auth"
	"github.com/Freeeeeet/library_service/internal/errs"
	"github.com/Freeeeeet/library_service/internal/model"
	"github.com/Freeeeeet/library_service/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// LendingService ведёт заявку на выдачу через её жизненный цикл:
// pending -> approved/rejected, approved -> returned. Все переходы
// вместе с изменением остатков выполняются в одной транзакции.
type LendingService struct {
	pool              *pgxpool.Pool
	requestRepo       *repository.RequestRepository
	bookRepo          *repository.BookRepository
	memberRepo        *repository.MemberRepository
	lendingPeriodDays int
	logger            *zap.Logger
}

func NewLendingService(
	pool *pgxpool.Pool,
	requestRepo *repository.RequestRepository,
	bookRepo *repository.BookRepository,
	memberRepo *repository.MemberRepository,
	lendingPeriodDays int,
	logger *zap.Logger,
) *LendingService {
	return &LendingService{
		pool:              pool,
		requestRepo:       requestRepo,
		bookRepo:          bookRepo,
		memberRepo:        memberRepo,
		lendingPeriodDays: lendingPeriodDays,
		logger:            logger,
	}
}

// CreateRequest создаёт заявку читателя на книгу.
// Заявка не появляется если читателя или книги нет, или свободных
// экземпляров ноль.
func (s *LendingService) CreateRequest(ctx context.Context, identity auth.Identity, bookID int64) (*model.BorrowRequest, error) {
	member, err := s.memberRepo.GetByID(ctx, identity.MemberID)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	if member == nil {
		return nil, fmt.Errorf("member not found: %w", errs.ErrNotFound)
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book == nil {
		return nil, fmt.Errorf("book not found: %w", errs.ErrNotFound)
	}

	if !book.HasAvailableCopy() {
		return nil, fmt.Errorf("create request for book %d: %w", bookID, errs.ErrOutOfStock)
	}

	request := &model.BorrowRequest{
		MemberID:  member.ID,
		BookID:    book.ID,
		BookTitle: book.Title,
		ISBN:      book.ISBN,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info("Borrow request created",
		zap.Int64("request_id", request.ID),
		zap.Int64("member_id", member.ID),
		zap.Int64("book_id", book.ID),
	)

	return request, nil
}

// Approve одобряет заявку и выдаёт книгу. Проверка статуса, даты
// и списание экземпляра коммитятся вместе или не коммитятся вовсе:
// заявка блокируется FOR UPDATE, остаток списывается защищённым
// UPDATE внутри той же транзакции.
func (s *LendingService) Approve(ctx context.Context, identity auth.Identity, requestID int64) (*model.BorrowRequest, error) {
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("approve request: %w", errs.ErrUnauthorized)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", errs.ErrUnavailable)
	}
	defer tx.Rollback(ctx)

	requestRepo := s.requestRepo.WithTx(tx)
	bookRepo := s.bookRepo.WithTx(tx)

	request, err := requestRepo.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("request not found: %w", errs.ErrNotFound)
	}

	if !request.Status.CanTransitionTo(model.RequestStatusApproved) {
		return nil, fmt.Errorf("request already %s: %w", request.Status, errs.ErrInvalidState)
	}

	book, err := bookRepo.GetByID(ctx, request.BookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, fmt.Errorf("book not found: %w", errs.ErrNotFound)
	}

	if !book.HasAvailableCopy() {
		return nil, fmt.Errorf("approve request %d: %w", requestID, errs.ErrOutOfStock)
	}

	// Срок возврата считается один раз при одобрении и больше не пересчитывается
	issueDate := model.UTCDate(time.Now())
	dueDate := model.DueDateFor(issueDate, s.lendingPeriodDays)

	if err := requestRepo.MarkApproved(ctx, request.ID, issueDate, dueDate); err != nil {
		return nil, err
	}

	if err := bookRepo.DecrementAvailable(ctx, book.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", errs.ErrUnavailable)
	}

	request.Status = model.RequestStatusApproved
	request.IssueDate = &issueDate
	request.DueDate = &dueDate
	request.ReturnDate = nil

	s.logger.Info("Borrow request approved",
		zap.Int64("request_id", request.ID),
		zap.Int64("book_id", book.ID),
		zap.Time("due_date", dueDate),
	)

	return request, nil
}

// Reject отклоняет pending-заявку. Остатки не трогаем: экземпляр
// под pending-заявку ещё не выделялся.
func (s *LendingService) Reject(ctx context.Context, identity auth.Identity, requestID int64) (*model.BorrowRequest, error) {
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("reject request: %w", errs.ErrUnauthorized)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", errs.ErrUnavailable)
	}
	defer tx.Rollback(ctx)

	requestRepo := s.requestRepo.WithTx(tx)

	request, err := requestRepo.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("request not found: %w", errs.ErrNotFound)
	}

	if !request.Status.CanTransitionTo(model.RequestStatusRejected) {
		return nil, fmt.Errorf("request already %s: %w", request.Status, errs.ErrInvalidState)
	}

	if err := requestRepo.MarkRejected(ctx, request.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", errs.ErrUnavailable)
	}

	request.Status = model.RequestStatusRejected

	s.logger.Info("Borrow request rejected",
		zap.Int64("request_id", request.ID),
		zap.Int64("member_id", request.MemberID),
	)

	return request, nil
}

// Return принимает книгу обратно: заявка должна быть approved,
// дата возврата и восстановление остатка коммитятся вместе
func (s *LendingService) Return(ctx context.Context, identity auth.Identity, requestID int64) (*model.BorrowRequest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", errs.ErrUnavailable)
	}
	defer tx.Rollback(ctx)

	requestRepo := s.requestRepo.WithTx(tx)
	bookRepo := s.bookRepo.WithTx(tx)

	request, err := requestRepo.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("request not found: %w", errs.ErrNotFound)
	}

	if !identity.IsAdmin() && !identity.Owns(request.MemberID) {
		return nil, fmt.Errorf("return request: %w", errs.ErrUnauthorized)
	}

	if !request.Status.CanTransitionTo(model.RequestStatusReturned) {
		return nil, fmt.Errorf("request is %s, not approved: %w", request.Status, errs.ErrInvalidState)
	}

	returnDate := model.UTCDate(time.Now())

	if err := requestRepo.MarkReturned(ctx, request.ID, returnDate); err != nil {
		return nil, err
	}

	if err := bookRepo.IncrementAvailable(ctx, request.BookID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", errs.ErrUnavailable)
	}

	request.Status = model.RequestStatusReturned
	request.ReturnDate = &returnDate

	s.logger.Info("Book returned",
		zap.Int64("request_id", request.ID),
		zap.Int64("book_id", request.BookID),
	)

	return request, nil
}

// Cancel отзывает pending-заявку. Доступно владельцу и администратору.
// Статус перечитывается под блокировкой: параллельное одобрение не
// даст удалить уже выданную заявку.
func (s *LendingService) Cancel(ctx context.Context, identity auth.Identity, requestID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", errs.ErrUnavailable)
	}
	defer tx.Rollback(ctx)

	requestRepo := s.requestRepo.WithTx(tx)

	request, err := requestRepo.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		return err
	}
	if request == nil {
		return fmt.Errorf("request not found: %w", errs.ErrNotFound)
	}

	if !identity.IsAdmin() && !identity.Owns(request.MemberID) {
		return fmt.Errorf("cancel request: %w", errs.ErrUnauthorized)
	}

	if request.Status != model.RequestStatusPending {
		return fmt.Errorf("request is %s, not pending: %w", request.Status, errs.ErrInvalidState)
	}

	if err := requestRepo.Delete(ctx, requestID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", errs.ErrUnavailable)
	}

	s.logger.Info("Borrow request canceled",
		zap.Int64("request_id", requestID),
		zap.Int64("member_id", request.MemberID),
	)

	return nil
}

// ListRequests получает страницу всех заявок (для администратора)
func (s *LendingService) ListRequests(ctx context.Context, identity auth.Identity, page, pageSize int) ([]*model.BorrowRequest, int, error) {
	if !identity.IsAdmin() {
		return nil, 0, fmt.Errorf("list requests: %w", errs.ErrUnauthorized)
	}

	page, pageSize = NormalizePage(page, pageSize)

	count, err := s.requestRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	requests, err := s.requestRepo.ListPaged(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}

	return requests, TotalPages(count, pageSize), nil
}

// ListMemberRequests получает заявки читателя, опционально по статусу
func (s *LendingService) ListMemberRequests(ctx context.Context, identity auth.Identity, memberID int64, statusFilter string) ([]*model.BorrowRequest, error) {
	if !identity.IsAdmin() && !identity.Owns(memberID) {
		return nil, fmt.Errorf("list member requests: %w", errs.ErrUnauthorized)
	}

	var status *model.RequestStatus
	if statusFilter != "" {
		parsed := model.RequestStatus(statusFilter)
		switch parsed {
		case model.RequestStatusPending, model.RequestStatusApproved,
			model.RequestStatusRejected, model.RequestStatusReturned:
			status = &parsed
		default:
			return nil, fmt.Errorf("unknown status %q: %w", statusFilter, errs.ErrValidation)
		}
	}

	return s.requestRepo.ListByMember(ctx, memberID, status)
}
