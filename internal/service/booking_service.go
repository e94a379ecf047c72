package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/library_service/internal/auth"
	"github.com/Freeeeeet/library_service/internal/errs"
	"github.com/Freeeeeet/library_service/internal/model"
	"github.com/Freeeeeet/library_service/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ConsultationAccess результат бронирования: ссылка на планировщик
// преподавателя открывается после оплаты
type ConsultationAccess struct {
	Professor    *model.Professor `json:"professor"`
	OrderRef     string           `json:"order_ref"`
	CalendlyLink string           `json:"calendly_link"`
	AlreadyPaid  bool             `json:"already_paid"`
}

// BookingService платные консультации с преподавателями.
// Та же дисциплина check-then-commit, что и у выдачи книг:
// списание кредитов и запись об оплате — одна транзакция.
type BookingService struct {
	pool          *pgxpool.Pool
	memberRepo    *repository.MemberRepository
	professorRepo *repository.ProfessorRepository
	paymentRepo   *repository.PaymentRepository
	price         int64
	logger        *zap.Logger
}

func NewBookingService(
	pool *pgxpool.Pool,
	memberRepo *repository.MemberRepository,
	professorRepo *repository.ProfessorRepository,
	paymentRepo *repository.PaymentRepository,
	price int64,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		pool:          pool,
		memberRepo:    memberRepo,
		professorRepo: professorRepo,
		paymentRepo:   paymentRepo,
		price:         price,
		logger:        logger,
	}
}

// BookConsultation открывает читателю ссылку на консультацию.
// Уже оплаченная связка читатель-преподаватель отдаёт ссылку без
// повторного списания.
func (s *BookingService) BookConsultation(ctx context.Context, identity auth.Identity, professorID int64) (*ConsultationAccess, error) {
	professor, err := s.professorRepo.GetByID(ctx, professorID)
	if err != nil {
		return nil, err
	}
	if professor == nil {
		return nil, fmt.Errorf("professor not found: %w", errs.ErrNotFound)
	}

	existing, err := s.paymentRepo.GetByMemberAndProfessor(ctx, identity.MemberID, professorID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &ConsultationAccess{
			Professor:    professor,
			OrderRef:     existing.OrderRef,
			CalendlyLink: professor.CalendlyLink,
			AlreadyPaid:  true,
		}, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", errs.ErrUnavailable)
	}
	defer tx.Rollback(ctx)

	memberRepo := s.memberRepo.WithTx(tx)
	paymentRepo := s.paymentRepo.WithTx(tx)

	member, err := memberRepo.GetByIDForUpdate(ctx, identity.MemberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("member not found: %w", errs.ErrNotFound)
	}

	if !member.CanSpend(s.price) {
		return nil, fmt.Errorf("balance %d, need %d: %w", member.Credits, s.price, errs.ErrInsufficientCredits)
	}

	if err := memberRepo.SetCredits(ctx, member.ID, member.Credits-s.price); err != nil {
		return nil, err
	}

	payment := &model.ConsultationPayment{
		MemberID:    member.ID,
		ProfessorID: professor.ID,
		OrderRef:    uuid.NewString(),
		Amount:      decimal.NewFromInt(s.price),
	}

	if err := paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", errs.ErrUnavailable)
	}

	s.logger.Info("Consultation booked",
		zap.Int64("member_id", member.ID),
		zap.Int64("professor_id", professor.ID),
		zap.String("order_ref", payment.OrderRef),
	)

	return &ConsultationAccess{
		Professor:    professor,
		OrderRef:     payment.OrderRef,
		CalendlyLink: professor.CalendlyLink,
	}, nil
}

// ListPayments история оплат читателя (сам читатель или администратор)
func (s *BookingService) ListPayments(ctx context.Context, identity auth.Identity, memberID int64) ([]*model.ConsultationPayment, error) {
	if !identity.IsAdmin() && !identity.Owns(memberID) {
		return nil, fmt.Errorf("list payments: %w", errs.ErrUnauthorized)
	}
	return s.paymentRepo.ListByMember(ctx, memberID)
}

// CreateProfessor добавляет преподавателя (только администратор)
func (s *BookingService) CreateProfessor(ctx context.Context, identity auth.Identity, professor *model.Professor) (*model.Professor, error) {
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("create professor: %w", errs.ErrUnauthorized)
	}

	if professor.Name == "" || professor.Email == "" || professor.CalendlyLink == "" {
		return nil, fmt.Errorf("name, email and calendly link are required: %w", errs.ErrValidation)
	}

	if err := s.professorRepo.Create(ctx, professor); err != nil {
		return nil, err
	}

	s.logger.Info("Professor created",
		zap.Int64("professor_id", professor.ID),
		zap.String("email", professor.Email),
	)

	return professor, nil
}

// ListProfessors получает всех преподавателей
func (s *BookingService) ListProfessors(ctx context.Context) ([]*model.Professor, error) {
	return s.professorRepo.List(ctx)
}

// DeleteProfessor удаляет преподавателя (только администратор)
func (s *BookingService) DeleteProfessor(ctx context.Context, identity auth.Identity, professorID int64) error {
	if !identity.IsAdmin() {
		return fmt.Errorf("delete professor: %w", errs.ErrUnauthorized)
	}

	if err := s.professorRepo.Delete(ctx, professorID); err != nil {
		return err
	}

	s.logger.Info("Professor deleted", zap.Int64("professor_id", professorID))
	return nil
}
