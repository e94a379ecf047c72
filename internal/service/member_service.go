package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/library_service/internal/auth"
	"github.com/Freeeeeet/library_service/internal/errs"
	"github.com/Freeeeeet/library_service/internal/model"
	"github.com/Freeeeeet/library_service/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MemberService регистрация читателей и учёт кредитов
type MemberService struct {
	pool            *pgxpool.Pool
	memberRepo      *repository.MemberRepository
	startingCredits int64
	logger          *zap.Logger
}

func NewMemberService(pool *pgxpool.Pool, memberRepo *repository.MemberRepository, startingCredits int64, logger *zap.Logger) *MemberService {
	return &MemberService{
		pool:            pool,
		memberRepo:      memberRepo,
		startingCredits: startingCredits,
		logger:          logger,
	}
}

// Register регистрирует нового читателя: хэширует пароль, выдаёт
// стартовые кредиты, роль user и активное членство. Дубликат email
// отклоняется с конфликтом.
func (s *MemberService) Register(ctx context.Context, member *model.Member, password string) (*model.Member, error) {
	member.Email = strings.TrimSpace(strings.ToLower(member.Email))

	if member.Email == "" || !strings.Contains(member.Email, "@") {
		return nil, fmt.Errorf("valid email is required: %w", errs.ErrValidation)
	}
	if member.FirstName == "" {
		return nil, fmt.Errorf("first name is required: %w", errs.ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", errs.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	member.PasswordHash = string(hash)
	member.MembershipStatus = model.MembershipActive
	member.Role = model.RoleUser
	member.Credits = s.startingCredits

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	s.logger.Info("Member registered",
		zap.Int64("member_id", member.ID),
		zap.String("email", member.Email),
	)

	return member, nil
}

// Authenticate проверяет email и пароль, возвращает читателя
func (s *MemberService) Authenticate(ctx context.Context, email, password string) (*model.Member, error) {
	member, err := s.memberRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("invalid email or password: %w", errs.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", errs.ErrUnauthorized)
	}

	return member, nil
}

// DeductCredits списывает кредиты с баланса. Баланс читается под
// блокировкой в транзакции: при нехватке списание не происходит,
// параллельные списания не теряют обновлений.
func (s *MemberService) DeductCredits(ctx context.Context, memberID, amount int64) (*model.Member, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", errs.ErrValidation)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", errs.ErrUnavailable)
	}
	defer tx.Rollback(ctx)

	memberRepo := s.memberRepo.WithTx(tx)

	member, err := memberRepo.GetByIDForUpdate(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("member not found: %w", errs.ErrNotFound)
	}

	if !member.CanSpend(amount) {
		return nil, fmt.Errorf("balance %d, need %d: %w", member.Credits, amount, errs.ErrInsufficientCredits)
	}

	member.Credits -= amount
	if err := memberRepo.SetCredits(ctx, member.ID, member.Credits); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", errs.ErrUnavailable)
	}

	s.logger.Info("Credits deducted",
		zap.Int64("member_id", member.ID),
		zap.Int64("amount", amount),
		zap.Int64("balance", member.Credits),
	)

	return member, nil
}

// GetByID получает читателя
func (s *MemberService) GetByID(ctx context.Context, identity auth.Identity, memberID int64) (*model.Member, error) {
	if !identity.IsAdmin() && !identity.Owns(memberID) {
		return nil, fmt.Errorf("get member: %w", errs.ErrUnauthorized)
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("member not found: %w", errs.ErrNotFound)
	}
	return member, nil
}

// Update обновляет профиль читателя (сам читатель или администратор)
func (s *MemberService) Update(ctx context.Context, identity auth.Identity, member *model.Member) (*model.Member, error) {
	if !identity.IsAdmin() && !identity.Owns(member.ID) {
		return nil, fmt.Errorf("update member: %w", errs.ErrUnauthorized)
	}

	existing, err := s.memberRepo.GetByID(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("member not found: %w", errs.ErrNotFound)
	}

	if member.FirstName != "" {
		existing.FirstName = member.FirstName
	}
	if member.LastName != "" {
		existing.LastName = member.LastName
	}
	if member.PhoneNumber != "" {
		existing.PhoneNumber = member.PhoneNumber
	}
	if member.Address != "" {
		existing.Address = member.Address
	}
	// Статус членства меняет только администратор
	if identity.IsAdmin() && member.MembershipStatus != "" {
		existing.MembershipStatus = member.MembershipStatus
	}

	if err := s.memberRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.logger.Info("Member updated", zap.Int64("member_id", existing.ID))
	return existing, nil
}

// Delete удаляет читателя (только администратор)
func (s *MemberService) Delete(ctx context.Context, identity auth.Identity, memberID int64) error {
	if !identity.IsAdmin() {
		return fmt.Errorf("delete member: %w", errs.ErrUnauthorized)
	}

	if err := s.memberRepo.Delete(ctx, memberID); err != nil {
		return err
	}

	s.logger.Info("Member deleted", zap.Int64("member_id", memberID))
	return nil
}

// List получает всех читателей (только администратор)
func (s *MemberService) List(ctx context.Context, identity auth.Identity) ([]*model.Member, error) {
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("list members: %w", errs.ErrUnauthorized)
	}
	return s.memberRepo.List(ctx)
}
