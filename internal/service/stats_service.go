package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/library_service/internal/auth"
	"github.com/Freeeeeet/library_service/internal/errs"
	"github.com/Freeeeeet/library_service/internal/model"
	"github.com/Freeeeeet/library_service/internal/repository"
)

// StatsService read-only отчёты для дашбордов: ничего не мутирует,
// безопасно читать из реплики
type StatsService struct {
	requestRepo *repository.RequestRepository
}

func NewStatsService(requestRepo *repository.RequestRepository) *StatsService {
	return &StatsService{requestRepo: requestRepo}
}

// MemberStats счётчики заявок читателя: всего, выдано, ожидает
func (s *StatsService) MemberStats(ctx context.Context, identity auth.Identity, memberID int64) (*model.MemberStats, error) {
	if !identity.IsAdmin() && !identity.Owns(memberID) {
		return nil, fmt.Errorf("member stats: %w", errs.ErrUnauthorized)
	}

	total, approved, pending, err := s.requestRepo.CountByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	return &model.MemberStats{
		MemberID: memberID,
		Total:    total,
		Approved: approved,
		Pending:  pending,
	}, nil
}

// DueOn выданные книги со сроком возврата в указанную дату
// (YYYY-MM-DD, пустая строка — сегодня). Только администратор.
func (s *StatsService) DueOn(ctx context.Context, identity auth.Identity, date string) ([]*model.DueSummary, error) {
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("due report: %w", errs.ErrUnauthorized)
	}

	day := model.UTCDate(time.Now())
	if date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", errs.ErrValidation)
		}
		day = parsed
	}

	return s.requestRepo.DueOn(ctx, day)
}
