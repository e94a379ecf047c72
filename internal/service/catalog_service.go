package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/library_service/internal/auth"
	"github.com/Freeeeeet/library_service/internal/errs"
	"github.com/Freeeeeet/library_service/internal/model"
	"github.com/Freeeeeet/library_service/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// CatalogService каталог книг и учёт экземпляров
type CatalogService struct {
	pool     *pgxpool.Pool
	bookRepo *repository.BookRepository
	logger   *zap.Logger
}

func NewCatalogService(pool *pgxpool.Pool, bookRepo *repository.BookRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		pool:     pool,
		bookRepo: bookRepo,
		logger:   logger,
	}
}

// CreateOrRestock добавляет книгу в каталог. Если ISBN уже есть,
// входящее количество трактуется как допоставка: общее и доступное
// увеличиваются на него, дубликат не создаётся. Возвращает книгу
// и признак "создана" либо "пополнена".
func (s *CatalogService) CreateOrRestock(ctx context.Context, identity auth.Identity, book *model.Book) (*model.Book, bool, error) {
	if !identity.IsAdmin() {
		return nil, false, fmt.Errorf("create book: %w", errs.ErrUnauthorized)
	}

	if !model.ValidISBN(book.ISBN) {
		return nil, false, fmt.Errorf("isbn must be 13 digits: %w", errs.ErrValidation)
	}
	if book.Title == "" {
		return nil, false, fmt.Errorf("title is required: %w", errs.ErrValidation)
	}
	if book.TotalCopies < 1 {
		return nil, false, fmt.Errorf("total copies must be at least 1: %w", errs.ErrValidation)
	}
	if book.Price.IsNegative() {
		return nil, false, fmt.Errorf("price must not be negative: %w", errs.ErrValidation)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin transaction: %w", errs.ErrUnavailable)
	}
	defer tx.Rollback(ctx)

	bookRepo := s.bookRepo.WithTx(tx)

	existing, err := bookRepo.GetByISBNForUpdate(ctx, book.ISBN)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		if err := bookRepo.Create(ctx, book); err != nil {
			return nil, false, err
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, false, fmt.Errorf("commit transaction: %w", errs.ErrUnavailable)
		}

		s.logger.Info("Book created",
			zap.Int64("book_id", book.ID),
			zap.String("isbn", book.ISBN),
			zap.Int("copies", book.TotalCopies),
		)

		return book, true, nil
	}

	restocked, err := bookRepo.AddCopies(ctx, existing.ID, book.TotalCopies)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit transaction: %w", errs.ErrUnavailable)
	}

	s.logger.Info("Book restocked",
		zap.Int64("book_id", restocked.ID),
		zap.String("isbn", restocked.ISBN),
		zap.Int("added_copies", book.TotalCopies),
		zap.Int("total_copies", restocked.TotalCopies),
	)

	return restocked, false, nil
}

// DeleteByISBN удаляет книгу из каталога
func (s *CatalogService) DeleteByISBN(ctx context.Context, identity auth.Identity, isbn string) error {
	if !identity.IsAdmin() {
		return fmt.Errorf("delete book: %w", errs.ErrUnauthorized)
	}

	if err := s.bookRepo.DeleteByISBN(ctx, isbn); err != nil {
		return err
	}

	s.logger.Info("Book deleted", zap.String("isbn", isbn))
	return nil
}

// GetByISBN получает книгу по ISBN
func (s *CatalogService) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	book, err := s.bookRepo.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, fmt.Errorf("book not found: %w", errs.ErrNotFound)
	}
	return book, nil
}

// Search ищет книги по подстроке названия, со страницами
func (s *CatalogService) Search(ctx context.Context, term string, page, pageSize int) ([]*model.Book, int, error) {
	page, pageSize = NormalizePage(page, pageSize)

	count, err := s.bookRepo.CountByTitle(ctx, term)
	if err != nil {
		return nil, 0, err
	}

	books, err := s.bookRepo.Search(ctx, term, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}

	return books, TotalPages(count, pageSize), nil
}
