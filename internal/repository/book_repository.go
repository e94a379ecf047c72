package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/library_service/internal/errs"
	"github.com/Freeeeeet/library_service/internal/model"
	"github.com/Freeeeeet/library_service/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `id, isbn_no, title, author, publisher, genre, pages, total_copies, available_copies, price, image_url, created_at`

type BookRepository struct {
	db base.Querier
}

func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{db: pool}
}

// WithTx возвращает репозиторий, выполняющий запросы внутри транзакции
func (r *BookRepository) WithTx(tx pgx.Tx) *BookRepository {
	return &BookRepository{db: tx}
}

// Create создаёт новую книгу, доступных экземпляров столько же сколько всего
func (r *BookRepository) Create(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (isbn_no, title, author, publisher, genre, pages, total_copies, available_copies, price, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8, $9)
		RETURNING id, available_copies, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		book.ISBN,
		book.Title,
		book.Author,
		book.Publisher,
		book.Genre,
		book.Pages,
		book.TotalCopies,
		book.Price,
		book.ImageURL,
	).Scan(&book.ID, &book.AvailableCopies, &book.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create book: %w", errs.ErrConflict)
		}
		return fmt.Errorf("create book: %w", err)
	}

	return nil
}

func (r *BookRepository) scanBook(row pgx.Row) (*model.Book, error) {
	var book model.Book
	err := row.Scan(
		&book.ID,
		&book.ISBN,
		&book.Title,
		&book.Author,
		&book.Publisher,
		&book.Genre,
		&book.Pages,
		&book.TotalCopies,
		&book.AvailableCopies,
		&book.Price,
		&book.ImageURL,
		&book.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

// GetByID получает книгу по ID
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := r.scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get book by id: %w", err)
	}
	return book, nil
}

// GetByISBN получает книгу по ISBN
func (r *BookRepository) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE isbn_no = $1`

	book, err := r.scanBook(r.db.QueryRow(ctx, query, isbn))
	if err != nil {
		return nil, fmt.Errorf("get book by isbn: %w", err)
	}
	return book, nil
}

// GetByISBNForUpdate получает книгу по ISBN с блокировкой строки
func (r *BookRepository) GetByISBNForUpdate(ctx context.Context, isbn string) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE isbn_no = $1 FOR UPDATE`

	book, err := r.scanBook(r.db.QueryRow(ctx, query, isbn))
	if err != nil {
		return nil, fmt.Errorf("get book by isbn for update: %w", err)
	}
	return book, nil
}

// AddCopies добавляет полученные экземпляры к общему и доступному количеству
func (r *BookRepository) AddCopies(ctx context.Context, id int64, extra int) (*model.Book, error) {
	query := `
		UPDATE books
		SET total_copies = total_copies + $1, available_copies = available_copies + $1
		WHERE id = $2
		RETURNING ` + bookColumns

	book, err := r.scanBook(r.db.QueryRow(ctx, query, extra, id))
	if err != nil {
		return nil, fmt.Errorf("add book copies: %w", err)
	}
	if book == nil {
		return nil, fmt.Errorf("add book copies: %w", errs.ErrNotFound)
	}
	return book, nil
}

// DecrementAvailable списывает один доступный экземпляр.
// Условие available_copies > 0 в самом UPDATE: при гонке за последний
// экземпляр проигравший получает 0 затронутых строк, а не минус в остатке.
func (r *BookRepository) DecrementAvailable(ctx context.Context, id int64) error {
	query := `
		UPDATE books
		SET available_copies = available_copies - 1
		WHERE id = $1 AND available_copies > 0
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("decrement available copies: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("decrement available copies: %w", errs.ErrOutOfStock)
	}

	return nil
}

// IncrementAvailable возвращает один экземпляр в доступные
func (r *BookRepository) IncrementAvailable(ctx context.Context, id int64) error {
	query := `
		UPDATE books
		SET available_copies = available_copies + 1
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment available copies: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("increment available copies: %w", errs.ErrNotFound)
	}

	return nil
}

// DeleteByISBN удаляет книгу по ISBN
func (r *BookRepository) DeleteByISBN(ctx context.Context, isbn string) error {
	query := `DELETE FROM books WHERE isbn_no = $1`

	result, err := r.db.Exec(ctx, query, isbn)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete book: %w", errs.ErrNotFound)
	}

	return nil
}

// escapeLike экранирует метасимволы шаблона LIKE в пользовательском
// вводе, чтобы % и _ искались буквально
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// Search ищет книги по подстроке названия (без учёта регистра) со страницей
func (r *BookRepository) Search(ctx context.Context, term string, limit, offset int) ([]*model.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE title ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, escapeLike(term), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	var books []*model.Book
	for rows.Next() {
		var book model.Book
		err := rows.Scan(
			&book.ID,
			&book.ISBN,
			&book.Title,
			&book.Author,
			&book.Publisher,
			&book.Genre,
			&book.Pages,
			&book.TotalCopies,
			&book.AvailableCopies,
			&book.Price,
			&book.ImageURL,
			&book.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, &book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}

	return books, nil
}

// CountByTitle считает книги, подходящие под поисковый запрос
func (r *BookRepository) CountByTitle(ctx context.Context, term string) (int, error) {
	query := `SELECT COUNT(*) FROM books WHERE title ILIKE '%' || $1 || '%'`

	var count int
	if err := r.db.QueryRow(ctx, query, escapeLike(term)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}

	return count, nil
}
