package service_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/library_service/internal/app"
	"github.com/Freeeeeet/library_service/internal/auth"
	"github.com/Freeeeeet/library_service/internal/errs"
	"github.com/Freeeeeet/library_service/internal/model"
	"github.com/Freeeeeet/library_service/internal/repository"
	"github.com/Freeeeeet/library_service/internal/service"
)

const (
	testLendingPeriodDays = 14
	testStartingCredits   = 100
	testConsultationPrice = 50
)

type testEnv struct {
	pool     *pgxpool.Pool
	bookRepo *repository.BookRepository
	members  *service.MemberService
	catalog  *service.CatalogService
	lending  *service.LendingService
	stats    *service.StatsService
	bookings *service.BookingService
}

func newTestEnv(t *testing.T) (context.Context, *testEnv) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set, skipping database scenarios")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	// Тесты гоняются на той же схеме, что и прод: применяем миграции goose
	migrator, err := app.NewMigrator(pool, filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	require.NoError(t, migrator.Run(ctx))
	require.NoError(t, migrator.Close())

	_, err = pool.Exec(ctx, `TRUNCATE consultation_payments, professors, borrow_requests, books, members RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	logger := zap.NewNop()

	bookRepo := repository.NewBookRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	professorRepo := repository.NewProfessorRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	return ctx, &testEnv{
		pool:     pool,
		bookRepo: bookRepo,
		members:  service.NewMemberService(pool, memberRepo, testStartingCredits, logger),
		catalog:  service.NewCatalogService(pool, bookRepo, logger),
		lending:  service.NewLendingService(pool, requestRepo, bookRepo, memberRepo, testLendingPeriodDays, logger),
		stats:    service.NewStatsService(requestRepo),
		bookings: service.NewBookingService(pool, memberRepo, professorRepo, paymentRepo, testConsultationPrice, logger),
	}
}

func (e *testEnv) registerUser(t *testing.T, ctx context.Context, email string) auth.Identity {
	t.Helper()

	member, err := e.members.Register(ctx, &model.Member{FirstName: "Test", LastName: "Reader", Email: email}, "secret123")
	require.NoError(t, err)

	return auth.Identity{MemberID: member.ID, Role: model.RoleUser}
}

func (e *testEnv) registerAdmin(t *testing.T, ctx context.Context, email string) auth.Identity {
	t.Helper()

	member, err := e.members.Register(ctx, &model.Member{FirstName: "Test", LastName: "Admin", Email: email}, "secret123")
	require.NoError(t, err)

	_, err = e.pool.Exec(ctx, `UPDATE members SET role = 'admin' WHERE id = $1`, member.ID)
	require.NoError(t, err)

	return auth.Identity{MemberID: member.ID, Role: model.RoleAdmin}
}

func (e *testEnv) addBook(t *testing.T, ctx context.Context, admin auth.Identity, isbn string, copies int) *model.Book {
	t.Helper()

	book, created, err := e.catalog.CreateOrRestock(ctx, admin, &model.Book{
		ISBN:        isbn,
		Title:       "Book " + isbn,
		Author:      "Author",
		TotalCopies: copies,
		Price:       decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	require.True(t, created)

	return book
}

func (e *testEnv) bookByID(t *testing.T, ctx context.Context, id int64) *model.Book {
	t.Helper()

	book, err := e.bookRepo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, book)

	return book
}

// Сценарий: заявка создаётся, одобряется с датами, книга возвращается,
// остаток восстанавливается
func Test_Lending_ApproveAndReturnFlow(t *testing.T) {
	ctx, env := newTestEnv(t)

	admin := env.registerAdmin(t, ctx, "admin@lib.test")
	user := env.registerUser(t, ctx, "reader@lib.test")
	book := env.addBook(t, ctx, admin, "1111111111111", 2)

	request, err := env.lending.CreateRequest(ctx, user, book.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, request.Status)
	assert.Nil(t, request.IssueDate)
	assert.Nil(t, request.DueDate)

	approved, err := env.lending.Approve(ctx, admin, request.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, approved.Status)
	require.NotNil(t, approved.IssueDate)
	require.NotNil(t, approved.DueDate)

	expectedDue := model.DueDateFor(*approved.IssueDate, testLendingPeriodDays)
	assert.True(t, approved.DueDate.Equal(expectedDue), "due date must be issue date + lending period")

	assert.Equal(t, 1, env.bookByID(t, ctx, book.ID).AvailableCopies)

	returned, err := env.lending.Return(ctx, user, request.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)

	assert.Equal(t, 2, env.bookByID(t, ctx, book.ID).AvailableCopies)
}

// Сценарий: при нуле свободных экземпляров заявка не создаётся вовсе
func Test_Lending_CreateRequestOutOfStock(t *testing.T) {
	ctx, env := newTestEnv(t)

	admin := env.registerAdmin(t, ctx, "admin@lib.test")
	first := env.registerUser(t, ctx, "first@lib.test")
	second := env.registerUser(t, ctx, "second@lib.test")
	book := env.addBook(t, ctx, admin, "2222222222222", 1)

	request, err := env.lending.CreateRequest(ctx, first, book.ID)
	require.NoError(t, err)
	_, err = env.lending.Approve(ctx, admin, request.ID)
	require.NoError(t, err)

	_, err = env.lending.CreateRequest(ctx, second, book.ID)
	assert.ErrorIs(t, err, errs.ErrOutOfStock)

	requests, err := env.lending.ListMemberRequests(ctx, second, second.MemberID, "")
	require.NoError(t, err)
	assert.Empty(t, requests, "failed create must not insert a request row")
}

// Сценарий: две pending-заявки на последний экземпляр, одобряется одна
func Test_Lending_LastCopyContention(t *testing.T) {
	ctx, env := newTestEnv(t)

	admin := env.registerAdmin(t, ctx, "admin@lib.test")
	first := env.registerUser(t, ctx, "first@lib.test")
	second := env.registerUser(t, ctx, "second@lib.test")
	book := env.addBook(t, ctx, admin, "3333333333333", 1)

	req1, err := env.lending.CreateRequest(ctx, first, book.ID)
	require.NoError(t, err)
	req2, err := env.lending.CreateRequest(ctx, second, book.ID)
	require.NoError(t, err)

	_, err = env.lending.Approve(ctx, admin, req1.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, env.bookByID(t, ctx, book.ID).AvailableCopies)

	_, err = env.lending.Approve(ctx, admin, req2.ID)
	assert.ErrorIs(t, err, errs.ErrOutOfStock)

	// Проигравшая заявка осталась pending, частичного перехода нет
	pending, err := env.lending.ListMemberRequests(ctx, second, second.MemberID, string(model.RequestStatusPending))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Nil(t, pending[0].IssueDate)
	assert.Equal(t, 0, env.bookByID(t, ctx, book.ID).AvailableCopies)
}

// Повторное одобрение той же заявки: ровно одно списание экземпляра
func Test_Lending_DoubleApprove(t *testing.T) {
	ctx, env := newTestEnv(t)

	admin := env.registerAdmin(t, ctx, "admin@lib.test")
	user := env.registerUser(t, ctx, "reader@lib.test")
	book := env.addBook(t, ctx, admin, "4444444444444", 5)

	request, err := env.lending.CreateRequest(ctx, user, book.ID)
	require.NoError(t, err)

	_, err = env.lending.Approve(ctx, admin, request.ID)
	require.NoError(t, err)

	_, err = env.lending.Approve(ctx, admin, request.ID)
	assert.ErrorIs(t, err, errs.ErrInvalidState)

	assert.Equal(t, 4, env.bookByID(t, ctx, book.ID).AvailableCopies)
}

// Конкурентные одобрения одной заявки: успех ровно у одного
func Test_Lending_ConcurrentApprovalsSerialize(t *testing.T) {
	ctx, env := newTestEnv(t)

	admin := env.registerAdmin(t, ctx, "admin@lib.test")
	user := env.registerUser(t, ctx, "reader@lib.test")
	book := env.addBook(t, ctx, admin, "5555555555555", 3)

	request, err := env.lending.CreateRequest(ctx, user, book.ID)
	require.NoError(t, err)

	const workers = 4
	results := make(chan error, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.lending.Approve(ctx, admin, request.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, invalidState int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, errs.ErrInvalidState):
			invalidState++
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one approval must win")
	assert.Equal(t, workers-1, invalidState)
	assert.Equal(t, 2, env.bookByID(t, ctx, book.ID).AvailableCopies, "inventory must be decremented once")
}

// Отклонение не трогает остатки, повторное отклонение — ошибка перехода
func Test_Lending_RejectIsFinal(t *testing.T) {
	ctx, env := newTestEnv(t)

	admin := env.registerAdmin(t, ctx, "admin@lib.test")
	user := env.registerUser(t, ctx, "reader@lib.test")
	book := env.addBook(t, ctx, admin, "6666666666666", 2)

	request, err := env.lending.CreateRequest(ctx, user, book.ID)
	require.NoError(t, err)

	rejected, err := env.lending.Reject(ctx, admin, request.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusRejected, rejected.Status)
	assert.Equal(t, 2, env.bookByID(t, ctx, book.ID).AvailableCopies)

	_, err = env.lending.Reject(ctx, admin, request.ID)
	assert.ErrorIs(t, err, errs.ErrInvalidState)
	assert.Equal(t, 2, env.bookByID(t, ctx, book.ID).AvailableCopies)

	_, err = env.lending.Approve(ctx, admin, request.ID)
	assert.ErrorIs(t, err, errs.ErrInvalidState)
}

// Возврат валиден только из approved
func Test_Lending_ReturnRequiresApproved(t *testing.T) {
	ctx, env := newTestEnv(t)

	admin := env.registerAdmin(t, ctx, "admin@lib.test")
	user := env.registerUser(t, ctx, "reader@lib.test")
	book := env.addBook(t, ctx, admin, "7777777777777", 1)

	request, err := env.lending.CreateRequest(ctx, user, book.ID)
	require.NoError(t, err)

	_, err = env.lending.Return(ctx, user, request.ID)
	assert.ErrorIs(t, err, errs.ErrInvalidState)

	_, err = env.lending.Approve(ctx, admin, request.ID)
	require.NoError(t, err)
	_, err = env.lending.Return(ctx, user, request.ID)
	require.NoError(t, err)

	// Повторный возврат
	_, err = env.lending.Return(ctx, user, request.ID)
	assert.ErrorIs(t, err, errs.ErrInvalidState)
	assert.Equal(t, 1, env.bookByID(t, ctx, book.ID).AvailableCopies)
}

// Отозвать можно только pending-заявку и только свою
func Test_Lending_Cancel(t *testing.T) {
	ctx, env := newTestEnv(t)

	admin := env.registerAdmin(t, ctx, "admin@lib.test")
	user := env.registerUser(t, ctx, "reader@lib.test")
	other := env.registerUser(t, ctx, "other@lib.test")
	book := env.addBook(t, ctx, admin, "8888888888888", 1)

	request, err := env.lending.CreateRequest(ctx, user, book.ID)
	require.NoError(t, err)

	err = env.lending.Cancel(ctx, other, request.ID)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	err = env.lending.Cancel(ctx, user, request.ID)
	require.NoError(t, err)

	requests, err := env.lending.ListMemberRequests(ctx, user, user.MemberID, "")
	require.NoError(t, err)
	assert.Empty(t, requests)

	// Одобренную заявку отозвать нельзя
	request, err = env.lending.CreateRequest(ctx, user, book.ID)
	require.NoError(t, err)
	_, err = env.lending.Approve(ctx, admin, request.ID)
	require.NoError(t, err)
	err = env.lending.Cancel(ctx, user, request.ID)
	assert.ErrorIs(t, err, errs.ErrInvalidState)
}

// Гонка отзыва и одобрения: побеждает ровно один, выданная заявка
// не удаляется и списанный экземпляр не теряется
func Test_Lending_ConcurrentCancelAndApprove(t *testing.T) {
	ctx, env := newTestEnv(t)

	admin := env.registerAdmin(t, ctx, "admin@lib.test")
	user := env.registerUser(t, ctx, "reader@lib.test")

	const rounds = 10
	for i := 0; i < rounds; i++ {
		book := env.addBook(t, ctx, admin, fmt.Sprintf("10000000000%02d", i), 1)

		request, err := env.lending.CreateRequest(ctx, user, book.ID)
		require.NoError(t, err)

		var wg sync.WaitGroup
		var approveErr, cancelErr error

		wg.Add(2)
		go func() {
			defer wg.Done()
			_, approveErr = env.lending.Approve(ctx, admin, request.ID)
		}()
		go func() {
			defer wg.Done()
			cancelErr = env.lending.Cancel(ctx, user, request.ID)
		}()
		wg.Wait()

		requests, err := env.lending.ListMemberRequests(ctx, user, user.MemberID, "")
		require.NoError(t, err)

		if cancelErr == nil {
			// Отзыв успел первым: одобрение видит исчезнувшую заявку,
			// экземпляр остаётся на полке
			assert.Error(t, approveErr)
			assert.Empty(t, requests)
			assert.Equal(t, 1, env.bookByID(t, ctx, book.ID).AvailableCopies)
		} else {
			// Одобрение успело первым: заявка выдана и осталась в книге учёта
			require.NoError(t, approveErr)
			assert.ErrorIs(t, cancelErr, errs.ErrInvalidState)
			require.Len(t, requests, 1)
			assert.Equal(t, model.RequestStatusApproved, requests[0].Status)
			assert.Equal(t, 0, env.bookByID(t, ctx, book.ID).AvailableCopies)

			// Возврат восстанавливает остаток: экземпляр не потерян
			_, err = env.lending.Return(ctx, user, request.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, env.bookByID(t, ctx, book.ID).AvailableCopies)
		}

		_, err = env.pool.Exec(ctx, `TRUNCATE borrow_requests RESTART IDENTITY CASCADE`)
		require.NoError(t, err)
	}
}

// Метасимволы LIKE в поисковом запросе ищутся буквально
func Test_Catalog_SearchLiteralWildcards(t *testing.T) {
	ctx, env := newTestEnv(t)

	admin := env.registerAdmin(t, ctx, "admin@lib.test")

	_, _, err := env.catalog.CreateOrRestock(ctx, admin, &model.Book{
		ISBN: "5656565656565", Title: "100% Go", TotalCopies: 1,
	})
	require.NoError(t, err)
	_, _, err = env.catalog.CreateOrRestock(ctx, admin, &model.Book{
		ISBN: "6565656565656", Title: "Plain Title", TotalCopies: 1,
	})
	require.NoError(t, err)

	books, _, err := env.catalog.Search(ctx, "100%", 1, 20)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "100% Go", books[0].Title)

	// Голый % без экранирования совпал бы со всем каталогом
	books, _, err = env.catalog.Search(ctx, "%", 1, 20)
	require.NoError(t, err)
	assert.Len(t, books, 1)

	books, _, err = env.catalog.Search(ctx, "_", 1, 20)
	require.NoError(t, err)
	assert.Empty(t, books)
}

// Закон допоставки: 10/3 + 5 экземпляров = 15/8
func Test_Catalog_RestockLaw(t *testing.T) {
	ctx, env := newTestEnv(t)

	admin := env.registerAdmin(t, ctx, "admin@lib.test")
	book := env.addBook(t, ctx, admin, "9999999999999", 10)

	_, err := env.pool.Exec(ctx, `UPDATE books SET available_copies = 3 WHERE id = $1`, book.ID)
	require.NoError(t, err)

	restocked, created, err := env.catalog.CreateOrRestock(ctx, admin, &model.Book{
		ISBN:        "9999999999999",
		Title:       "ignored on restock",
		TotalCopies: 5,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 15, restocked.TotalCopies)
	assert.Equal(t, 8, restocked.AvailableCopies)
}

// Списание кредитов: нехватка не меняет баланс
func Test_Members_DeductCredits(t *testing.T) {
	ctx, env := newTestEnv(t)

	user := env.registerUser(t, ctx, "reader@lib.test")

	_, err := env.pool.Exec(ctx, `UPDATE members SET credits = 15 WHERE id = $1`, user.MemberID)
	require.NoError(t, err)

	_, err = env.members.DeductCredits(ctx, user.MemberID, 20)
	assert.ErrorIs(t, err, errs.ErrInsufficientCredits)

	member, err := env.members.GetByID(ctx, user, user.MemberID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), member.Credits)

	member, err = env.members.DeductCredits(ctx, user.MemberID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), member.Credits)
}

// Отчёты: счётчики по читателю и список "к возврату"
func Test_Stats_MemberCountsAndDueReport(t *testing.T) {
	ctx, env := newTestEnv(t)

	admin := env.registerAdmin(t, ctx, "admin@lib.test")
	user := env.registerUser(t, ctx, "reader@lib.test")
	first := env.addBook(t, ctx, admin, "1212121212121", 1)
	second := env.addBook(t, ctx, admin, "3434343434343", 1)

	reqA, err := env.lending.CreateRequest(ctx, user, first.ID)
	require.NoError(t, err)
	_, err = env.lending.CreateRequest(ctx, user, second.ID)
	require.NoError(t, err)

	approved, err := env.lending.Approve(ctx, admin, reqA.ID)
	require.NoError(t, err)

	stats, err := env.stats.MemberStats(ctx, admin, user.MemberID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 1, stats.Pending)

	due, err := env.stats.DueOn(ctx, admin, approved.DueDate.Format(time.DateOnly))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, reqA.ID, due[0].RequestID)
	assert.Equal(t, "Test Reader", due[0].MemberName)

	// На другую дату пусто
	due, err = env.stats.DueOn(ctx, admin, approved.DueDate.AddDate(0, 0, 1).Format(time.DateOnly))
	require.NoError(t, err)
	assert.Empty(t, due)

	// Не администратору отчёт недоступен
	_, err = env.stats.DueOn(ctx, user, "")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

// Бронирование консультации: списание и запись об оплате атомарны,
// повторное бронирование не списывает второй раз
func Test_Bookings_Consultation(t *testing.T) {
	ctx, env := newTestEnv(t)

	admin := env.registerAdmin(t, ctx, "admin@lib.test")
	user := env.registerUser(t, ctx, "reader@lib.test")

	professor, err := env.bookings.CreateProfessor(ctx, admin, &model.Professor{
		Name:         "Dr. Petrova",
		Email:        "petrova@uni.test",
		Department:   "CS",
		CalendlyLink: "https://calendly.com/petrova",
	})
	require.NoError(t, err)

	access, err := env.bookings.BookConsultation(ctx, user, professor.ID)
	require.NoError(t, err)
	assert.False(t, access.AlreadyPaid)
	assert.Equal(t, "https://calendly.com/petrova", access.CalendlyLink)
	assert.NotEmpty(t, access.OrderRef)

	member, err := env.members.GetByID(ctx, user, user.MemberID)
	require.NoError(t, err)
	assert.Equal(t, int64(testStartingCredits-testConsultationPrice), member.Credits)

	again, err := env.bookings.BookConsultation(ctx, user, professor.ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyPaid)
	assert.Equal(t, access.OrderRef, again.OrderRef)

	// История оплат: одна запись, чужому читателю недоступна
	payments, err := env.bookings.ListPayments(ctx, user, user.MemberID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, access.OrderRef, payments[0].OrderRef)
	assert.Equal(t, professor.ID, payments[0].ProfessorID)

	stranger := env.registerUser(t, ctx, "stranger@lib.test")
	_, err = env.bookings.ListPayments(ctx, stranger, user.MemberID)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	member, err = env.members.GetByID(ctx, user, user.MemberID)
	require.NoError(t, err)
	assert.Equal(t, int64(testStartingCredits-testConsultationPrice), member.Credits, "repeat booking must not charge twice")

	// Нехватка кредитов: баланс не меняется, оплата не появляется
	_, err = env.pool.Exec(ctx, `UPDATE members SET credits = 10 WHERE id = $1`, user.MemberID)
	require.NoError(t, err)

	other, err := env.bookings.CreateProfessor(ctx, admin, &model.Professor{
		Name:         "Dr. Sidorov",
		Email:        "sidorov@uni.test",
		CalendlyLink: "https://calendly.com/sidorov",
	})
	require.NoError(t, err)

	_, err = env.bookings.BookConsultation(ctx, user, other.ID)
	assert.ErrorIs(t, err, errs.ErrInsufficientCredits)

	member, err = env.members.GetByID(ctx, user, user.MemberID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), member.Credits)
}

// Регистрация: дубликат email отклоняется, пароль не возвращается
func Test_Members_RegisterConflict(t *testing.T) {
	ctx, env := newTestEnv(t)

	first, err := env.members.Register(ctx, &model.Member{FirstName: "A", Email: "dup@lib.test"}, "secret123")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, first.Role)
	assert.Equal(t, model.MembershipActive, first.MembershipStatus)
	assert.Equal(t, int64(testStartingCredits), first.Credits)

	_, err = env.members.Register(ctx, &model.Member{FirstName: "B", Email: "dup@lib.test"}, "secret123")
	assert.ErrorIs(t, err, errs.ErrConflict)

	_, err = env.members.Register(ctx, &model.Member{FirstName: "C", Email: "short@lib.test"}, "123")
	assert.ErrorIs(t, err, errs.ErrValidation)
}
