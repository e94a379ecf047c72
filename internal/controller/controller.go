package controller

import (
	"net/http"

	"github.com/Freeeeeet/library_service/internal/auth"
	"github.com/Freeeeeet/library_service/internal/notify"
	"github.com/Freeeeeet/library_service/internal/service"
	"go.uber.org/zap"
)

// Controller HTTP-слой: разбирает запросы, строит Identity из токена
// и зовёт сервисы. Вся доменная логика живёт ниже.
type Controller struct {
	members  *service.MemberService
	catalog  *service.CatalogService
	lending  *service.LendingService
	stats    *service.StatsService
	bookings *service.BookingService
	tokens   *auth.TokenManager
	notifier *notify.Notifier // nil если телеграм не настроен
	logger   *zap.Logger
}

func NewController(
	members *service.MemberService,
	catalog *service.CatalogService,
	lending *service.LendingService,
	stats *service.StatsService,
	bookings *service.BookingService,
	tokens *auth.TokenManager,
	notifier *notify.Notifier,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		members:  members,
		catalog:  catalog,
		lending:  lending,
		stats:    stats,
		bookings: bookings,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
	}
}

// Routes собирает маршруты API
func (c *Controller) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", c.handleRegister)
	mux.HandleFunc("POST /api/auth/login", c.handleLogin)

	mux.HandleFunc("GET /api/books", c.handleSearchBooks)
	mux.HandleFunc("GET /api/books/{isbn}", c.handleGetBook)
	mux.HandleFunc("POST /api/books", c.withIdentity(c.handleCreateBook))
	mux.HandleFunc("DELETE /api/books/{isbn}", c.withIdentity(c.handleDeleteBook))

	mux.HandleFunc("POST /api/requests", c.withIdentity(c.handleCreateRequest))
	mux.HandleFunc("GET /api/requests", c.withIdentity(c.handleListRequests))
	mux.HandleFunc("GET /api/requests/my", c.withIdentity(c.handleMyRequests))
	mux.HandleFunc("GET /api/requests/due", c.withIdentity(c.handleDueRequests))
	mux.HandleFunc("POST /api/requests/due/notify", c.withIdentity(c.handleNotifyDue))
	mux.HandleFunc("POST /api/requests/{id}/approve", c.withIdentity(c.handleApproveRequest))
	mux.HandleFunc("POST /api/requests/{id}/reject", c.withIdentity(c.handleRejectRequest))
	mux.HandleFunc("POST /api/requests/{id}/return", c.withIdentity(c.handleReturnBook))
	mux.HandleFunc("DELETE /api/requests/{id}", c.withIdentity(c.handleCancelRequest))

	mux.HandleFunc("GET /api/members", c.withIdentity(c.handleListMembers))
	mux.HandleFunc("GET /api/members/{id}", c.withIdentity(c.handleGetMember))
	mux.HandleFunc("PATCH /api/members/{id}", c.withIdentity(c.handleUpdateMember))
	mux.HandleFunc("DELETE /api/members/{id}", c.withIdentity(c.handleDeleteMember))
	mux.HandleFunc("GET /api/members/{id}/stats", c.withIdentity(c.handleMemberStats))
	mux.HandleFunc("GET /api/members/{id}/payments", c.withIdentity(c.handleMemberPayments))

	mux.HandleFunc("GET /api/professors", c.handleListProfessors)
	mux.HandleFunc("POST /api/professors", c.withIdentity(c.handleCreateProfessor))
	mux.HandleFunc("DELETE /api/professors/{id}", c.withIdentity(c.handleDeleteProfessor))
	mux.HandleFunc("POST /api/professors/{id}/book", c.withIdentity(c.handleBookConsultation))

	return mux
}
