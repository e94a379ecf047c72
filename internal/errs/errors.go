package errs

import "errors"

// Доменные ошибки. Сервисный слой оборачивает их через fmt.Errorf("...: %w"),
// контроллер разворачивает errors.Is и отдаёт клиенту код + сообщение.
var (
	// ErrNotFound сущность не найдена (по id или ISBN)
	ErrNotFound = errors.New("not found")

	// ErrInvalidState недопустимый переход статуса заявки
	ErrInvalidState = errors.New("invalid state transition")

	// ErrOutOfStock нет доступных экземпляров книги
	ErrOutOfStock = errors.New("no available copies")

	// ErrInsufficientCredits недостаточно кредитов на балансе
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrConflict нарушение уникальности (например, дубликат email)
	ErrConflict = errors.New("already exists")

	// ErrValidation некорректные входные данные
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized нет прав на операцию или невалидный токен
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable хранилище недоступно, операцию можно повторить
	ErrUnavailable = errors.New("storage unavailable")
)
