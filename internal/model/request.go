package model

import "time"

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"  // Ожидает решения администратора
	RequestStatusApproved RequestStatus = "approved" // Книга выдана
	RequestStatusRejected RequestStatus = "rejected" // Отклонено администратором
	RequestStatusReturned RequestStatus = "returned" // Книга возвращена
)

// CanTransitionTo проверяет допустимость перехода статуса.
// Разрешено только pending -> approved/rejected и approved -> returned.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch s {
	case RequestStatusPending:
		return next == RequestStatusApproved || next == RequestStatusRejected
	case RequestStatusApproved:
		return next == RequestStatusReturned
	default:
		return false
	}
}

// Terminal проверяет что из статуса нет исходящих переходов
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusRejected || s == RequestStatusReturned
}

// BorrowRequest заявка на выдачу книги. Название и ISBN книги
// денормализованы в строку заявки на момент создания.
type BorrowRequest struct {
	ID         int64         `json:"id"`
	MemberID   int64         `json:"member_id"`
	BookID     int64         `json:"book_id"`
	BookTitle  string        `json:"book_title"`
	ISBN       string        `json:"isbn_no"`
	Status     RequestStatus `json:"status"`
	IssueDate  *time.Time    `json:"issue_date,omitempty"`
	DueDate    *time.Time    `json:"due_date,omitempty"`
	ReturnDate *time.Time    `json:"return_date,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`

	// Имя читателя для списков (не из таблицы заявок)
	MemberName string `json:"member_name,omitempty"`
}

// DueSummary строка отчёта "к возврату сегодня"
type DueSummary struct {
	RequestID  int64     `json:"request_id"`
	MemberName string    `json:"member_name"`
	BookTitle  string    `json:"book_title"`
	ISBN       string    `json:"isbn_no"`
	DueDate    time.Time `json:"due_date"`
}

// UTCDate обрезает момент времени до календарной даты в UTC.
// Даты выдачи и возврата храним только как даты, чтобы срок
// не плыл через границу часового пояса.
func UTCDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DueDateFor считает срок возврата: дата выдачи плюс период в календарных днях
func DueDateFor(issue time.Time, periodDays int) time.Time {
	return UTCDate(issue).AddDate(0, 0, periodDays)
}
