package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsultationPayment оплата консультации: связка читатель-преподаватель
// плюс ссылка на заказ во внешнем платёжном шлюзе
type ConsultationPayment struct {
	ID          int64           `json:"id"`
	MemberID    int64           `json:"member_id"`
	ProfessorID int64           `json:"professor_id"`
	OrderRef    string          `json:"order_ref"`
	Amount      decimal.Decimal `json:"amount"`
	PaidAt      time.Time       `json:"paid_at"`
}
