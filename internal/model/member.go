package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "active"
	MembershipExpired MembershipStatus = "expired"
)

// Member читатель библиотеки. PasswordHash наружу не отдаётся.
type Member struct {
	ID               int64            `json:"id"`
	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	Email            string           `json:"email"`
	PasswordHash     string           `json:"-"`
	PhoneNumber      string           `json:"phone_number,omitempty"`
	Address          string           `json:"address,omitempty"`
	MembershipStatus MembershipStatus `json:"membership_status"`
	Role             Role             `json:"role"`
	Credits          int64            `json:"credits"`
	CreatedAt        time.Time        `json:"created_at"`
}

// DisplayName имя для списков и уведомлений
func (m *Member) DisplayName() string {
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// CanSpend проверяет что на балансе хватает кредитов
func (m *Member) CanSpend(amount int64) bool {
	return amount >= 0 && m.Credits >= amount
}
