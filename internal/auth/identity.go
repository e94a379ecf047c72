package auth

import "github.com/Freeeeeet/library_service/internal/model"

// Identity личность вызывающего. Сервисы получают её явным аргументом
// и не лезут в глобальное состояние сессии.
type Identity struct {
	MemberID int64
	Role     model.Role
}

// IsAdmin проверяет административную роль
func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// Owns проверяет что вызывающий владеет ресурсом читателя
func (i Identity) Owns(memberID int64) bool {
	return i.MemberID == memberID
}
