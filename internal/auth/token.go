package auth

import (
	"fmt"
	"strconv"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/Freeeeeet/library_service/internal/errs"
	"github.com/Freeeeeet/library_service/internal/model"
)

// TokenManager выпускает и проверяет paseto v4.local токены
// с member_id и ролью внутри
type TokenManager struct {
	key paseto.V4SymmetricKey
	ttl time.Duration
}

// NewTokenManager создаёт менеджер токенов. Пустой hexKey — одноразовый
// ключ на время жизни процесса (токены умирают вместе с рестартом).
func NewTokenManager(hexKey string, ttl time.Duration) (*TokenManager, error) {
	if hexKey == "" {
		return &TokenManager{key: paseto.NewV4SymmetricKey(), ttl: ttl}, nil
	}

	key, err := paseto.V4SymmetricKeyFromHex(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse token key: %w", err)
	}

	return &TokenManager{key: key, ttl: ttl}, nil
}

// Issue выпускает токен для читателя
func (m *TokenManager) Issue(identity Identity) string {
	token := paseto.NewToken()

	now := time.Now()
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(m.ttl))
	token.SetString("member_id", strconv.FormatInt(identity.MemberID, 10))
	token.SetString("role", string(identity.Role))

	return token.V4Encrypt(m.key, nil)
}

// Parse проверяет токен и возвращает личность вызывающего
func (m *TokenManager) Parse(raw string) (Identity, error) {
	parser := paseto.NewParser()

	token, err := parser.ParseV4Local(m.key, raw, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("parse token: %w", errs.ErrUnauthorized)
	}

	rawID, err := token.GetString("member_id")
	if err != nil {
		return Identity{}, fmt.Errorf("token member_id claim: %w", errs.ErrUnauthorized)
	}

	memberID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("token member_id claim: %w", errs.ErrUnauthorized)
	}

	role, err := token.GetString("role")
	if err != nil {
		return Identity{}, fmt.Errorf("token role claim: %w", errs.ErrUnauthorized)
	}

	return Identity{MemberID: memberID, Role: model.Role(role)}, nil
}
