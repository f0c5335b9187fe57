package auth

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBcryptCost = 12

	minPasswordLength = 8
	// bcrypt игнорирует всё после 72 байт
	maxPasswordBytes = 72
)

var (
	ErrInvalidPassword  = errors.New("invalid password")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password must be no more than 72 bytes long")
)

// PasswordService хеширует и проверяет пароли пользователей,
// зарегистрированных по email. У аккаунтов Google пароля нет.
type PasswordService struct {
	cost int
}

func NewPasswordService() *PasswordService {
	return NewPasswordServiceWithCost(DefaultBcryptCost)
}

// NewPasswordServiceWithCost используется в тестах с минимальной сложностью
func NewPasswordServiceWithCost(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordService{cost: cost}
}

func (s *PasswordService) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrInvalidPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (s *PasswordService) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// NeedsRehash сообщает, что хеш создан с другой сложностью и его стоит
// пересчитать после успешного входа.
func (s *PasswordService) NeedsRehash(hashedPassword string) bool {
	cost, err := bcrypt.Cost([]byte(hashedPassword))
	return err == nil && cost != s.cost
}

// IsValidPassword проверяет длину пароля при регистрации
func IsValidPassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
