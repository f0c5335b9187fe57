package auth

import (
	"Launchpad-Backend/internal/config"
	"Launchpad-Backend/internal/domain"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenType отличает access токены от refresh токенов
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// JWTConfig конфигурация JWT
type JWTConfig struct {
	SecretKey            []byte
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	Issuer               string
}

// NewJWTConfig собирает JWTConfig из секции auth конфигурации
func NewJWTConfig(cfg *config.Auth) *JWTConfig {
	return &JWTConfig{
		SecretKey:            []byte(cfg.JWTSecret),
		AccessTokenDuration:  cfg.AccessTokenDuration,
		RefreshTokenDuration: cfg.RefreshTokenDuration,
		Issuer:               cfg.Issuer,
	}
}

// Claims JWT claims структура
type Claims struct {
	UserID int64     `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name,omitempty"`
	Image  string    `json:"image,omitempty"`
	Type   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// Identity возвращает сессионное представление пользователя
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{
		ID:    c.UserID,
		Name:  c.Name,
		Email: c.Email,
		Image: c.Image,
	}
}

// JWTService сервис для работы с JWT токенами
type JWTService struct {
	config *JWTConfig
	now    func() time.Time
}

// NewJWTService создает новый JWT сервис
func NewJWTService(config *JWTConfig) *JWTService {
	return &JWTService{
		config: config,
		now:    time.Now,
	}
}

// GenerateAccessToken создает access токен
func (s *JWTService) GenerateAccessToken(user *domain.User) (string, error) {
	return s.generate(user, TokenTypeAccess, s.config.AccessTokenDuration)
}

// GenerateRefreshToken создает refresh токен
func (s *JWTService) GenerateRefreshToken(user *domain.User) (string, error) {
	return s.generate(user, TokenTypeRefresh, s.config.RefreshTokenDuration)
}

func (s *JWTService) generate(user *domain.User, typ TokenType, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Image:  user.Image,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.config.SecretKey)
}

// ValidateToken проверяет и парсит токен любого типа
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.config.SecretKey, nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// ValidateAccessToken принимает только access токены
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateType(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken принимает только refresh токены
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validateType(tokenString, TokenTypeRefresh)
}

func (s *JWTService) validateType(tokenString string, typ TokenType) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractTokenFromBearer извлекает токен из Bearer заголовка
func ExtractTokenFromBearer(authHeader string) string {
	const bearerPrefix = "Bearer "
	if len(authHeader) > len(bearerPrefix) && authHeader[:len(bearerPrefix)] == bearerPrefix {
		return authHeader[len(bearerPrefix):]
	}
	return ""
}
