package service

import (
	"errors"
	"strings"
	"time"

	"github.com/comanda-next/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims 桌台会话 JWT 声明
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// IssuedSession 新建会话结果
type IssuedSession struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionService 匿名桌台会话服务
type SessionService struct {
	cfg config.SessionConfig
	now func() time.Time
}

// NewSessionService 创建会话服务
func NewSessionService(cfg config.SessionConfig) *SessionService {
	return &SessionService{cfg: cfg, now: time.Now}
}

func (s *SessionService) expireDuration() time.Duration {
	hours := s.cfg.ExpireHours
	if hours <= 0 {
		hours = 12
	}
	return time.Duration(hours) * time.Hour
}

// Issue 签发新会话
func (s *SessionService) Issue() (*IssuedSession, error) {
	now := s.now()
	expiresAt := now.Add(s.expireDuration())
	sessionID := uuid.NewString()

	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, err
	}
	return &IssuedSession{SessionID: sessionID, Token: tokenString, ExpiresAt: expiresAt}, nil
}

// Parse 校验令牌并返回会话 ID
func (s *SessionService) Parse(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", ErrSessionInvalid
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	token, err := parser.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrSessionExpired
		}
		return "", ErrSessionInvalid
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || strings.TrimSpace(claims.SessionID) == "" {
		return "", ErrSessionInvalid
	}
	return claims.SessionID, nil
}
