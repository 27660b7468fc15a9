package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 15 * time.Minute

type sessionService struct {
	userRepo  ports.UserRepository
	clock     ports.Clock
	jwtSecret []byte
}

func NewSessionService(userRepo ports.UserRepository, clock ports.Clock, jwtSecret string) ports.SessionService {
	return &sessionService{
		userRepo:  userRepo,
		clock:     clock,
		jwtSecret: []byte(jwtSecret),
	}
}

// Login checks the credentials and returns a signed access token. A missing
// user and a wrong password are indistinguishable to the caller.
func (s *sessionService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrAuthenticationFailed
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrAuthenticationFailed
	}

	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   now.Add(accessTokenTTL).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, user, nil
}

func (s *sessionService) Verify(tokenString string) (uuid.UUID, domain.Role, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !token.Valid {
		return uuid.Nil, "", domain.ErrAuthenticationFailed
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", domain.ErrAuthenticationFailed
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", domain.ErrAuthenticationFailed
	}
	role, _ := claims["role"].(string)
	return userID, domain.Role(role), nil
}
