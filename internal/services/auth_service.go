package services

import (
	"fmt"
	"time"

	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the decoded identity carried by an API bearer token.
type TokenClaims struct {
	UserID    uuid.UUID
	Username  string
	Matricula string
	IsTeacher bool
}

// AuthService mints and verifies the HS256 bearer tokens used by the API
// surface. The signing key is set once at startup.
type AuthService struct {
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// GenerateToken signs a token for the user, expiring after the configured
// TTL (one hour by default).
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":   user.ID.String(),
		"username":  user.Nome,
		"matricula": user.Matricula,
		"isTeacher": user.IsTeacher,
		"iat":       now.Unix(),
		"exp":       now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// DecodeToken verifies the signature and expiry and extracts the claims.
// Expired tokens come back wrapped in jwt.ErrTokenExpired so callers can
// report the reason.
func (s *AuthService) DecodeToken(raw string) (*TokenClaims, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	userIDStr, ok := mapClaims["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in token: %w", err)
	}

	username, _ := mapClaims["username"].(string)
	matricula, _ := mapClaims["matricula"].(string)
	isTeacher, _ := mapClaims["isTeacher"].(bool)

	return &TokenClaims{
		UserID:    userID,
		Username:  username,
		Matricula: matricula,
		IsTeacher: isTeacher,
	}, nil
}
