package service

import (
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"classpulse/internal/config"
	"classpulse/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid email, password or role")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService issues and validates JWTs for teacher and student clients.
// The user table is the fixed development set; a real deployment would back
// this with a user directory.
type AuthService struct {
	users     []model.User
	jwtSecret []byte
}

// NewAuthService creates a new auth service with the dev user table.
func NewAuthService(cfg *config.Config) *AuthService {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DevPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("failed to hash dev password:", err)
	}

	return &AuthService{
		users: []model.User{
			{ID: "t1", Email: "teacher@example.com", Role: model.RoleTeacher, PasswordHash: hash},
			{ID: "s1", Email: "student@example.com", Role: model.RoleStudent, PasswordHash: hash},
		},
		jwtSecret: []byte(cfg.JWTSecret),
	}
}

// Login validates credentials and returns a signed token.
func (s *AuthService) Login(email, password, role string) (*model.LoginResponse, error) {
	var user *model.User
	for i := range s.users {
		if s.users[i].Email == email && s.users[i].Role == role {
			user = &s.users[i]
			break
		}
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	claims := &model.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{Token: tokenString}, nil
}

// ValidateToken validates a JWT and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*model.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
