package service

import (
	"errors"
	"testing"

	"classpulse/internal/config"
	"classpulse/internal/model"
)

func newAuthService() *AuthService {
	return NewAuthService(&config.Config{JWTSecret: "test-secret", DevPassword: "password"})
}

func TestLoginAndValidateRoundTrip(t *testing.T) {
	svc := newAuthService()

	resp, err := svc.Login("teacher@example.com", "password", model.RoleTeacher)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("empty token")
	}

	claims, err := svc.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "t1" || claims.Role != model.RoleTeacher || claims.Email != "teacher@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLoginRejections(t *testing.T) {
	svc := newAuthService()

	tests := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{"wrong password", "teacher@example.com", "nope", model.RoleTeacher},
		{"wrong role", "teacher@example.com", "password", model.RoleStudent},
		{"unknown user", "ghost@example.com", "password", model.RoleTeacher},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(tt.email, tt.password, tt.role)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService()

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateToken(%q) error = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	other := NewAuthService(&config.Config{JWTSecret: "other-secret", DevPassword: "password"})
	resp, err := other.Login("student@example.com", "password", model.RoleStudent)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	svc := newAuthService()
	if _, err := svc.ValidateToken(resp.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token signed with another secret validated: %v", err)
	}
}
