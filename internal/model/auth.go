package model

import "github.com/golang-jwt/jwt/v5"

// Roles known to the auth layer.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Claims are the JWT claims carried by every authenticated request.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// User is an entry in the credential table.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PasswordHash []byte `json:"-"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token string `json:"token"`
}
