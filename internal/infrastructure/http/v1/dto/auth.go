package dto

import (
	"time"

	"atelier/internal/domain/auth"
)

// RegisterRequest for account registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName"`
}

// LoginRequest for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse carries issued tokens.
type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// FromTokenPair builds a TokenResponse.
func FromTokenPair(t *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.ExpiresAt,
		TokenType:    t.TokenType,
	}
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	FullName        string `json:"fullName,omitempty"`
	IsPlatformAdmin bool   `json:"isPlatformAdmin"`
}

// FromUser builds a UserResponse.
func FromUser(u *auth.User) UserResponse {
	return UserResponse{
		ID:              u.ID.String(),
		Email:           u.Email,
		FullName:        u.FullName,
		IsPlatformAdmin: u.IsPlatformAdmin,
	}
}

// LoginResponse pairs tokens with the account.
type LoginResponse struct {
	Tokens TokenResponse `json:"tokens"`
	User   UserResponse  `json:"user"`
}
