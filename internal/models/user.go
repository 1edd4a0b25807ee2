package models

import "time"

// User represents a row in the PostgreSQL users table.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Age       *int      `json:"age,omitempty"`
	Gender    *string   `json:"gender,omitempty"`
	Password  string    `json:"-"` // never serialize
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Age      *int    `json:"age"`
	Gender   *string `json:"gender"`
	Password string  `json:"password"`
}

// UserUpdate is the JSON body for PUT /user/update. Nil fields are left untouched.
type UserUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Age      *int    `json:"age"`
	Gender   *string `json:"gender"`
}

// Token is the response body for login and refresh-token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

// PasswordChange is the JSON body for POST /auth/change-password.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PasswordReset is the JSON body for POST /auth/reset-password.
type PasswordReset struct {
	Email string `json:"email"`
}

// PasswordResetConfirm is the JSON body for POST /auth/reset-password/confirm.
type PasswordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}
