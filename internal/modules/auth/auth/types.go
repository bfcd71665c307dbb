package auth

import (
	"errors"
	"time"
)

type LoginDTO struct {
	Email      string `json:"email"      binding:"required,email"`
	Password   string `json:"password"   binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type RegisterDTO struct {
	Email    string `json:"email"    binding:"required,email"`
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type VerifyEmailDTO struct {
	Token string `json:"token" binding:"required"`
}

type ResendVerificationDTO struct {
	Email string `json:"email" binding:"required,email"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordDTO struct {
	Token    string `json:"token"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateTokenDTO struct {
	Name      string     `json:"name"       binding:"required"`
	ExpiredAt *time.Time `json:"expired_at"`
}

type userSummary struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Avatar        string `json:"avatar,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

type loginResponse struct {
	Token    string      `json:"token"`
	User     userSummary `json:"user"`
	Redirect string      `json:"redirect"`
}

type tokenResponse struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Token   string     `json:"token"`
	Expired *time.Time `json:"expired"`
	Created time.Time  `json:"created"`
}

var (
	errUserNotFound       = errors.New("auth user not found")
	errWrongPassword      = errors.New("auth wrong password")
	errUserBanned         = errors.New("auth user banned")
	errEmailTaken         = errors.New("email already registered")
	errUsernameTaken      = errors.New("username already taken")
	errWeakPassword       = errors.New("password too weak")
	errVerifyTokenInvalid = errors.New("verification token invalid or expired")
	errAlreadyVerified    = errors.New("email already verified")
)
