package users

import (
	"errors"
	"time"
)

type UpdateUserDTO struct {
	Role          *string `json:"role"`
	Banned        *bool   `json:"banned"`
	Name          *string `json:"name"`
	EmailVerified *bool   `json:"email_verified"`
}

type userRow struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Username      string     `json:"username"`
	Name          string     `json:"name"`
	Role          string     `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	Banned        bool       `json:"banned"`
	LastLoginTime *time.Time `json:"last_login_time"`
	Created       time.Time  `json:"created"`
}

var (
	errUserNotFound     = errors.New("user not found")
	errInvalidRole      = errors.New("invalid role")
	errCannotDeleteSelf = errors.New("cannot delete the account you are signed in with")
	errCannotDemoteSelf = errors.New("cannot change your own role or ban yourself")
)
