package models

import "time"

// User roles.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// UserModel represents a dashboard admin or a customer account.
type UserModel struct {
	Base
	Email         string     `json:"email"           gorm:"uniqueIndex;not null"`
	Username      string     `json:"username"        gorm:"uniqueIndex;not null"`
	Name          string     `json:"name"`
	Password      string     `json:"-"               gorm:"not null"`
	Role          string     `json:"role"            gorm:"index;default:'customer'"`
	EmailVerified bool       `json:"email_verified"`
	Banned        bool       `json:"banned"          gorm:"index"`
	Avatar        string     `json:"avatar"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
	APITokens     []APIToken `json:"api_tokens,omitempty" gorm:"foreignKey:UserID"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) IsAdmin() bool { return u.Role == RoleAdmin }

// APIToken represents a personal API token for programmatic access.
type APIToken struct {
	Base
	UserID    string     `json:"-"          gorm:"index;not null"`
	Token     string     `json:"token"      gorm:"uniqueIndex;not null"`
	Name      string     `json:"name"`
	ExpiredAt *time.Time `json:"expired_at"`
}

func (APIToken) TableName() string { return "api_tokens" }

// Verification token purposes.
const (
	VerifyPurposeEmail         = "email_verify"
	VerifyPurposePasswordReset = "password_reset"
)

// VerificationToken is a single-use token mailed to a user for email
// verification or password reset.
type VerificationToken struct {
	Base
	UserID    string     `json:"-"          gorm:"index;not null"`
	Token     string     `json:"-"          gorm:"uniqueIndex;not null"`
	Purpose   string     `json:"purpose"    gorm:"index;not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index;not null"`
	UsedAt    *time.Time `json:"used_at"`
}

func (VerificationToken) TableName() string { return "verification_tokens" }
