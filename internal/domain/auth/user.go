package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// User is the credential row. Public account data lives in profiles under
// the same id.
type User struct {
	ID                  string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email               string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash        string     `json:"-" gorm:"column:password_hash"`
	Provider            string     `json:"provider" gorm:"type:varchar(32);not null;default:email"`
	EmailConfirmedAt    *time.Time `json:"email_confirmed_at,omitempty"`
	FailedLoginAttempts int        `json:"-" gorm:"not null;default:0"`
	LockedUntil         *time.Time `json:"-"`
	LastSignInAt        *time.Time `json:"last_sign_in_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Provider == "" {
		u.Provider = ProviderEmail
	}
	return nil
}

func (u *User) EmailConfirmed() bool {
	return u.EmailConfirmedAt != nil
}

// TokenPurpose scopes a one-time token to a single flow.
type TokenPurpose string

const (
	PurposeSignup      TokenPurpose = "signup"
	PurposeMagicLink   TokenPurpose = "magiclink"
	PurposeRecovery    TokenPurpose = "recovery"
	PurposeInvite      TokenPurpose = "invite"
	PurposeEmailChange TokenPurpose = "email_change"
	PurposeOAuthState  TokenPurpose = "oauth_state"
)

// verifiable purposes can be exchanged for a session through VerifyOTP.
func (p TokenPurpose) verifiable() bool {
	switch p {
	case PurposeSignup, PurposeMagicLink, PurposeInvite, PurposeEmailChange, PurposeRecovery:
		return true
	}
	return false
}

// AuthToken is a single-use emailed link or OAuth state. Only a peppered
// hash of the raw token is stored.
type AuthToken struct {
	ID         string       `gorm:"type:varchar(36);primaryKey"`
	UserID     *string      `gorm:"type:varchar(36);index"`
	Purpose    TokenPurpose `gorm:"type:varchar(32);index;not null"`
	TokenHash  string       `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email      string       `gorm:"type:varchar(255);index"`
	Provider   string       `gorm:"type:varchar(32)"`
	SignupRole string       `gorm:"type:varchar(32)"`
	ExpiresAt  time.Time    `gorm:"index;not null"`
	UsedAt     *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}

func (t *AuthToken) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// RefreshToken rows form rotation families; reusing a rotated token revokes
// the whole family.
type RefreshToken struct {
	ID              string    `gorm:"type:varchar(36);primaryKey"`
	UserID          string    `gorm:"type:varchar(36);index;not null"`
	TokenHash       string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	FamilyID        string    `gorm:"type:varchar(36);index;not null"`
	RotatedFrom     *string   `gorm:"type:varchar(36)"`
	ExpiresAt       time.Time `gorm:"index;not null"`
	UsedAt          *time.Time
	RevokedAt       *time.Time
	ReuseDetectedAt *time.Time
	UserAgent       *string
	IP              *string
	CreatedAt       time.Time `gorm:"autoCreateTime;index"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (t *RefreshToken) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
