package model

import "time"

// Account is a registered user. Entities are scoped by Account.ID.
type Account struct {
	ID               string   `gorm:"primaryKey;size:36"`
	Email            string   `gorm:"uniqueIndex;size:255"`
	PasswordHash     string   `gorm:"size:255"`
	Username         string   `gorm:"size:64"`
	Language         Language `gorm:"size:8;default:en"`
	VerificationCode string   `gorm:"size:16"`
	VerifiedAt       *time.Time
	FailedLogins     int
	LockedUntil      *time.Time
	TelegramID       *int64 `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Verified reports whether the email was confirmed.
func (a Account) Verified() bool {
	return a.VerifiedAt != nil
}

// DisplayName prefers the username over the email.
func (a Account) DisplayName() string {
	if a.Username != "" {
		return a.Username
	}
	return a.Email
}

// Session backs a signed token. Revoked or expired sessions are rejected.
type Session struct {
	ID         string `gorm:"primaryKey;size:36"`
	AccountID  string `gorm:"index;size:36"`
	TelegramID int64  `gorm:"index"`
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	CreatedAt  time.Time
}

// Active reports whether the session can still authenticate at now.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
