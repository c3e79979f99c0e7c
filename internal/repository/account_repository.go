package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"menu-planner/internal/model"
)

// AccountRepository handles CRUD for accounts.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("find account: %w", translate(err))
	}
	return &account, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, fmt.Errorf("find account: %w", translate(err))
	}
	return &account, nil
}

// Save writes every column of an existing account.
func (r *AccountRepository) Save(ctx context.Context, account *model.Account) error {
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// BindTelegram attaches a chat to accountID and detaches it from every other account.
func (r *AccountRepository) BindTelegram(ctx context.Context, accountID string, telegramID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Account{}).
			Where("telegram_id = ? AND id <> ?", telegramID, accountID).
			Update("telegram_id", nil).Error; err != nil {
			return fmt.Errorf("unbind telegram: %w", err)
		}
		if err := tx.Model(&model.Account{}).
			Where("id = ?", accountID).
			Update("telegram_id", telegramID).Error; err != nil {
			return fmt.Errorf("bind telegram: %w", err)
		}
		return nil
	})
}

// ListWithTelegram returns verified accounts that have a chat bound.
func (r *AccountRepository) ListWithTelegram(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	if err := r.db.WithContext(ctx).
		Where("telegram_id IS NOT NULL AND verified_at IS NOT NULL").
		Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// SessionRepository stores issued sessions.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("find session: %w", translate(err))
	}
	return &session, nil
}

// FindActiveByTelegramID returns the newest unrevoked, unexpired session of a chat.
func (r *SessionRepository) FindActiveByTelegramID(ctx context.Context, telegramID int64, now time.Time) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).
		Where("telegram_id = ? AND revoked_at IS NULL AND expires_at > ?", telegramID, now).
		Order("created_at DESC").
		First(&session).Error; err != nil {
		return nil, fmt.Errorf("find session: %w", translate(err))
	}
	return &session, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error; err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeByTelegramID revokes every active session bound to a chat.
func (r *SessionRepository) RevokeByTelegramID(ctx context.Context, telegramID int64, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("telegram_id = ? AND revoked_at IS NULL", telegramID).
		Update("revoked_at", at).Error; err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}
