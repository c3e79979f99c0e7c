// Package auth registers accounts, verifies their email and issues signed session tokens.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"menu-planner/internal/model"
)

const (
	minPasswordLen = 6
	maxUsernameLen = 64
	maxCooldown    = 30
)

var (
	ErrInvalidEmail       = fmt.Errorf("%w: invalid email address", model.ErrValidation)
	ErrWeakPassword       = fmt.Errorf("%w: password must have at least %d characters", model.ErrValidation, minPasswordLen)
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("email not verified")
	ErrLocked             = errors.New("too many failed attempts")
	ErrNoSession          = errors.New("not signed in")
)

// AccountStore persists accounts. Implemented by repository.AccountRepository.
type AccountStore interface {
	Create(ctx context.Context, account *model.Account) error
	FindByID(ctx context.Context, id string) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	Save(ctx context.Context, account *model.Account) error
	BindTelegram(ctx context.Context, accountID string, telegramID int64) error
}

// SessionStore persists sessions. Implemented by repository.SessionRepository.
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	FindActiveByTelegramID(ctx context.Context, telegramID int64, now time.Time) (*model.Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	RevokeByTelegramID(ctx context.Context, telegramID int64, at time.Time) error
}

// Session is an authenticated account with its bearer token.
type Session struct {
	Token     string
	Account   *model.Account
	ExpiresAt time.Time
}

// Service implements sign up, verification, sign in and session lookup.
type Service struct {
	accounts AccountStore
	sessions SessionStore
	mailer   Mailer
	secret   []byte
	ttl      time.Duration
	cost     int
	now      func() time.Time
	log      *zap.Logger
}

func NewService(accounts AccountStore, sessions SessionStore, mailer Mailer, secret string, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{
		accounts: accounts,
		sessions: sessions,
		mailer:   mailer,
		secret:   []byte(secret),
		ttl:      ttl,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
		log:      log.Named("auth"),
	}
}

// CooldownSeconds is the wait after n consecutive failed sign ins: 2^n capped at 30.
func CooldownSeconds(n int) int {
	if n <= 0 {
		return 0
	}
	return min(maxCooldown, 1<<min(n, 5))
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers an account pending verification and mails it a 6-digit code.
// Signing up again with an unverified email replaces the password and resends the code.
func (s *Service) SignUp(ctx context.Context, email, password string) (*model.Account, error) {
	email = NormalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	code, err := verificationCode()
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if account.Verified() {
			return nil, ErrEmailTaken
		}
		account.PasswordHash = string(hash)
		account.VerificationCode = code
		if err := s.accounts.Save(ctx, account); err != nil {
			return nil, err
		}
	case errors.Is(err, model.ErrNotFound):
		now := s.now()
		account = &model.Account{
			ID:               uuid.NewString(),
			Email:            email,
			PasswordHash:     string(hash),
			Language:         model.LanguageEnglish,
			VerificationCode: code,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		return nil, fmt.Errorf("send verification code: %w", err)
	}
	s.log.Info("account registered", zap.String("account_id", account.ID))
	return account, nil
}

// Verify confirms the email of an account with the mailed code.
func (s *Service) Verify(ctx context.Context, email, code string) (*model.Account, error) {
	account, err := s.accounts.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}
	if account.Verified() {
		return account, nil
	}
	code = strings.TrimSpace(code)
	if account.VerificationCode == "" || subtle.ConstantTimeCompare([]byte(code), []byte(account.VerificationCode)) != 1 {
		return nil, ErrInvalidCode
	}
	now := s.now()
	account.VerifiedAt = &now
	account.VerificationCode = ""
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// SignIn checks credentials and opens a session. A non-zero telegramID binds the chat to the
// account and replaces any session the chat had.
func (s *Service) SignIn(ctx context.Context, email, password string, telegramID int64) (*Session, error) {
	account, err := s.accounts.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if account.LockedUntil != nil && now.Before(*account.LockedUntil) {
		wait := account.LockedUntil.Sub(now).Round(time.Second)
		return nil, fmt.Errorf("%w, try again in %s", ErrLocked, wait)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		account.FailedLogins++
		until := now.Add(time.Duration(CooldownSeconds(account.FailedLogins)) * time.Second)
		account.LockedUntil = &until
		if err := s.accounts.Save(ctx, account); err != nil {
			return nil, err
		}
		s.log.Warn("sign in failed", zap.String("account_id", account.ID), zap.Int("attempts", account.FailedLogins))
		return nil, ErrInvalidCredentials
	}
	if !account.Verified() {
		return nil, ErrNotVerified
	}

	if account.FailedLogins != 0 || account.LockedUntil != nil {
		account.FailedLogins = 0
		account.LockedUntil = nil
		if err := s.accounts.Save(ctx, account); err != nil {
			return nil, err
		}
	}

	if telegramID != 0 {
		if err := s.sessions.RevokeByTelegramID(ctx, telegramID, now); err != nil {
			return nil, err
		}
		if err := s.accounts.BindTelegram(ctx, account.ID, telegramID); err != nil {
			return nil, err
		}
		account.TelegramID = &telegramID
	}

	session := model.Session{
		ID:         uuid.NewString(),
		AccountID:  account.ID,
		TelegramID: telegramID,
		ExpiresAt:  now.Add(s.ttl),
		CreatedAt:  now,
	}
	if err := s.sessions.Create(ctx, &session); err != nil {
		return nil, err
	}
	token, err := s.sign(session)
	if err != nil {
		return nil, err
	}
	s.log.Info("signed in", zap.String("account_id", account.ID), zap.Int64("telegram_id", telegramID))
	return &Session{Token: token, Account: account, ExpiresAt: session.ExpiresAt}, nil
}

// SignOut revokes the session behind token.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	return s.sessions.Revoke(ctx, claims.ID, s.now())
}

// CurrentUser returns the account of a valid, unrevoked token.
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.Account, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.FindByID(ctx, claims.ID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if !session.Active(s.now()) {
		return nil, ErrNoSession
	}
	return s.account(ctx, session.AccountID)
}

// SessionForTelegram returns the active session bound to a chat.
func (s *Service) SessionForTelegram(ctx context.Context, telegramID int64) (*Session, error) {
	session, err := s.sessions.FindActiveByTelegramID(ctx, telegramID, s.now())
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	account, err := s.account(ctx, session.AccountID)
	if err != nil {
		return nil, err
	}
	token, err := s.sign(*session)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Account: account, ExpiresAt: session.ExpiresAt}, nil
}

// UpdateProfile changes the display name and the language of user data.
func (s *Service) UpdateProfile(ctx context.Context, accountID, username string, lang model.Language) (*model.Account, error) {
	account, err := s.account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return nil, fmt.Errorf("%w: username is longer than %d characters", model.ErrValidation, maxUsernameLen)
	}
	if lang != "" {
		parsed, ok := model.ParseLanguage(string(lang))
		if !ok {
			return nil, fmt.Errorf("%w: unsupported language %q", model.ErrValidation, lang)
		}
		account.Language = parsed
	}
	account.Username = username
	account.UpdatedAt = s.now()
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) account(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrNoSession
	}
	return account, err
}

func (s *Service) sign(session model.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   session.AccountID,
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *Service) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if claims.ID == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}

func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
