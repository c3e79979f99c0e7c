package auth

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"menu-planner/internal/model"
	"menu-planner/internal/repository"
)

type recordingMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *recordingMailer) SendVerificationCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return nil
}

func (m *recordingMailer) code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

type harness struct {
	svc      *Service
	mailer   *recordingMailer
	accounts *repository.AccountRepository
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "auth.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	h := &harness{
		mailer:   &recordingMailer{codes: map[string]string{}},
		accounts: repository.NewAccountRepository(db),
		now:      time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	h.svc = NewService(h.accounts, repository.NewSessionRepository(db), h.mailer, "test-secret", time.Hour, zap.NewNop())
	h.svc.cost = bcrypt.MinCost
	h.svc.now = func() time.Time { return h.now }
	return h
}

func (h *harness) verified(t *testing.T, email, password string) *model.Account {
	t.Helper()
	ctx := context.Background()
	_, err := h.svc.SignUp(ctx, email, password)
	require.NoError(t, err)
	account, err := h.svc.Verify(ctx, email, h.mailer.code(NormalizeEmail(email)))
	require.NoError(t, err)
	return account
}

func TestCooldownSeconds(t *testing.T) {
	tests := []struct {
		failures int
		want     int
	}{
		{0, 0},
		{1, 2},
		{2, 4},
		{3, 8},
		{4, 16},
		{5, 30},
		{40, 30},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CooldownSeconds(tt.failures), "failures=%d", tt.failures)
	}
}

func TestSignUpValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.SignUp(ctx, "not-an-email", "secret1")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = h.svc.SignUp(ctx, "Ana <ana@example.com>", "secret1")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = h.svc.SignUp(ctx, "ana@example.com", "12345")
	assert.ErrorIs(t, err, ErrWeakPassword)

	h.verified(t, "ana@example.com", "secret1")
	_, err = h.svc.SignUp(ctx, "ANA@example.com", "another")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestVerify(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	account, err := h.svc.SignUp(ctx, " Joan@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "joan@example.com", account.Email)
	assert.False(t, account.Verified())
	code := h.mailer.code("joan@example.com")
	assert.Len(t, code, 6)

	_, err = h.svc.SignIn(ctx, "joan@example.com", "secret1", 0)
	assert.ErrorIs(t, err, ErrNotVerified)

	_, err = h.svc.Verify(ctx, "joan@example.com", "abcdef")
	assert.ErrorIs(t, err, ErrInvalidCode)
	_, err = h.svc.Verify(ctx, "nobody@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidCode)

	account, err = h.svc.Verify(ctx, "JOAN@example.com", code)
	require.NoError(t, err)
	assert.True(t, account.Verified())
	assert.Empty(t, account.VerificationCode)
}

func TestSignUpAgainBeforeVerifying(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.svc.SignUp(ctx, "maria@example.com", "first-pass")
	require.NoError(t, err)
	second, err := h.svc.SignUp(ctx, "maria@example.com", "second-pass")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = h.svc.Verify(ctx, "maria@example.com", h.mailer.code("maria@example.com"))
	require.NoError(t, err)
	_, err = h.svc.SignIn(ctx, "maria@example.com", "second-pass", 0)
	assert.NoError(t, err)
}

func TestSignInSessionLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	account := h.verified(t, "pere@example.com", "secret1")

	session, err := h.svc.SignIn(ctx, "pere@example.com", "secret1", 42)
	require.NoError(t, err)
	assert.Equal(t, account.ID, session.Account.ID)
	assert.Equal(t, h.now.Add(time.Hour), session.ExpiresAt)

	current, err := h.svc.CurrentUser(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, current.ID)

	bound, err := h.svc.SessionForTelegram(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, account.ID, bound.Account.ID)
	require.NotNil(t, bound.Account.TelegramID)
	assert.Equal(t, int64(42), *bound.Account.TelegramID)

	_, err = h.svc.SessionForTelegram(ctx, 7)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, h.svc.SignOut(ctx, bound.Token))
	_, err = h.svc.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = h.svc.SessionForTelegram(ctx, 42)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSignInReplacesChatSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.verified(t, "a@example.com", "secret1")
	other := h.verified(t, "b@example.com", "secret2")

	first, err := h.svc.SignIn(ctx, "a@example.com", "secret1", 99)
	require.NoError(t, err)
	_, err = h.svc.SignIn(ctx, "b@example.com", "secret2", 99)
	require.NoError(t, err)

	_, err = h.svc.CurrentUser(ctx, first.Token)
	assert.ErrorIs(t, err, ErrNoSession)

	bound, err := h.svc.SessionForTelegram(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, other.ID, bound.Account.ID)

	previous, err := h.accounts.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Nil(t, previous.TelegramID)
}

func TestSignInCooldown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.verified(t, "eva@example.com", "secret1")

	_, err := h.svc.SignIn(ctx, "eva@example.com", "wrong", 0)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = h.svc.SignIn(ctx, "eva@example.com", "secret1", 0)
	assert.ErrorIs(t, err, ErrLocked, "locked for 2s after one failure")

	h.now = h.now.Add(3 * time.Second)
	_, err = h.svc.SignIn(ctx, "eva@example.com", "wrong", 0)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	h.now = h.now.Add(3 * time.Second)
	_, err = h.svc.SignIn(ctx, "eva@example.com", "secret1", 0)
	assert.ErrorIs(t, err, ErrLocked, "locked for 4s after two failures")

	h.now = h.now.Add(2 * time.Second)
	_, err = h.svc.SignIn(ctx, "eva@example.com", "secret1", 0)
	require.NoError(t, err)

	account, err := h.accounts.FindByEmail(ctx, "eva@example.com")
	require.NoError(t, err)
	assert.Zero(t, account.FailedLogins)
	assert.Nil(t, account.LockedUntil)

	_, err = h.svc.SignIn(ctx, "nobody@example.com", "secret1", 0)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCurrentUserRejectsBadTokens(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.verified(t, "lluis@example.com", "secret1")
	session, err := h.svc.SignIn(ctx, "lluis@example.com", "secret1", 0)
	require.NoError(t, err)

	_, err = h.svc.CurrentUser(ctx, "garbage")
	assert.ErrorIs(t, err, ErrNoSession)

	forged := *h.svc
	forged.secret = []byte("other-secret")
	_, err = forged.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, ErrNoSession)

	h.now = h.now.Add(2 * time.Hour)
	_, err = h.svc.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUpdateProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	account := h.verified(t, "nuria@example.com", "secret1")

	updated, err := h.svc.UpdateProfile(ctx, account.ID, "  Núria ", "ca-ES")
	require.NoError(t, err)
	assert.Equal(t, "Núria", updated.Username)
	assert.Equal(t, model.LanguageCatalan, updated.Language)
	assert.Equal(t, "Núria", updated.DisplayName())

	updated, err = h.svc.UpdateProfile(ctx, account.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, model.LanguageCatalan, updated.Language)
	assert.Equal(t, "nuria@example.com", updated.DisplayName())

	_, err = h.svc.UpdateProfile(ctx, account.ID, "x", "klingon")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = h.svc.UpdateProfile(ctx, "missing", "x", "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLogMailer(t *testing.T) {
	mailer := NewMailer(configWithoutSMTP(), zap.NewNop())
	assert.IsType(t, &LogMailer{}, mailer)
	assert.NoError(t, mailer.SendVerificationCode(context.Background(), "a@example.com", "123456"))
}
