package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"menu-planner/internal/auth"
	"menu-planner/internal/model"
)

func (b *Bot) startSignUp(msg *tgbotapi.Message) error {
	b.setConversation(msg.From.ID, &conversationState{flow: flowSignUp, stage: stageEmail})
	return b.sendWithReplyMarkup(msg.Chat.ID, "📝 Sign up.\n<b>Step 1:</b> your email address?", cancelKeyboard())
}

func (b *Bot) startSignIn(msg *tgbotapi.Message) error {
	state := &conversationState{flow: flowSignIn, stage: stageEmail}
	if email := b.pendingEmail(msg.From.ID); email != "" {
		state.email = email
		state.stage = stagePassword
		b.setConversation(msg.From.ID, state)
		return b.sendWithReplyMarkup(msg.Chat.ID, fmt.Sprintf("🔑 Password for %s?", escape(email)), cancelKeyboard())
	}
	b.setConversation(msg.From.ID, state)
	return b.sendWithReplyMarkup(msg.Chat.ID, "🔑 Sign in.\n<b>Step 1:</b> your email address?", cancelKeyboard())
}

func (b *Bot) continueAuth(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageEmail:
		state.email = auth.NormalizeEmail(text)
		state.stage = stagePassword
		return b.sendWithReplyMarkup(msg.Chat.ID, "<b>Step 2:</b> your password? I will delete the message right away.", cancelKeyboard())
	case stagePassword:
		b.deleteMessage(msg)
		b.clearConversation(msg.From.ID)
		if state.flow == flowSignUp {
			return b.finishSignUp(ctx, msg, state.email, text)
		}
		return b.finishSignIn(ctx, msg, state.email, text)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Conversation reset. Please start again.")
	}
}

func (b *Bot) finishSignUp(ctx context.Context, msg *tgbotapi.Message, email, password string) error {
	account, err := b.svc.Auth.SignUp(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return b.sendText(msg.Chat.ID, "This email is already registered. Use /signin.")
		}
		return b.reportError(msg.Chat.ID, "sign up", err)
	}
	b.setPendingEmail(msg.From.ID, account.Email)
	return b.sendText(msg.Chat.ID, fmt.Sprintf(
		"📬 We sent a 6-digit code to %s.\nSend <code>/verify 123456</code> with that code.",
		escape(account.Email),
	))
}

func (b *Bot) finishSignIn(ctx context.Context, msg *tgbotapi.Message, email, password string) error {
	session, err := b.svc.Auth.SignIn(ctx, email, password, msg.From.ID)
	if err != nil {
		if text, ok := authMessage(err); ok {
			return b.sendText(msg.Chat.ID, text)
		}
		return b.reportError(msg.Chat.ID, "sign in", err)
	}
	b.setPendingEmail(msg.From.ID, "")
	return b.sendText(msg.Chat.ID, fmt.Sprintf(
		"👋 Welcome, %s! Your daily menu will be sent here every morning.",
		escape(session.Account.DisplayName()),
	))
}

// handleVerify accepts "/verify <code>" after /signup in this chat, or "/verify <email> <code>".
func (b *Bot) handleVerify(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	var email, code string
	switch len(args) {
	case 1:
		email, code = b.pendingEmail(msg.From.ID), args[0]
	case 2:
		email, code = args[0], args[1]
	}
	if email == "" || code == "" {
		return b.sendText(msg.Chat.ID, "Send the code from your email: <code>/verify you@example.com 123456</code>")
	}

	account, err := b.svc.Auth.Verify(ctx, email, code)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCode) {
			return b.sendText(msg.Chat.ID, "❌ That code does not match. Check the email and try again.")
		}
		return b.reportError(msg.Chat.ID, "verify", err)
	}
	b.setPendingEmail(msg.From.ID, account.Email)
	return b.sendText(msg.Chat.ID, "✅ Email confirmed. Now /signin.")
}

func (b *Bot) handleSignOut(ctx context.Context, msg *tgbotapi.Message) error {
	session, err := b.svc.Auth.SessionForTelegram(ctx, msg.From.ID)
	if errors.Is(err, auth.ErrNoSession) {
		return b.sendText(msg.Chat.ID, "You are not signed in.")
	}
	if err != nil {
		return b.reportError(msg.Chat.ID, "sign out", err)
	}
	if err := b.svc.Auth.SignOut(ctx, session.Token); err != nil {
		return b.reportError(msg.Chat.ID, "sign out", err)
	}
	b.log.Info("signed out", zap.String("account_id", session.Account.ID))
	return b.sendText(msg.Chat.ID, "👋 Signed out. Daily reminders stop until you /signin again.")
}

// handleProfile shows the profile, or sets the display name when an argument is given.
func (b *Bot) handleProfile(ctx context.Context, msg *tgbotapi.Message) error {
	account, err := b.requireAccount(ctx, msg.Chat.ID, msg.From.ID)
	if account == nil {
		return err
	}

	if name := strings.TrimSpace(msg.CommandArguments()); name != "" {
		account, err = b.svc.Auth.UpdateProfile(ctx, account.ID, name, account.Language)
		if err != nil {
			return b.reportError(msg.Chat.ID, "update profile", err)
		}
	}

	var sb strings.Builder
	sb.WriteString("👤 <b>Profile</b>\n")
	sb.WriteString(fmt.Sprintf("• Name: %s\n", escape(account.DisplayName())))
	sb.WriteString(fmt.Sprintf("• Email: %s\n", escape(account.Email)))
	sb.WriteString(fmt.Sprintf("• Language: %s\n", account.Language.Label()))
	sb.WriteString("\nRename with <code>/profile New name</code>, switch language with /lang.")
	return b.sendText(msg.Chat.ID, sb.String())
}

func (b *Bot) handleLanguage(ctx context.Context, msg *tgbotapi.Message) error {
	account, err := b.requireAccount(ctx, msg.Chat.ID, msg.From.ID)
	if account == nil {
		return err
	}

	raw := strings.TrimSpace(msg.CommandArguments())
	if raw == "" {
		return b.sendWithReplyMarkup(msg.Chat.ID, fmt.Sprintf("🌐 Current language: %s. Pick another:", account.Language.Label()), languageKeyboard())
	}
	lang, ok := model.ParseLanguage(raw)
	if !ok {
		return b.sendText(msg.Chat.ID, "Supported languages: en, es, ca.")
	}
	account, err = b.svc.Auth.UpdateProfile(ctx, account.ID, account.Username, lang)
	if err != nil {
		return b.reportError(msg.Chat.ID, "update language", err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🌐 Dishes and menus are now shown in %s.", account.Language.Label()))
}

func (b *Bot) deleteMessage(msg *tgbotapi.Message) {
	if _, err := b.out.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID)); err != nil {
		b.log.Warn("delete password message", zap.Error(err))
	}
}

// authMessage turns sign in failures into replies.
func authMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "❌ Wrong email or password. Try /signin again.", true
	case errors.Is(err, auth.ErrNotVerified):
		return "📬 Confirm your email first with <code>/verify &lt;code&gt;</code>.", true
	case errors.Is(err, auth.ErrLocked):
		msg := err.Error()
		return "⏳ " + strings.ToUpper(msg[:1]) + msg[1:] + ".", true
	}
	return "", false
}
