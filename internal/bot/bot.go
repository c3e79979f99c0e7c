package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"menu-planner/internal/auth"
	"menu-planner/internal/model"
	"menu-planner/internal/service"
)

const (
	genericError   = "⚠️ Something went wrong. Please try again later."
	signInRequired = "🔒 Please /signin first. New here? Use /signup."
)

// sender is the part of the Telegram API the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// AccountLister finds the accounts that receive the daily reminder.
type AccountLister interface {
	ListWithTelegram(ctx context.Context) ([]model.Account, error)
}

// Services groups the domain services the bot talks to.
type Services struct {
	Auth      *auth.Service
	Dishes    *service.DishService
	Menus     *service.MenuService
	Plans     *service.DailyMenuService
	Reminders *service.ReminderService
	Accounts  AccountLister
}

type confirmationRequest struct {
	kind  string
	id    string
	label string
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           *tgbotapi.BotAPI
	out           sender
	svc           Services
	loc           *time.Location
	log           *zap.Logger
	now           func() time.Time
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	pendingEmails map[int64]string
	mu            sync.Mutex
}

func New(token string, svc Services, loc *time.Location, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Info("bot authorized", zap.String("account", api.Self.UserName))

	b := newBot(api, svc, loc, log)
	b.api = api
	return b, nil
}

func newBot(out sender, svc Services, loc *time.Location, log *zap.Logger) *Bot {
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		out:           out,
		svc:           svc,
		loc:           loc,
		log:           log.Named("bot"),
		now:           time.Now,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
		pendingEmails: make(map[int64]string),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.log.Error("handle callback", zap.String("data", update.CallbackQuery.Data), zap.Error(err))
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.log.Error("handle message", zap.Int64("chat", update.Message.Chat.ID), zap.Error(err))
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.reset(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	}

	if msg.IsCommand() {
		b.log.Info("command", zap.Int64("user", msg.From.ID), zap.String("command", msg.Command()))
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Send /help for the list of commands.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	b.reset(msg.From.ID)

	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "signup":
		return b.startSignUp(msg)
	case "verify":
		return b.handleVerify(ctx, msg)
	case "signin":
		return b.startSignIn(msg)
	case "signout":
		return b.handleSignOut(ctx, msg)
	case "profile":
		return b.handleProfile(ctx, msg)
	case "lang":
		return b.handleLanguage(ctx, msg)
	case "dishes":
		return b.handleListDishes(ctx, msg)
	case "newdish":
		return b.startDishConversation(ctx, msg.Chat.ID, msg.From.ID, "")
	case "editdish":
		return b.startDishConversation(ctx, msg.Chat.ID, msg.From.ID, strings.TrimSpace(msg.CommandArguments()))
	case "menus":
		return b.handleListMenus(ctx, msg)
	case "newmenu":
		return b.startMenuConversation(ctx, msg.Chat.ID, msg.From.ID, "")
	case "editmenu":
		return b.startMenuConversation(ctx, msg.Chat.ID, msg.From.ID, strings.TrimSpace(msg.CommandArguments()))
	case "plan":
		return b.handlePlan(ctx, msg)
	case "day":
		return b.handleDay(ctx, msg)
	case "calendar":
		return b.handleCalendar(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "cancel":
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if session, err := b.svc.Auth.SessionForTelegram(ctx, msg.From.ID); err == nil {
		name = session.Account.DisplayName()
	} else if !errors.Is(err, auth.ErrNoSession) {
		return err
	}
	if name == "" {
		name = "friend"
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I plan your daily menus: dishes, menus and what to cook each day.</b>\n\n"+
			"New here? /signup, then /verify the code from your email and /signin.\n"+
			"Send /help for every command.",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /signup, /verify &lt;code&gt;, /signin, /signout\n" +
		"• /profile [name]: show or rename your profile\n" +
		"• /lang en|es|ca: language of dish and menu names\n" +
		"• /dishes [text or course]: list dishes\n" +
		"• /newdish, /editdish &lt;id&gt;\n" +
		"• /menus [text]: list menus\n" +
		"• /newmenu, /editmenu &lt;id&gt;\n" +
		"• /plan [date]: choose the menu and dishes of a day\n" +
		"• /day [date]: show the plan of a day\n" +
		"• /calendar [yyyy-mm]: planned days of a month\n" +
		"• /delete dish|menu|day &lt;id&gt;\n" +
		"• /cancel: stop the current input\n\n" +
		"Dates look like <code>2024-06-01</code>; <code>today</code> and <code>tomorrow</code> work too."
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelToday):
		return true, b.handleDay(ctx, msg)
	case strings.ToLower(menuLabelPlan):
		return true, b.handlePlan(ctx, msg)
	case strings.ToLower(menuLabelDishes):
		return true, b.handleListDishes(ctx, msg)
	case strings.ToLower(menuLabelMenus):
		return true, b.handleListMenus(ctx, msg)
	case strings.ToLower(menuLabelCalendar):
		return true, b.handleCalendar(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	switch state.flow {
	case flowSignUp, flowSignIn:
		return b.continueAuth(ctx, msg, state)
	case flowDish:
		return b.continueDish(ctx, msg, state)
	case flowMenu:
		return b.continueMenu(ctx, msg, state)
	case flowPlan:
		return b.continuePlan(ctx, msg, state)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Conversation reset. Please start again.")
	}
}

// SendDailyReports sends today's plan to every account with a bound chat.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	accounts, err := b.svc.Accounts.ListWithTelegram(ctx)
	if err != nil {
		return err
	}
	now := b.now().In(b.loc)
	for _, account := range accounts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if account.TelegramID == nil {
			continue
		}
		text, err := b.svc.Reminders.DailySummary(ctx, account, now)
		if err != nil {
			b.log.Error("build summary", zap.String("account_id", account.ID), zap.Error(err))
			continue
		}
		if err := b.sendText(*account.TelegramID, text); err != nil {
			b.log.Error("send summary", zap.Int64("chat", *account.TelegramID), zap.Error(err))
		}
	}
	b.log.Info("daily reports sent", zap.Int("accounts", len(accounts)))
	return nil
}

// requireAccount returns the account signed in from userID's chat. Without a session it
// asks the user to sign in and returns a nil account.
func (b *Bot) requireAccount(ctx context.Context, chatID, userID int64) (*model.Account, error) {
	session, err := b.svc.Auth.SessionForTelegram(ctx, userID)
	switch {
	case err == nil:
		return session.Account, nil
	case errors.Is(err, auth.ErrNoSession):
		return nil, b.sendText(chatID, signInRequired)
	default:
		return nil, err
	}
}

// reportError answers a failed operation. Input and lookup errors are shown to the user;
// anything else is logged and answered with a generic notice.
func (b *Bot) reportError(chatID int64, op string, err error) error {
	switch {
	case errors.Is(err, model.ErrValidation):
		text := strings.TrimPrefix(err.Error(), model.ErrValidation.Error()+": ")
		return b.sendText(chatID, "⚠️ "+escape(text))
	case errors.Is(err, model.ErrNotFound):
		return b.sendText(chatID, "🔍 Not found. It may have been deleted.")
	}
	b.log.Error(op, zap.Int64("chat", chatID), zap.Error(err))
	return b.sendText(chatID, genericError)
}

// today is the current calendar day in the bot's time zone.
func (b *Bot) today() time.Time {
	return model.CalendarDay(b.now().In(b.loc))
}

// parseDate accepts yyyy-mm-dd, today, tomorrow and yesterday. Empty means today.
func (b *Bot) parseDate(raw string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "today", strings.ToLower(btnToday):
		return b.today(), nil
	case "tomorrow", strings.ToLower(btnTomorrow):
		return b.today().AddDate(0, 0, 1), nil
	case "yesterday":
		return b.today().AddDate(0, 0, -1), nil
	}
	return model.ParseDay(raw)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.out.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.out.Send(msg)
	return err
}

func (b *Bot) ackCallback(id string) {
	if _, err := b.out.Request(tgbotapi.NewCallback(id, "")); err != nil {
		b.log.Warn("callback ack", zap.Error(err))
	}
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

// reset drops any conversation or pending confirmation of userID.
func (b *Bot) reset(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
	delete(b.confirmations, userID)
}

func (b *Bot) setPendingEmail(userID int64, email string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pendingEmails[userID] = email
}

func (b *Bot) pendingEmail(userID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pendingEmails[userID]
}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
