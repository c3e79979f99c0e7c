package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"menu-planner/internal/model"
)

const (
	kindDish = "dish"
	kindMenu = "menu"
	kindDay  = "day"
)

// handleDelete asks to confirm "/delete dish|menu|day <id>". A day also accepts a date.
func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		return b.sendText(msg.Chat.ID, "Usage: <code>/delete dish|menu|day &lt;id&gt;</code>")
	}
	return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From.ID, strings.ToLower(args[0]), args[1])
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID, userID int64, kind, id string) error {
	account, err := b.requireAccount(ctx, chatID, userID)
	if account == nil {
		return err
	}
	lang := account.Language

	var label, note string
	switch kind {
	case kindDish:
		dish, err := b.svc.Dishes.Get(ctx, account, id)
		if err != nil {
			return b.reportError(chatID, "load dish", err)
		}
		label = fmt.Sprintf("dish «%s»", escape(dish.Name.Get(lang)))
		note = "\nDaily menus that use it will show it as deleted."
	case kindMenu:
		menu, err := b.svc.Menus.Get(ctx, account, id)
		if err != nil {
			return b.reportError(chatID, "load menu", err)
		}
		label = fmt.Sprintf("menu «%s»", escape(menu.Name.Get(lang)))
		note = "\nDaily menus that use it will show it as deleted."
	case kindDay:
		plan, err := b.findPlan(ctx, account, id)
		if err != nil {
			return b.reportError(chatID, "load daily menu", err)
		}
		id = plan.ID
		label = fmt.Sprintf("the plan for %s", model.DayKey(plan.Date))
	default:
		return b.sendText(chatID, "Usage: <code>/delete dish|menu|day &lt;id&gt;</code>")
	}

	b.setConfirmation(userID, confirmationRequest{kind: kind, id: id, label: label})
	return b.sendWithReplyMarkup(chatID, fmt.Sprintf("Delete %s?%s", label, note), confirmKeyboard())
}

// findPlan resolves a daily menu by id or by yyyy-mm-dd date.
func (b *Bot) findPlan(ctx context.Context, account *model.Account, ref string) (*model.DailyMenu, error) {
	if date, err := model.ParseDay(ref); err == nil {
		plan, ok, err := b.svc.Plans.Find(ctx, account, date)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("plan for %s: %w", ref, model.ErrNotFound)
		}
		return plan, nil
	}
	return b.svc.Plans.Get(ctx, account, ref)
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.deleteConfirmed(ctx, msg.Chat.ID, msg.From.ID, req)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "↩️ Nothing was deleted.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirm or cancel the deletion.", confirmKeyboard())
	}
}

func (b *Bot) deleteConfirmed(ctx context.Context, chatID, userID int64, req confirmationRequest) error {
	account, err := b.requireAccount(ctx, chatID, userID)
	if account == nil {
		return err
	}

	switch req.kind {
	case kindDish:
		err = b.svc.Dishes.Delete(ctx, account, req.id)
	case kindMenu:
		err = b.svc.Menus.Delete(ctx, account, req.id)
	case kindDay:
		err = b.svc.Plans.Delete(ctx, account, req.id)
	}
	if err != nil {
		return b.reportError(chatID, "delete "+req.kind, err)
	}

	b.log.Info("deleted", zap.String("kind", req.kind), zap.String("id", req.id), zap.String("account_id", account.ID))
	return b.sendText(chatID, fmt.Sprintf("🗑 Deleted %s.", req.label))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}

	b.ackCallback(cb.ID)
	b.log.Info("callback", zap.Int64("user", cb.From.ID), zap.String("data", cb.Data))
	b.reset(cb.From.ID)

	chatID, userID, data := cb.Message.Chat.ID, cb.From.ID, cb.Data
	switch {
	case strings.HasPrefix(data, cbEditDish):
		return b.startDishConversation(ctx, chatID, userID, strings.TrimPrefix(data, cbEditDish))
	case strings.HasPrefix(data, cbEditMenu):
		return b.startMenuConversation(ctx, chatID, userID, strings.TrimPrefix(data, cbEditMenu))
	case strings.HasPrefix(data, cbDeleteDish):
		return b.askDeleteConfirmation(ctx, chatID, userID, kindDish, strings.TrimPrefix(data, cbDeleteDish))
	case strings.HasPrefix(data, cbDeleteMenu):
		return b.askDeleteConfirmation(ctx, chatID, userID, kindMenu, strings.TrimPrefix(data, cbDeleteMenu))
	case strings.HasPrefix(data, cbDeleteDay):
		return b.askDeleteConfirmation(ctx, chatID, userID, kindDay, strings.TrimPrefix(data, cbDeleteDay))
	}

	account, err := b.requireAccount(ctx, chatID, userID)
	if account == nil {
		return err
	}
	switch {
	case strings.HasPrefix(data, cbShowDay):
		date, err := model.ParseDay(strings.TrimPrefix(data, cbShowDay))
		if err != nil {
			return nil
		}
		return b.showDay(ctx, chatID, account, date)
	case strings.HasPrefix(data, cbPlanDay):
		date, err := model.ParseDay(strings.TrimPrefix(data, cbPlanDay))
		if err != nil {
			return nil
		}
		return b.beginPlan(ctx, chatID, userID, account, date)
	case strings.HasPrefix(data, cbCalendar):
		month, err := time.Parse(monthLayout, strings.TrimPrefix(data, cbCalendar))
		if err != nil {
			return nil
		}
		return b.showCalendar(ctx, chatID, account, month.Year(), month.Month())
	}
	return nil
}
