package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"menu-planner/internal/model"
	"menu-planner/internal/service"
)

func (b *Bot) handleListMenus(ctx context.Context, msg *tgbotapi.Message) error {
	account, err := b.requireAccount(ctx, msg.Chat.ID, msg.From.ID)
	if account == nil {
		return err
	}

	query := strings.TrimSpace(msg.CommandArguments())
	menus, err := b.svc.Menus.Search(ctx, account, query)
	if err != nil {
		return b.reportError(msg.Chat.ID, "list menus", err)
	}
	if len(menus) == 0 {
		if query != "" {
			return b.sendText(msg.Chat.ID, "No menus match. Send /menus to see them all.")
		}
		return b.sendText(msg.Chat.ID, "You have no menus yet. Add one with /newmenu.")
	}

	lang := account.Language
	var sb strings.Builder
	sb.WriteString("📋 <b>Menus</b>\n\n")
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, m := range menus {
		name := m.Name.Get(lang)
		sb.WriteString(fmt.Sprintf("• <b>%s</b> <code>%s</code>\n", escape(name), m.ID))
		if !m.Description.IsZero() {
			sb.WriteString(fmt.Sprintf("   <i>%s</i>\n", escape(m.Description.Get(lang))))
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ "+shortTitle(name, 24), cbEditMenu+m.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", cbDeleteMenu+m.ID),
		))
	}

	return b.sendWithReplyMarkup(msg.Chat.ID, strings.TrimSpace(sb.String()), tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

func (b *Bot) startMenuConversation(ctx context.Context, chatID, userID int64, menuID string) error {
	account, err := b.requireAccount(ctx, chatID, userID)
	if account == nil {
		return err
	}

	state := &conversationState{flow: flowMenu, stage: stageName}
	title := "🆕 New menu."
	if menuID != "" {
		menu, err := b.svc.Menus.Get(ctx, account, menuID)
		if err != nil {
			return b.reportError(chatID, "load menu", err)
		}
		state.editing = menu.ID
		state.name = menu.Name
		state.description = menu.Description
		title = fmt.Sprintf("✏️ Editing %s.", escape(menu.Name.Get(account.Language)))
	}

	b.log.Info("start menu conversation", zap.Int64("user", userID), zap.String("menu", menuID))
	b.setConversation(userID, state)
	return b.promptLocalized(chatID, title, "Name", state, state.name, false)
}

func (b *Bot) continueMenu(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageName:
		if done, err := b.readLocalized(msg.Chat.ID, "Name", state, &state.name, text, false); !done {
			return err
		}
		state.stage = stageDescription
		return b.promptLocalized(msg.Chat.ID, "📝 A short description is optional.", "Description", state, state.description, true)
	case stageDescription:
		if done, err := b.readLocalized(msg.Chat.ID, "Description", state, &state.description, text, true); !done {
			return err
		}
		b.clearConversation(msg.From.ID)
		account, err := b.requireAccount(ctx, msg.Chat.ID, msg.From.ID)
		if account == nil {
			return err
		}
		return b.saveMenu(ctx, msg.Chat.ID, account, state)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Conversation reset. Try /newmenu again.")
	}
}

func (b *Bot) saveMenu(ctx context.Context, chatID int64, account *model.Account, state *conversationState) error {
	input := service.MenuInput{Name: state.name, Description: state.description}

	var (
		menu *model.Menu
		err  error
		verb = "saved"
	)
	if state.editing != "" {
		menu, err = b.svc.Menus.Update(ctx, account, state.editing, input)
		verb = "updated"
	} else {
		menu, err = b.svc.Menus.Create(ctx, account, input)
	}
	if err != nil {
		return b.reportError(chatID, "save menu", err)
	}

	b.log.Info("menu "+verb, zap.String("menu", menu.ID), zap.String("account_id", account.ID))
	return b.sendText(chatID, fmt.Sprintf("✅ Menu %s: %s\n<code>%s</code>", verb, escape(menu.Name.Get(account.Language)), menu.ID))
}
