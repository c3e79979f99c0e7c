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

// handleListDishes lists dishes grouped by course. An argument naming a course filters by
// course, anything else searches names in every language.
func (b *Bot) handleListDishes(ctx context.Context, msg *tgbotapi.Message) error {
	account, err := b.requireAccount(ctx, msg.Chat.ID, msg.From.ID)
	if account == nil {
		return err
	}

	query := strings.TrimSpace(msg.CommandArguments())
	var course model.Course
	if c, ok := parseCourseInput(query); ok && query != "" {
		course, query = c, ""
	}

	dishes, err := b.svc.Dishes.Search(ctx, account, query, course)
	if err != nil {
		return b.reportError(msg.Chat.ID, "list dishes", err)
	}
	if len(dishes) == 0 {
		if query != "" || course != "" {
			return b.sendText(msg.Chat.ID, "No dishes match. Send /dishes to see them all.")
		}
		return b.sendText(msg.Chat.ID, "You have no dishes yet. Add one with /newdish.")
	}

	lang := account.Language
	groups := service.GroupByCourse(dishes)

	var sb strings.Builder
	sb.WriteString("🍲 <b>Dishes</b>\n")
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, c := range model.Courses {
		section := groups[c]
		if len(section) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n<b>%s</b>\n", c.Label(lang)))
		for _, d := range section {
			name := d.Name.Get(lang)
			sb.WriteString(fmt.Sprintf("• %s <code>%s</code>\n", escape(name), d.ID))
			buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✏️ "+shortTitle(name, 24), cbEditDish+d.ID),
				tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", cbDeleteDish+d.ID),
			))
		}
	}

	return b.sendWithReplyMarkup(msg.Chat.ID, strings.TrimSpace(sb.String()), tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

func (b *Bot) startDishConversation(ctx context.Context, chatID, userID int64, dishID string) error {
	account, err := b.requireAccount(ctx, chatID, userID)
	if account == nil {
		return err
	}

	state := &conversationState{flow: flowDish, stage: stageName}
	title := "🆕 New dish."
	if dishID != "" {
		dish, err := b.svc.Dishes.Get(ctx, account, dishID)
		if err != nil {
			return b.reportError(chatID, "load dish", err)
		}
		state.editing = dish.ID
		state.name = dish.Name
		state.course = dish.Type
		title = fmt.Sprintf("✏️ Editing %s.", escape(dish.Name.Get(account.Language)))
	}

	b.log.Info("start dish conversation", zap.Int64("user", userID), zap.String("dish", dishID))
	b.setConversation(userID, state)
	return b.promptLocalized(chatID, title, "Name", state, state.name, false)
}

func (b *Bot) continueDish(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageName:
		if done, err := b.readLocalized(msg.Chat.ID, "Name", state, &state.name, text, false); !done {
			return err
		}
		account, err := b.requireAccount(ctx, msg.Chat.ID, msg.From.ID)
		if account == nil {
			return err
		}
		state.stage = stageCourse
		var extra []string
		if state.editing != "" {
			extra = append(extra, btnKeep)
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, "🍽 Which course is it?", courseKeyboard(account.Language, extra...))
	case stageCourse:
		account, err := b.requireAccount(ctx, msg.Chat.ID, msg.From.ID)
		if account == nil {
			return err
		}
		if !(state.editing != "" && isSkipInput(text)) {
			course, ok := parseCourseInput(text)
			if !ok {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Pick a course from the keyboard.", courseKeyboard(account.Language))
			}
			state.course = course
		}
		b.clearConversation(msg.From.ID)
		return b.saveDish(ctx, msg.Chat.ID, account, state)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Conversation reset. Try /newdish again.")
	}
}

func (b *Bot) saveDish(ctx context.Context, chatID int64, account *model.Account, state *conversationState) error {
	input := service.DishInput{Name: state.name, Type: state.course}

	var (
		dish *model.Dish
		err  error
		verb = "saved"
	)
	if state.editing != "" {
		dish, err = b.svc.Dishes.Update(ctx, account, state.editing, input)
		verb = "updated"
	} else {
		dish, err = b.svc.Dishes.Create(ctx, account, input)
	}
	if err != nil {
		return b.reportError(chatID, "save dish", err)
	}

	b.log.Info("dish "+verb, zap.String("dish", dish.ID), zap.String("account_id", account.ID))
	return b.sendText(chatID, fmt.Sprintf("✅ Dish %s: %s (%s)\n<code>%s</code>",
		verb, escape(dish.Name.Get(account.Language)), dish.Type.Label(account.Language), dish.ID))
}

// promptLocalized asks for the value of field in the state's current language.
func (b *Bot) promptLocalized(chatID int64, title, field string, state *conversationState, current model.LocalizedText, optional bool) error {
	lang := state.currentLanguage()
	text := fmt.Sprintf("<b>%s in %s</b> (%d/%d)?", field, lang.Label(), state.lang+1, len(model.Languages))
	if title != "" {
		text = title + "\n" + text
	}

	var extra []string
	if value := strings.TrimSpace(valueOf(current, lang)); state.editing != "" && value != "" {
		text += fmt.Sprintf("\nCurrent: %s", escape(value))
		extra = append(extra, btnKeep)
	} else if optional {
		extra = append(extra, btnSkip)
	}
	if optional && state.editing != "" {
		extra = append(extra, btnClear)
	}
	return b.sendWithReplyMarkup(chatID, text, choiceKeyboard(nil, extra...))
}

// readLocalized stores one locale of a multilingual field and asks for the next one.
// It reports true once every locale has been read.
func (b *Bot) readLocalized(chatID int64, field string, state *conversationState, target *model.LocalizedText, text string, optional bool) (bool, error) {
	lang := state.currentLanguage()
	switch {
	case isSkipInput(text):
		if !optional && strings.TrimSpace(valueOf(*target, lang)) == "" {
			return false, b.promptLocalized(chatID, "This one is required.", field, state, *target, optional)
		}
	case optional && isNoneInput(text):
		target.Set(lang, "")
	case text == "":
		return false, b.promptLocalized(chatID, "Please send some text.", field, state, *target, optional)
	default:
		target.Set(lang, text)
	}

	state.lang++
	if state.lang < len(model.Languages) {
		return false, b.promptLocalized(chatID, "", field, state, *target, optional)
	}
	state.lang = 0
	return true, nil
}

// valueOf returns the exact value of one locale, without fallbacks.
func valueOf(t model.LocalizedText, lang model.Language) string {
	switch lang {
	case model.LanguageSpanish:
		return t.Es
	case model.LanguageCatalan:
		return t.Ca
	default:
		return t.En
	}
}
