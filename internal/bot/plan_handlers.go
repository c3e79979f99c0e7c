package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"menu-planner/internal/model"
	"menu-planner/internal/service"
)

const monthLayout = "2006-01"

func (b *Bot) handlePlan(ctx context.Context, msg *tgbotapi.Message) error {
	account, err := b.requireAccount(ctx, msg.Chat.ID, msg.From.ID)
	if account == nil {
		return err
	}

	raw := strings.TrimSpace(msg.CommandArguments())
	if raw == "" {
		b.setConversation(msg.From.ID, &conversationState{flow: flowPlan, stage: stageDate})
		return b.sendWithReplyMarkup(msg.Chat.ID, "🗓 Which day? Send a date like <code>2024-06-01</code>.", choiceKeyboard([]string{btnToday, btnTomorrow}))
	}
	date, err := b.parseDate(raw)
	if err != nil {
		return b.reportError(msg.Chat.ID, "parse date", err)
	}
	return b.beginPlan(ctx, msg.Chat.ID, msg.From.ID, account, date)
}

// beginPlan loads the plan stored for date, if any, and asks for the menu.
func (b *Bot) beginPlan(ctx context.Context, chatID, userID int64, account *model.Account, date time.Time) error {
	sel, err := b.svc.Plans.Load(ctx, account, date)
	if err != nil {
		return b.reportError(chatID, "load daily menu", err)
	}
	menus, err := b.svc.Menus.List(ctx, account)
	if err != nil {
		return b.reportError(chatID, "list menus", err)
	}
	if len(menus) == 0 {
		b.clearConversation(userID)
		return b.sendText(chatID, "Create a menu first with /newmenu.")
	}

	lang := account.Language
	state := &conversationState{flow: flowPlan, stage: stageMenu, date: date, selection: sel}
	state.options = newOptions(menus,
		func(m model.Menu) string { return m.Name.Get(lang) },
		func(m model.Menu) string { return m.ID },
	)
	b.setConversation(userID, state)

	var sb strings.Builder
	if sel.ExistingID != "" {
		sb.WriteString(fmt.Sprintf("✏️ Editing the plan for <b>%s</b>.\n", model.DayKey(date)))
	} else {
		sb.WriteString(fmt.Sprintf("🆕 New plan for <b>%s</b>.\n", model.DayKey(date)))
	}
	sb.WriteString("<b>Step 1:</b> pick a menu.")

	var extra []string
	if sel.MenuID != "" {
		current := "(deleted menu)"
		for _, m := range menus {
			if m.ID == sel.MenuID {
				current = m.Name.Get(lang)
			}
		}
		sb.WriteString(fmt.Sprintf("\nCurrent: %s", escape(current)))
		extra = append(extra, btnKeep)
	}
	return b.sendWithReplyMarkup(chatID, sb.String(), choiceKeyboard(optionLabels(state.options), extra...))
}

func (b *Bot) continuePlan(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	account, err := b.requireAccount(ctx, msg.Chat.ID, msg.From.ID)
	if account == nil {
		b.clearConversation(msg.From.ID)
		return err
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageDate:
		date, err := b.parseDate(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Send a date like <code>2024-06-01</code>.", choiceKeyboard([]string{btnToday, btnTomorrow}))
		}
		return b.beginPlan(ctx, msg.Chat.ID, msg.From.ID, account, date)
	case stageMenu:
		if !(isSkipInput(text) && state.selection.MenuID != "") {
			id, ok := pick(state.options, text)
			if !ok {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Pick a menu from the keyboard.", choiceKeyboard(optionLabels(state.options)))
			}
			state.selection.MenuID = id
		}
		state.stage = stageDish
		state.courseIdx = 0
		return b.promptCourse(ctx, msg.Chat.ID, account, state)
	case stageDish:
		c := state.planCourse()
		switch {
		case isSkipInput(text):
		case isNoneInput(text):
			state.selection.SetCourse(c, "")
		default:
			id, ok := pick(state.options, text)
			if !ok {
				return b.promptCourse(ctx, msg.Chat.ID, account, state)
			}
			state.selection.SetCourse(c, id)
		}
		state.courseIdx++
		if state.courseIdx < len(model.Courses) {
			return b.promptCourse(ctx, msg.Chat.ID, account, state)
		}
		b.clearConversation(msg.From.ID)
		return b.savePlan(ctx, msg.Chat.ID, account, state)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Conversation reset. Try /plan again.")
	}
}

// promptCourse offers the dishes of the current course.
func (b *Bot) promptCourse(ctx context.Context, chatID int64, account *model.Account, state *conversationState) error {
	c := state.planCourse()
	lang := account.Language
	dishes, err := b.svc.Dishes.Search(ctx, account, "", c)
	if err != nil {
		return b.reportError(chatID, "list dishes", err)
	}
	state.options = newOptions(dishes,
		func(d model.Dish) string { return d.Name.Get(lang) },
		func(d model.Dish) string { return d.ID },
	)

	text := fmt.Sprintf("<b>Step %d:</b> %s?", state.courseIdx+2, c.Label(lang))
	if len(dishes) == 0 {
		text += "\nNo dishes for this course yet, add some with /newdish."
	}
	extra := []string{btnSkip}
	if current := state.selection.Course(c); current != "" {
		name := "(deleted dish)"
		for _, d := range dishes {
			if d.ID == current {
				name = d.Name.Get(lang)
			}
		}
		text += fmt.Sprintf("\nCurrent: %s", escape(name))
		extra = []string{btnKeep, btnNone}
	}
	return b.sendWithReplyMarkup(chatID, text, choiceKeyboard(optionLabels(state.options), extra...))
}

func (b *Bot) savePlan(ctx context.Context, chatID int64, account *model.Account, state *conversationState) error {
	plan, created, err := b.svc.Plans.Save(ctx, account, state.date, state.selection)
	if err != nil {
		return b.reportError(chatID, "save daily menu", err)
	}
	verb := "updated"
	if created {
		verb = "saved"
	}
	b.log.Info("daily menu "+verb, zap.String("plan", plan.ID), zap.String("date", model.DayKey(plan.Date)))

	view, err := b.svc.Plans.Describe(ctx, account, *plan)
	if err != nil {
		return b.reportError(chatID, "describe daily menu", err)
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Daily menu %s.\n\n%s", verb, service.FormatPlan(view, account.Language)))
}

func (b *Bot) handleDay(ctx context.Context, msg *tgbotapi.Message) error {
	account, err := b.requireAccount(ctx, msg.Chat.ID, msg.From.ID)
	if account == nil {
		return err
	}
	date, err := b.parseDate(msg.CommandArguments())
	if err != nil {
		return b.reportError(msg.Chat.ID, "parse date", err)
	}
	return b.showDay(ctx, msg.Chat.ID, account, date)
}

func (b *Bot) showDay(ctx context.Context, chatID int64, account *model.Account, date time.Time) error {
	key := model.DayKey(date)
	plan, ok, err := b.svc.Plans.Find(ctx, account, date)
	if err != nil {
		return b.reportError(chatID, "find daily menu", err)
	}
	if !ok {
		markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗓 Plan it", cbPlanDay+key),
		))
		return b.sendWithReplyMarkup(chatID, fmt.Sprintf("🍽 No menu planned for <b>%s</b>.", key), markup)
	}

	view, err := b.svc.Plans.Describe(ctx, account, *plan)
	if err != nil {
		return b.reportError(chatID, "describe daily menu", err)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", cbPlanDay+key),
		tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", cbDeleteDay+plan.ID),
	))
	return b.sendWithReplyMarkup(chatID, service.FormatPlan(view, account.Language), markup)
}

func (b *Bot) handleCalendar(ctx context.Context, msg *tgbotapi.Message) error {
	account, err := b.requireAccount(ctx, msg.Chat.ID, msg.From.ID)
	if account == nil {
		return err
	}
	month := b.today()
	if raw := strings.TrimSpace(msg.CommandArguments()); raw != "" {
		month, err = time.Parse(monthLayout, raw)
		if err != nil {
			return b.sendText(msg.Chat.ID, "Send a month like <code>/calendar 2024-06</code>.")
		}
	}
	return b.showCalendar(ctx, msg.Chat.ID, account, month.Year(), month.Month())
}

// showCalendar renders a month grid with planned days starred, followed by the plans.
func (b *Bot) showCalendar(ctx context.Context, chatID int64, account *model.Account, year int, month time.Month) error {
	days, err := b.svc.Plans.DatesWithMenus(ctx, account)
	if err != nil {
		return b.reportError(chatID, "calendar", err)
	}
	plans, err := b.svc.Plans.ListMonth(ctx, account, year, month)
	if err != nil {
		return b.reportError(chatID, "calendar", err)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📆 <b>%s %d</b>\n", month, year))
	sb.WriteString("<pre>" + renderMonth(first, days) + "</pre>\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	if len(plans) == 0 {
		sb.WriteString("No days planned this month.")
	}
	for _, p := range plans {
		view, err := b.svc.Plans.Describe(ctx, account, p)
		if err != nil {
			return b.reportError(chatID, "calendar", err)
		}
		name := "(deleted menu)"
		if view.Menu != nil {
			name = view.Menu.Name.Get(account.Language)
		}
		key := model.DayKey(p.Date)
		sb.WriteString(fmt.Sprintf("• %s %s\n", key, escape(name)))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s · %s", key[5:], shortTitle(name, 20)), cbShowDay+key),
		))
	}

	prev, next := first.AddDate(0, -1, 0), first.AddDate(0, 1, 0)
	buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« "+prev.Month().String(), cbCalendar+prev.Format(monthLayout)),
		tgbotapi.NewInlineKeyboardButtonData(next.Month().String()+" »", cbCalendar+next.Format(monthLayout)),
	))

	return b.sendWithReplyMarkup(chatID, strings.TrimSpace(sb.String()), tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

// renderMonth draws a Monday-first grid. Days in planned are followed by an asterisk.
func renderMonth(first time.Time, planned map[string]bool) string {
	var sb strings.Builder
	sb.WriteString("Mo  Tu  We  Th  Fr  Sa  Su\n")
	offset := (int(first.Weekday()) + 6) % 7
	sb.WriteString(strings.Repeat("    ", offset))

	last := first.AddDate(0, 1, -1).Day()
	for day := 1; day <= last; day++ {
		date := time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
		mark := " "
		if planned[model.DayKey(date)] {
			mark = "*"
		}
		sb.WriteString(fmt.Sprintf("%2d%s", day, mark))
		if (offset+day)%7 == 0 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
	}
	return strings.TrimRight(sb.String(), " \n")
}
