package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"menu-planner/internal/model"
)

const (
	btnSkip           = "⏭️ Skip"
	btnKeep           = "⏭️ Keep"
	btnNone           = "✖️ None"
	btnClear          = "🧹 Clear"
	btnConfirm        = "✅ Confirm"
	btnCancel         = "↩️ Cancel"
	btnCancelDialog   = "⏪ Stop input"
	btnToday          = "📅 Today"
	btnTomorrow       = "➡️ Tomorrow"
	menuLabelToday    = "🍽 Today's menu"
	menuLabelPlan     = "🗓 Plan a day"
	menuLabelDishes   = "🍲 Dishes"
	menuLabelMenus    = "📋 Menus"
	menuLabelCalendar = "📆 Calendar"
	menuLabelHelp     = "ℹ️ Help"
)

// Callback data prefixes. Ids are UUIDs, so every payload fits the 64 byte limit.
const (
	cbEditDish   = "editdish:"
	cbEditMenu   = "editmenu:"
	cbDeleteDish = "deldish:"
	cbDeleteMenu = "delmenu:"
	cbDeleteDay  = "delday:"
	cbShowDay    = "day:"
	cbPlanDay    = "plan:"
	cbCalendar   = "cal:"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelToday),
			tgbotapi.NewKeyboardButton(menuLabelPlan),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelDishes),
			tgbotapi.NewKeyboardButton(menuLabelMenus),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelCalendar),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// choiceKeyboard lays labels out two per row followed by the extra buttons and a stop button.
func choiceKeyboard(labels []string, extra ...string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(labels); i += 2 {
		row := tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(labels[i]))
		if i+1 < len(labels) {
			row = append(row, tgbotapi.NewKeyboardButton(labels[i+1]))
		}
		rows = append(rows, row)
	}
	last := make([]tgbotapi.KeyboardButton, 0, len(extra)+1)
	for _, label := range extra {
		last = append(last, tgbotapi.NewKeyboardButton(label))
	}
	last = append(last, tgbotapi.NewKeyboardButton(btnCancelDialog))
	rows = append(rows, last)

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func courseKeyboard(lang model.Language, extra ...string) tgbotapi.ReplyKeyboardMarkup {
	labels := make([]string, 0, len(model.Courses))
	for _, c := range model.Courses {
		labels = append(labels, c.Label(lang))
	}
	return choiceKeyboard(labels, extra...)
}

func languageKeyboard() tgbotapi.ReplyKeyboardMarkup {
	labels := make([]string, 0, len(model.Languages))
	for _, l := range model.Languages {
		labels = append(labels, "/lang "+string(l))
	}
	return choiceKeyboard(labels)
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnSkip) || value == strings.ToLower(btnKeep) || value == "skip" || value == "keep"
}

func isNoneInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnNone) || value == strings.ToLower(btnClear) || value == "none" || value == "-"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "confirm" || value == "yes"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "cancel" || value == "no"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "stop"
}

// parseCourseInput accepts a course id or its label in any language.
func parseCourseInput(text string) (model.Course, bool) {
	if c, err := model.ParseCourse(text); err == nil {
		return c, true
	}
	value := strings.TrimSpace(strings.ToLower(text))
	for _, c := range model.Courses {
		for _, lang := range model.Languages {
			if strings.ToLower(c.Label(lang)) == value {
				return c, true
			}
		}
	}
	return "", false
}
