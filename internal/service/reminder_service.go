package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"menu-planner/internal/model"
)

const (
	deletedMenu = "(deleted menu)"
	deletedDish = "(deleted dish)"
	noDish      = "—"
)

// ReminderService builds the daily menu notification.
type ReminderService struct {
	plans *DailyMenuService
}

func NewReminderService(plans *DailyMenuService) *ReminderService {
	return &ReminderService{plans: plans}
}

// DailySummary renders the plan for now's calendar day in the account language.
func (s *ReminderService) DailySummary(ctx context.Context, account model.Account, now time.Time) (string, error) {
	plan, ok, err := s.plans.Find(ctx, &account, now)
	if err != nil {
		return "", err
	}
	day := model.DayKey(now)
	if !ok {
		return fmt.Sprintf("🍽 <b>%s</b>\nNo menu planned for today. Use /plan to add one.", day), nil
	}
	view, err := s.plans.Describe(ctx, &account, *plan)
	if err != nil {
		return "", err
	}
	return "☀️ <b>Today's menu</b>\n" + FormatPlan(view, account.Language), nil
}

// FormatPlan renders a resolved plan as Telegram HTML.
func FormatPlan(view PlanView, lang model.Language) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🗓 <b>%s</b>\n", model.DayKey(view.Plan.Date)))

	menuName := deletedMenu
	if view.Menu != nil {
		menuName = html.EscapeString(view.Menu.Name.Get(lang))
	}
	sb.WriteString(fmt.Sprintf("📋 %s\n", menuName))
	if view.Menu != nil && !view.Menu.Description.IsZero() {
		sb.WriteString(fmt.Sprintf("<i>%s</i>\n", html.EscapeString(view.Menu.Description.Get(lang))))
	}

	for _, c := range model.Courses {
		name := noDish
		if dish, ok := view.Dishes[c]; ok {
			if dish == nil {
				name = deletedDish
			} else {
				name = html.EscapeString(dish.Name.Get(lang))
			}
		}
		sb.WriteString(fmt.Sprintf("• %s: %s\n", c.Label(lang), name))
	}

	return strings.TrimSpace(sb.String())
}
