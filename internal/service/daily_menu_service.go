package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"menu-planner/internal/model"
)

var (
	// ErrMissingSelection is returned when saving without a date or a menu.
	ErrMissingSelection = fmt.Errorf("%w: select a date and a menu", model.ErrValidation)
	// ErrCourseMismatch is returned when a dish is placed in another course's slot.
	ErrCourseMismatch = fmt.Errorf("%w: dish belongs to another course", model.ErrValidation)
)

// Selection is the editable state of a daily plan: the chosen menu and dishes.
// ExistingID is set when the selection was loaded from a stored plan.
type Selection struct {
	ExistingID   string
	MenuID       string
	FirstCourse  string
	SecondCourse string
	Dessert      string
}

// Course returns the dish id selected for c.
func (s Selection) Course(c model.Course) string {
	switch c {
	case model.CourseFirst:
		return s.FirstCourse
	case model.CourseSecond:
		return s.SecondCourse
	case model.CourseDessert:
		return s.Dessert
	}
	return ""
}

// SetCourse selects dishID for c. An empty id clears the slot.
func (s *Selection) SetCourse(c model.Course, dishID string) {
	switch c {
	case model.CourseFirst:
		s.FirstCourse = dishID
	case model.CourseSecond:
		s.SecondCourse = dishID
	case model.CourseDessert:
		s.Dessert = dishID
	}
}

// SelectionFrom copies a stored plan into an editable selection.
func SelectionFrom(plan model.DailyMenu) Selection {
	sel := Selection{ExistingID: plan.ID, MenuID: plan.MenuID}
	for _, c := range model.Courses {
		if id := plan.Course(c); id != nil {
			sel.SetCourse(c, *id)
		}
	}
	return sel
}

// FindDailyMenu returns the plan whose calendar day equals date's, ignoring time of day.
func FindDailyMenu(plans []model.DailyMenu, date time.Time) (*model.DailyMenu, bool) {
	key := model.DayKey(date)
	for i := range plans {
		if model.DayKey(plans[i].Date) == key {
			return &plans[i], true
		}
	}
	return nil, false
}

// PlanView is a plan with its references resolved for display.
// Menu is nil and Dishes holds nil when the referenced row was deleted.
type PlanView struct {
	Plan   model.DailyMenu
	Menu   *model.Menu
	Dishes map[model.Course]*model.Dish
}

// DailyMenuService resolves and stores daily plans.
type DailyMenuService struct {
	plans  DailyMenuStore
	menus  MenuStore
	dishes DishStore
	now    func() time.Time
}

func NewDailyMenuService(plans DailyMenuStore, menus MenuStore, dishes DishStore) *DailyMenuService {
	return &DailyMenuService{plans: plans, menus: menus, dishes: dishes, now: time.Now}
}

// Find returns the plan stored for date's calendar day.
func (s *DailyMenuService) Find(ctx context.Context, user *model.Account, date time.Time) (*model.DailyMenu, bool, error) {
	plans, err := s.plans.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}
	plan, ok := FindDailyMenu(plans, date)
	return plan, ok, nil
}

// Load prepares the selection for date: the stored choices when a plan exists, empty otherwise.
func (s *DailyMenuService) Load(ctx context.Context, user *model.Account, date time.Time) (Selection, error) {
	plan, ok, err := s.Find(ctx, user, date)
	if err != nil {
		return Selection{}, err
	}
	if !ok {
		return Selection{}, nil
	}
	return SelectionFrom(*plan), nil
}

// Save upserts the plan for date's calendar day. The stored plan for that day, if any,
// keeps its id and creation time; otherwise a new plan is inserted. created reports which.
func (s *DailyMenuService) Save(ctx context.Context, user *model.Account, date time.Time, sel Selection) (plan *model.DailyMenu, created bool, err error) {
	if date.IsZero() || sel.MenuID == "" {
		return nil, false, ErrMissingSelection
	}
	existing, ok, err := s.Find(ctx, user, date)
	if err != nil {
		return nil, false, err
	}
	var stored Selection
	if ok {
		stored = SelectionFrom(*existing)
	}
	if err := s.checkReferences(ctx, user, sel, stored); err != nil {
		return nil, false, err
	}

	now := s.now()
	var next model.DailyMenu
	if ok {
		next = *existing
	} else {
		next = model.DailyMenu{ID: uuid.NewString(), UserID: user.ID, CreatedAt: now}
	}
	next.Date = model.CalendarDay(date)
	next.MenuID = sel.MenuID
	for _, c := range model.Courses {
		next.SetCourse(c, sel.Course(c))
	}
	next.UpdatedAt = now

	if ok {
		if err := s.plans.Update(ctx, &next); err != nil {
			return nil, false, err
		}
		return &next, false, nil
	}
	if err := s.plans.Create(ctx, &next); err != nil {
		return nil, false, err
	}
	return &next, true, nil
}

// checkReferences validates the ids that differ from the stored selection. Ids kept from
// the stored plan may point to deleted rows and are saved as they are.
func (s *DailyMenuService) checkReferences(ctx context.Context, user *model.Account, sel, stored Selection) error {
	if sel.MenuID != stored.MenuID {
		if _, err := s.menus.FindByID(ctx, user.ID, sel.MenuID); err != nil {
			return fmt.Errorf("menu %s: %w", sel.MenuID, err)
		}
	}
	for _, c := range model.Courses {
		id := sel.Course(c)
		if id == "" || id == stored.Course(c) {
			continue
		}
		dish, err := s.dishes.FindByID(ctx, user.ID, id)
		if err != nil {
			return fmt.Errorf("%s course %s: %w", c, id, err)
		}
		if dish.Type != c {
			return fmt.Errorf("%w: %s is a %s dish", ErrCourseMismatch, dish.Name.Get(user.Language), dish.Type)
		}
	}
	return nil
}

// Get returns a plan by id.
func (s *DailyMenuService) Get(ctx context.Context, user *model.Account, id string) (*model.DailyMenu, error) {
	return s.plans.FindByID(ctx, user.ID, id)
}

// Delete removes a plan by id.
func (s *DailyMenuService) Delete(ctx context.Context, user *model.Account, id string) error {
	return s.plans.Delete(ctx, user.ID, id)
}

// DatesWithMenus returns the day keys that have a plan.
func (s *DailyMenuService) DatesWithMenus(ctx context.Context, user *model.Account) (map[string]bool, error) {
	plans, err := s.plans.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	days := make(map[string]bool, len(plans))
	for _, p := range plans {
		days[model.DayKey(p.Date)] = true
	}
	return days, nil
}

// ListMonth returns the plans of one calendar month in date order.
func (s *DailyMenuService) ListMonth(ctx context.Context, user *model.Account, year int, month time.Month) ([]model.DailyMenu, error) {
	plans, err := s.plans.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	var out []model.DailyMenu
	for _, p := range plans {
		if y, m, _ := p.Date.Date(); y == year && m == month {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Describe resolves the menu and dishes a plan points to. Deleted rows resolve to nil.
func (s *DailyMenuService) Describe(ctx context.Context, user *model.Account, plan model.DailyMenu) (PlanView, error) {
	view := PlanView{Plan: plan, Dishes: make(map[model.Course]*model.Dish, len(model.Courses))}

	menu, err := s.menus.FindByID(ctx, user.ID, plan.MenuID)
	switch {
	case err == nil:
		view.Menu = menu
	case !errors.Is(err, model.ErrNotFound):
		return view, err
	}

	for _, c := range model.Courses {
		id := plan.Course(c)
		if id == nil {
			continue
		}
		dish, err := s.dishes.FindByID(ctx, user.ID, *id)
		switch {
		case err == nil:
			view.Dishes[c] = dish
		case errors.Is(err, model.ErrNotFound):
			view.Dishes[c] = nil
		default:
			return view, err
		}
	}
	return view, nil
}
