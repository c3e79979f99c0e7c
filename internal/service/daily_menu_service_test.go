package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-planner/internal/model"
)

func TestFindDailyMenuIgnoresTimeOfDay(t *testing.T) {
	madrid := time.FixedZone("CEST", 2*60*60)
	plans := []model.DailyMenu{
		{ID: "may", Date: model.CalendarDay(time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))},
		{ID: "june", Date: model.CalendarDay(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))},
	}

	tests := []struct {
		name   string
		date   time.Time
		wantID string
	}{
		{"midnight", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "june"},
		{"evening", time.Date(2024, 6, 1, 23, 59, 59, 0, time.UTC), "june"},
		{"local zone keeps its own day", time.Date(2024, 6, 1, 1, 30, 0, 0, madrid), "june"},
		{"previous day", time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC), "may"},
		{"no plan", time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindDailyMenu(plans, tt.date)
			if tt.wantID == "" {
				assert.False(t, ok)
				assert.Nil(t, got)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

type planned struct {
	menu    *model.Menu
	first   *model.Dish
	second  *model.Dish
	dessert *model.Dish
	flan    *model.Dish
}

func seedPlanned(t *testing.T, f *fixture) planned {
	t.Helper()
	ctx := context.Background()
	var p planned
	var err error
	p.menu, err = f.menus.Create(ctx, f.user, MenuInput{Name: model.LocalizedText{En: "Weekday", Es: "Diario", Ca: "Diari"}})
	require.NoError(t, err)
	p.first, err = f.dishes.Create(ctx, f.user, DishInput{Name: model.LocalizedText{En: "Salad", Es: "Ensalada", Ca: "Amanida"}, Type: model.CourseFirst})
	require.NoError(t, err)
	p.second, err = f.dishes.Create(ctx, f.user, DishInput{Name: same("Paella"), Type: model.CourseSecond})
	require.NoError(t, err)
	p.dessert, err = f.dishes.Create(ctx, f.user, DishInput{Name: model.LocalizedText{En: "Apple", Es: "Manzana", Ca: "Poma"}, Type: model.CourseDessert})
	require.NoError(t, err)
	p.flan, err = f.dishes.Create(ctx, f.user, DishInput{Name: model.LocalizedText{En: "Flan", Es: "Flan", Ca: "Flam"}, Type: model.CourseDessert})
	require.NoError(t, err)
	return p
}

func TestDailyMenuServiceUpsert(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(b)
			p := seedPlanned(t, f)
			day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

			sel, err := f.plans.Load(ctx, f.user, day)
			require.NoError(t, err)
			assert.Equal(t, Selection{}, sel, "no plan yet")

			sel.MenuID = p.menu.ID
			sel.FirstCourse = p.first.ID
			sel.Dessert = p.dessert.ID
			first, created, err := f.plans.Save(ctx, f.user, day, sel)
			require.NoError(t, err)
			assert.True(t, created)

			f.clock.Advance(time.Hour)
			sel, err = f.plans.Load(ctx, f.user, day.Add(14*time.Hour))
			require.NoError(t, err)
			assert.Equal(t, Selection{ExistingID: first.ID, MenuID: p.menu.ID, FirstCourse: p.first.ID, Dessert: p.dessert.ID}, sel)

			sel.Dessert = p.flan.ID
			second, created, err := f.plans.Save(ctx, f.user, day.Add(14*time.Hour), sel)
			require.NoError(t, err)
			assert.False(t, created)
			assert.Equal(t, first.ID, second.ID)

			all, err := b.plans.ListByUser(ctx, f.user.ID)
			require.NoError(t, err)
			require.Len(t, all, 1)
			stored := all[0]
			assert.Equal(t, first.ID, stored.ID)
			assert.Equal(t, "2024-06-01", model.DayKey(stored.Date))
			require.NotNil(t, stored.FirstCourse)
			assert.Equal(t, p.first.ID, *stored.FirstCourse)
			assert.Nil(t, stored.SecondCourse)
			require.NotNil(t, stored.Dessert)
			assert.Equal(t, p.flan.ID, *stored.Dessert)
			assert.True(t, stored.CreatedAt.Equal(first.CreatedAt))

			next, created, err := f.plans.Save(ctx, f.user, day.AddDate(0, 0, 1), Selection{MenuID: p.menu.ID})
			require.NoError(t, err)
			assert.True(t, created)
			assert.NotEqual(t, first.ID, next.ID)
		})
	}
}

func TestDailyMenuServiceSaveValidation(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(b)
			p := seedPlanned(t, f)
			day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

			_, _, err := f.plans.Save(ctx, f.user, day, Selection{})
			assert.ErrorIs(t, err, ErrMissingSelection)
			assert.ErrorIs(t, err, model.ErrValidation)

			_, _, err = f.plans.Save(ctx, f.user, time.Time{}, Selection{MenuID: p.menu.ID})
			assert.ErrorIs(t, err, ErrMissingSelection)

			_, _, err = f.plans.Save(ctx, f.user, day, Selection{MenuID: "missing"})
			assert.ErrorIs(t, err, model.ErrNotFound)

			_, _, err = f.plans.Save(ctx, f.user, day, Selection{MenuID: p.menu.ID, FirstCourse: p.second.ID})
			assert.ErrorIs(t, err, ErrCourseMismatch)

			_, _, err = f.plans.Save(ctx, f.user, day, Selection{MenuID: p.menu.ID, Dessert: "missing"})
			assert.ErrorIs(t, err, model.ErrNotFound)

			all, err := b.plans.ListByUser(ctx, f.user.ID)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestDailyMenuServiceDanglingReferences(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(b)
			p := seedPlanned(t, f)
			day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

			plan, _, err := f.plans.Save(ctx, f.user, day, Selection{MenuID: p.menu.ID, FirstCourse: p.first.ID, SecondCourse: p.second.ID})
			require.NoError(t, err)

			require.NoError(t, f.dishes.Delete(ctx, f.user, p.second.ID))

			stored, ok, err := f.plans.Find(ctx, f.user, day)
			require.NoError(t, err)
			require.True(t, ok)
			require.NotNil(t, stored.SecondCourse)
			assert.Equal(t, p.second.ID, *stored.SecondCourse)

			view, err := f.plans.Describe(ctx, f.user, *stored)
			require.NoError(t, err)
			require.NotNil(t, view.Menu)
			assert.Equal(t, p.first.ID, view.Dishes[model.CourseFirst].ID)
			deleted, present := view.Dishes[model.CourseSecond]
			assert.True(t, present)
			assert.Nil(t, deleted)
			_, present = view.Dishes[model.CourseDessert]
			assert.False(t, present)

			text := FormatPlan(view, model.LanguageCatalan)
			assert.Contains(t, text, "Diari")
			assert.Contains(t, text, "Primer: Amanida")
			assert.Contains(t, text, "Segon: (deleted dish)")
			assert.Contains(t, text, "Postres: —")

			require.NoError(t, f.menus.Delete(ctx, f.user, p.menu.ID))
			view, err = f.plans.Describe(ctx, f.user, *stored)
			require.NoError(t, err)
			assert.Nil(t, view.Menu)
			assert.Contains(t, FormatPlan(view, model.LanguageEnglish), "(deleted menu)")

			require.NoError(t, f.plans.Delete(ctx, f.user, plan.ID))
			_, ok, err = f.plans.Find(ctx, f.user, day)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestDailyMenuServiceSaveKeepsDanglingReferences(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(b)
			p := seedPlanned(t, f)
			day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

			plan, _, err := f.plans.Save(ctx, f.user, day, Selection{MenuID: p.menu.ID, FirstCourse: p.first.ID, Dessert: p.dessert.ID})
			require.NoError(t, err)
			require.NoError(t, f.dishes.Delete(ctx, f.user, p.first.ID))
			require.NoError(t, f.menus.Delete(ctx, f.user, p.menu.ID))

			sel, err := f.plans.Load(ctx, f.user, day)
			require.NoError(t, err)
			sel.Dessert = p.flan.ID

			updated, created, err := f.plans.Save(ctx, f.user, day, sel)
			require.NoError(t, err)
			assert.False(t, created)
			assert.Equal(t, plan.ID, updated.ID)
			assert.Equal(t, p.menu.ID, updated.MenuID)
			require.NotNil(t, updated.FirstCourse)
			assert.Equal(t, p.first.ID, *updated.FirstCourse)
			require.NotNil(t, updated.Dessert)
			assert.Equal(t, p.flan.ID, *updated.Dessert)

			sel.SecondCourse = p.first.ID
			_, _, err = f.plans.Save(ctx, f.user, day, sel)
			assert.ErrorIs(t, err, model.ErrNotFound)

			other := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
			_, _, err = f.plans.Save(ctx, f.user, other, Selection{MenuID: p.menu.ID})
			assert.ErrorIs(t, err, model.ErrNotFound)
		})
	}
}

func TestDailyMenuServiceCalendar(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(b)
			p := seedPlanned(t, f)

			for _, d := range []time.Time{
				time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
			} {
				_, _, err := f.plans.Save(ctx, f.user, d, Selection{MenuID: p.menu.ID})
				require.NoError(t, err)
			}

			days, err := f.plans.DatesWithMenus(ctx, f.user)
			require.NoError(t, err)
			assert.Equal(t, map[string]bool{
				"2024-06-20": true,
				"2024-05-31": true,
				"2024-06-03": true,
				"2025-06-03": true,
			}, days)

			june, err := f.plans.ListMonth(ctx, f.user, 2024, time.June)
			require.NoError(t, err)
			require.Len(t, june, 2)
			assert.Equal(t, "2024-06-03", model.DayKey(june[0].Date))
			assert.Equal(t, "2024-06-20", model.DayKey(june[1].Date))

			empty, err := f.plans.ListMonth(ctx, f.user, 2024, time.July)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}
