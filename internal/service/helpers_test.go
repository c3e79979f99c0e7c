package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"menu-planner/internal/localstore"
	"menu-planner/internal/model"
	"menu-planner/internal/repository"
)

type backend struct {
	name   string
	dishes DishStore
	menus  MenuStore
	plans  DailyMenuStore
}

// backends returns a fresh relational and local store pair for each test.
func backends(t *testing.T) []backend {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "planner.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	local, err := localstore.New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	return []backend{
		{
			name:   "sqlite",
			dishes: repository.NewDishRepository(db),
			menus:  repository.NewMenuRepository(db),
			plans:  repository.NewDailyMenuRepository(db),
		},
		{
			name:   "local",
			dishes: local.Dishes(),
			menus:  local.Menus(),
			plans:  local.DailyMenus(),
		},
	}
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fixture struct {
	user   *model.Account
	clock  *fakeClock
	dishes *DishService
	menus  *MenuService
	plans  *DailyMenuService
}

func newFixture(b backend) *fixture {
	clock := &fakeClock{now: time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)}
	dishes := NewDishService(b.dishes)
	dishes.now = clock.Now
	menus := NewMenuService(b.menus)
	menus.now = clock.Now
	plans := NewDailyMenuService(b.plans, b.menus, b.dishes)
	plans.now = clock.Now
	return &fixture{
		user:   &model.Account{ID: "user-1", Language: model.LanguageEnglish},
		clock:  clock,
		dishes: dishes,
		menus:  menus,
		plans:  plans,
	}
}

func same(name string) model.LocalizedText {
	return model.LocalizedText{En: name, Es: name, Ca: name}
}
