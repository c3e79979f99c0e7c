package localstore

import (
	"context"
	"sort"

	"menu-planner/internal/model"
)

func sortStable[T any](items []T, less func(a, b *T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(&items[i], &items[j]) })
}

// Dishes stores the dishes collection.
type Dishes struct {
	c collection[model.Dish]
}

func (s *Store) Dishes() *Dishes {
	return &Dishes{c: collection[model.Dish]{
		store: s,
		key:   KeyDishes,
		noun:  "dish",
		id:    func(d *model.Dish) string { return d.ID },
		user:  func(d *model.Dish) string { return d.UserID },
		less:  func(a, b *model.Dish) bool { return a.CreatedAt.After(b.CreatedAt) },
	}}
}

func (d *Dishes) ListByUser(ctx context.Context, userID string) ([]model.Dish, error) {
	return d.c.list(ctx, userID)
}

func (d *Dishes) FindByID(ctx context.Context, userID, id string) (*model.Dish, error) {
	return d.c.find(ctx, userID, id)
}

func (d *Dishes) Create(ctx context.Context, dish *model.Dish) error {
	return d.c.create(ctx, dish)
}

func (d *Dishes) Update(ctx context.Context, dish *model.Dish) error {
	return d.c.update(ctx, dish)
}

func (d *Dishes) Delete(ctx context.Context, userID, id string) error {
	return d.c.remove(ctx, userID, id)
}

// Menus stores the menus collection.
type Menus struct {
	c collection[model.Menu]
}

func (s *Store) Menus() *Menus {
	return &Menus{c: collection[model.Menu]{
		store: s,
		key:   KeyMenus,
		noun:  "menu",
		id:    func(m *model.Menu) string { return m.ID },
		user:  func(m *model.Menu) string { return m.UserID },
		less:  func(a, b *model.Menu) bool { return a.CreatedAt.After(b.CreatedAt) },
	}}
}

func (m *Menus) ListByUser(ctx context.Context, userID string) ([]model.Menu, error) {
	return m.c.list(ctx, userID)
}

func (m *Menus) FindByID(ctx context.Context, userID, id string) (*model.Menu, error) {
	return m.c.find(ctx, userID, id)
}

func (m *Menus) Create(ctx context.Context, menu *model.Menu) error {
	return m.c.create(ctx, menu)
}

func (m *Menus) Update(ctx context.Context, menu *model.Menu) error {
	return m.c.update(ctx, menu)
}

func (m *Menus) Delete(ctx context.Context, userID, id string) error {
	return m.c.remove(ctx, userID, id)
}

// DailyMenus stores the dailyMenus collection, latest date first.
type DailyMenus struct {
	c collection[model.DailyMenu]
}

func (s *Store) DailyMenus() *DailyMenus {
	return &DailyMenus{c: collection[model.DailyMenu]{
		store: s,
		key:   KeyDailyMenus,
		noun:  "daily menu",
		id:    func(p *model.DailyMenu) string { return p.ID },
		user:  func(p *model.DailyMenu) string { return p.UserID },
		less:  func(a, b *model.DailyMenu) bool { return a.Date.After(b.Date) },
	}}
}

func (p *DailyMenus) ListByUser(ctx context.Context, userID string) ([]model.DailyMenu, error) {
	return p.c.list(ctx, userID)
}

func (p *DailyMenus) FindByID(ctx context.Context, userID, id string) (*model.DailyMenu, error) {
	return p.c.find(ctx, userID, id)
}

func (p *DailyMenus) Create(ctx context.Context, plan *model.DailyMenu) error {
	return p.c.create(ctx, plan)
}

func (p *DailyMenus) Update(ctx context.Context, plan *model.DailyMenu) error {
	return p.c.update(ctx, plan)
}

func (p *DailyMenus) Delete(ctx context.Context, userID, id string) error {
	return p.c.remove(ctx, userID, id)
}
