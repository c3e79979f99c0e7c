package service

import (
	"context"

	"menu-planner/internal/model"
)

// DishStore persists dishes. Implemented by repository.DishRepository and localstore.
type DishStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.Dish, error)
	FindByID(ctx context.Context, userID, id string) (*model.Dish, error)
	Create(ctx context.Context, dish *model.Dish) error
	Update(ctx context.Context, dish *model.Dish) error
	Delete(ctx context.Context, userID, id string) error
}

// MenuStore persists menus.
type MenuStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.Menu, error)
	FindByID(ctx context.Context, userID, id string) (*model.Menu, error)
	Create(ctx context.Context, menu *model.Menu) error
	Update(ctx context.Context, menu *model.Menu) error
	Delete(ctx context.Context, userID, id string) error
}

// DailyMenuStore persists daily plans. ListByUser returns the latest date first.
type DailyMenuStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.DailyMenu, error)
	FindByID(ctx context.Context, userID, id string) (*model.DailyMenu, error)
	Create(ctx context.Context, plan *model.DailyMenu) error
	Update(ctx context.Context, plan *model.DailyMenu) error
	Delete(ctx context.Context, userID, id string) error
}
