package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"menu-planner/internal/model"
)

// DishRepository handles CRUD for dishes.
type DishRepository struct {
	db *gorm.DB
}

func NewDishRepository(db *gorm.DB) *DishRepository {
	return &DishRepository{db: db}
}

// ListByUser returns the user's dishes, newest first.
func (r *DishRepository) ListByUser(ctx context.Context, userID string) ([]model.Dish, error) {
	var dishes []model.Dish
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	return dishes, nil
}

func (r *DishRepository) FindByID(ctx context.Context, userID, id string) (*model.Dish, error) {
	var dish model.Dish
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&dish).Error; err != nil {
		return nil, fmt.Errorf("find dish: %w", translate(err))
	}
	return &dish, nil
}

func (r *DishRepository) Create(ctx context.Context, dish *model.Dish) error {
	if err := r.db.WithContext(ctx).Create(dish).Error; err != nil {
		return fmt.Errorf("create dish: %w", err)
	}
	return nil
}

func (r *DishRepository) Update(ctx context.Context, dish *model.Dish) error {
	res := r.db.WithContext(ctx).Model(dish).Where("user_id = ?", dish.UserID).Select("*").Updates(dish)
	if res.Error != nil {
		return fmt.Errorf("update dish: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update dish: %w", model.ErrNotFound)
	}
	return nil
}

func (r *DishRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&model.Dish{})
	if res.Error != nil {
		return fmt.Errorf("delete dish: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete dish: %w", model.ErrNotFound)
	}
	return nil
}
