package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"menu-planner/internal/model"
)

// DailyMenuRepository handles CRUD for daily plans.
type DailyMenuRepository struct {
	db *gorm.DB
}

func NewDailyMenuRepository(db *gorm.DB) *DailyMenuRepository {
	return &DailyMenuRepository{db: db}
}

// ListByUser returns the user's plans, latest date first.
func (r *DailyMenuRepository) ListByUser(ctx context.Context, userID string) ([]model.DailyMenu, error) {
	var plans []model.DailyMenu
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("list daily menus: %w", err)
	}
	return plans, nil
}

func (r *DailyMenuRepository) FindByID(ctx context.Context, userID, id string) (*model.DailyMenu, error) {
	var plan model.DailyMenu
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&plan).Error; err != nil {
		return nil, fmt.Errorf("find daily menu: %w", translate(err))
	}
	return &plan, nil
}

func (r *DailyMenuRepository) Create(ctx context.Context, plan *model.DailyMenu) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return fmt.Errorf("create daily menu: %w", err)
	}
	return nil
}

// Update overwrites every column, clearing course slots set to nil.
func (r *DailyMenuRepository) Update(ctx context.Context, plan *model.DailyMenu) error {
	res := r.db.WithContext(ctx).Model(plan).Where("user_id = ?", plan.UserID).Select("*").Updates(plan)
	if res.Error != nil {
		return fmt.Errorf("update daily menu: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update daily menu: %w", model.ErrNotFound)
	}
	return nil
}

func (r *DailyMenuRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&model.DailyMenu{})
	if res.Error != nil {
		return fmt.Errorf("delete daily menu: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete daily menu: %w", model.ErrNotFound)
	}
	return nil
}
