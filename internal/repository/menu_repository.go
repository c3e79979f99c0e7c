package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"menu-planner/internal/model"
)

// MenuRepository handles CRUD for menus.
type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// ListByUser returns the user's menus, newest first.
func (r *MenuRepository) ListByUser(ctx context.Context, userID string) ([]model.Menu, error) {
	var menus []model.Menu
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&menus).Error; err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return menus, nil
}

func (r *MenuRepository) FindByID(ctx context.Context, userID, id string) (*model.Menu, error) {
	var menu model.Menu
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&menu).Error; err != nil {
		return nil, fmt.Errorf("find menu: %w", translate(err))
	}
	return &menu, nil
}

func (r *MenuRepository) Create(ctx context.Context, menu *model.Menu) error {
	if err := r.db.WithContext(ctx).Create(menu).Error; err != nil {
		return fmt.Errorf("create menu: %w", err)
	}
	return nil
}

func (r *MenuRepository) Update(ctx context.Context, menu *model.Menu) error {
	res := r.db.WithContext(ctx).Model(menu).Where("user_id = ?", menu.UserID).Select("*").Updates(menu)
	if res.Error != nil {
		return fmt.Errorf("update menu: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update menu: %w", model.ErrNotFound)
	}
	return nil
}

func (r *MenuRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&model.Menu{})
	if res.Error != nil {
		return fmt.Errorf("delete menu: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete menu: %w", model.ErrNotFound)
	}
	return nil
}
