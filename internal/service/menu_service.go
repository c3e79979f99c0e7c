package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"menu-planner/internal/model"
)

// MenuInput represents data required to create or edit a menu.
type MenuInput struct {
	Name        model.LocalizedText
	Description model.LocalizedText
}

// MenuService wraps menu business logic.
type MenuService struct {
	store MenuStore
	now   func() time.Time
}

func NewMenuService(store MenuStore) *MenuService {
	return &MenuService{store: store, now: time.Now}
}

func (s *MenuService) Create(ctx context.Context, user *model.Account, input MenuInput) (*model.Menu, error) {
	if err := input.Name.Validate("name"); err != nil {
		return nil, err
	}
	now := s.now()
	menu := model.Menu{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Name:        input.Name.Trimmed(),
		Description: input.Description.Trimmed(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, &menu); err != nil {
		return nil, err
	}
	return &menu, nil
}

func (s *MenuService) Update(ctx context.Context, user *model.Account, id string, input MenuInput) (*model.Menu, error) {
	if err := input.Name.Validate("name"); err != nil {
		return nil, err
	}
	menu, err := s.store.FindByID(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	menu.Name = input.Name.Trimmed()
	menu.Description = input.Description.Trimmed()
	menu.UpdatedAt = s.now()
	if err := s.store.Update(ctx, menu); err != nil {
		return nil, err
	}
	return menu, nil
}

func (s *MenuService) Get(ctx context.Context, user *model.Account, id string) (*model.Menu, error) {
	return s.store.FindByID(ctx, user.ID, id)
}

// Delete removes the menu without touching daily menus that use it.
func (s *MenuService) Delete(ctx context.Context, user *model.Account, id string) error {
	return s.store.Delete(ctx, user.ID, id)
}

func (s *MenuService) List(ctx context.Context, user *model.Account) ([]model.Menu, error) {
	return s.store.ListByUser(ctx, user.ID)
}

// Search matches query against names and descriptions in every language.
func (s *MenuService) Search(ctx context.Context, user *model.Account, query string) ([]model.Menu, error) {
	menus, err := s.store.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return FilterMenus(menus, query), nil
}

func FilterMenus(menus []model.Menu, query string) []model.Menu {
	out := make([]model.Menu, 0, len(menus))
	for _, m := range menus {
		if m.Name.Matches(query) || (!m.Description.IsZero() && m.Description.Matches(query)) {
			out = append(out, m)
		}
	}
	return out
}
