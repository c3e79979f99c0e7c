package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"menu-planner/internal/model"
)

// DishInput represents data required to create or edit a dish.
type DishInput struct {
	Name model.LocalizedText
	Type model.Course
}

func (in DishInput) normalize() (DishInput, error) {
	if err := in.Name.Validate("name"); err != nil {
		return in, err
	}
	course, err := model.ParseCourse(string(in.Type))
	if err != nil {
		return in, err
	}
	return DishInput{Name: in.Name.Trimmed(), Type: course}, nil
}

// DishService wraps dish business logic.
type DishService struct {
	store DishStore
	now   func() time.Time
}

func NewDishService(store DishStore) *DishService {
	return &DishService{store: store, now: time.Now}
}

func (s *DishService) Create(ctx context.Context, user *model.Account, input DishInput) (*model.Dish, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}
	now := s.now()
	dish := model.Dish{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      input.Name,
		Type:      input.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, &dish); err != nil {
		return nil, err
	}
	return &dish, nil
}

// Update rewrites name and course; the id and creation time are kept.
func (s *DishService) Update(ctx context.Context, user *model.Account, id string, input DishInput) (*model.Dish, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}
	dish, err := s.store.FindByID(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	dish.Name = input.Name
	dish.Type = input.Type
	dish.UpdatedAt = s.now()
	if err := s.store.Update(ctx, dish); err != nil {
		return nil, err
	}
	return dish, nil
}

func (s *DishService) Get(ctx context.Context, user *model.Account, id string) (*model.Dish, error) {
	return s.store.FindByID(ctx, user.ID, id)
}

// Delete removes the dish. Daily menus that reference it keep the dangling id.
func (s *DishService) Delete(ctx context.Context, user *model.Account, id string) error {
	return s.store.Delete(ctx, user.ID, id)
}

func (s *DishService) List(ctx context.Context, user *model.Account) ([]model.Dish, error) {
	return s.store.ListByUser(ctx, user.ID)
}

// Search filters the user's dishes by name in any language and, when course is set, by course.
func (s *DishService) Search(ctx context.Context, user *model.Account, query string, course model.Course) ([]model.Dish, error) {
	dishes, err := s.store.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return FilterDishes(dishes, query, course), nil
}

// FilterDishes keeps dishes matching query and course. Empty values match all.
func FilterDishes(dishes []model.Dish, query string, course model.Course) []model.Dish {
	out := make([]model.Dish, 0, len(dishes))
	for _, d := range dishes {
		if course != "" && d.Type != course {
			continue
		}
		if !d.Name.Matches(query) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// GroupByCourse splits dishes into per-course lists, preserving order.
func GroupByCourse(dishes []model.Dish) map[model.Course][]model.Dish {
	groups := make(map[model.Course][]model.Dish, len(model.Courses))
	for _, d := range dishes {
		groups[d.Type] = append(groups[d.Type], d)
	}
	return groups
}
