package service

import (
	"context"
	"errors"
	"fmt"

	"menu-planner/internal/model"
)

// Stores groups the three collections of one backend.
type Stores struct {
	Dishes DishStore
	Menus  MenuStore
	Plans  DailyMenuStore
}

// TransferStats counts copied records per collection.
type TransferStats struct {
	Dishes     int
	Menus      int
	DailyMenus int
}

func (s TransferStats) String() string {
	return fmt.Sprintf("%d dishes, %d menus, %d daily menus", s.Dishes, s.Menus, s.DailyMenus)
}

// Transfer copies every record of userID from src to dst. Records that already exist in dst
// are overwritten, so running it twice leaves dst unchanged. Daily menus are matched by
// calendar day: a plan dst already has for that day keeps its id and creation time and takes
// the copied selection.
func Transfer(ctx context.Context, userID string, src, dst Stores) (TransferStats, error) {
	var stats TransferStats

	dishes, err := src.Dishes.ListByUser(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("list dishes: %w", err)
	}
	for i := range dishes {
		if err := upsert(ctx, dst.Dishes.FindByID, dst.Dishes.Create, dst.Dishes.Update, &dishes[i], userID, dishes[i].ID); err != nil {
			return stats, fmt.Errorf("copy dish %s: %w", dishes[i].ID, err)
		}
		stats.Dishes++
	}

	menus, err := src.Menus.ListByUser(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("list menus: %w", err)
	}
	for i := range menus {
		if err := upsert(ctx, dst.Menus.FindByID, dst.Menus.Create, dst.Menus.Update, &menus[i], userID, menus[i].ID); err != nil {
			return stats, fmt.Errorf("copy menu %s: %w", menus[i].ID, err)
		}
		stats.Menus++
	}

	plans, err := src.Plans.ListByUser(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("list daily menus: %w", err)
	}
	existing, err := dst.Plans.ListByUser(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("list target daily menus: %w", err)
	}
	for i := range plans {
		plan := plans[i]
		if match, ok := FindDailyMenu(existing, plan.Date); ok {
			plan.ID, plan.CreatedAt = match.ID, match.CreatedAt
			err = dst.Plans.Update(ctx, &plan)
		} else {
			err = upsert(ctx, dst.Plans.FindByID, dst.Plans.Create, dst.Plans.Update, &plan, userID, plan.ID)
			existing = append(existing, plan)
		}
		if err != nil {
			return stats, fmt.Errorf("copy daily menu %s: %w", plans[i].ID, err)
		}
		stats.DailyMenus++
	}

	return stats, nil
}

func upsert[T any](
	ctx context.Context,
	find func(context.Context, string, string) (*T, error),
	create func(context.Context, *T) error,
	update func(context.Context, *T) error,
	item *T, userID, id string,
) error {
	_, err := find(ctx, userID, id)
	switch {
	case err == nil:
		return update(ctx, item)
	case errors.Is(err, model.ErrNotFound):
		return create(ctx, item)
	default:
		return err
	}
}
