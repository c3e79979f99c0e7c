package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-planner/internal/model"
)

func TestMenuService(t *testing.T) {
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(b)

			weekday, err := f.menus.Create(ctx, f.user, MenuInput{
				Name:        model.LocalizedText{En: "Weekday", Es: "Entre semana", Ca: "Entre setmana"},
				Description: model.LocalizedText{En: "Quick lunch", Es: "Comida rápida", Ca: "Dinar ràpid"},
			})
			require.NoError(t, err)
			f.clock.Advance(time.Minute)
			festive, err := f.menus.Create(ctx, f.user, MenuInput{Name: model.LocalizedText{En: "Festive", Es: "Festivo", Ca: "Festiu"}})
			require.NoError(t, err)

			list, err := f.menus.List(ctx, f.user)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, festive.ID, list[0].ID, "newest first")

			found, err := f.menus.Search(ctx, f.user, "RÀPID")
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, weekday.ID, found[0].ID)

			_, err = f.menus.Create(ctx, f.user, MenuInput{Name: model.LocalizedText{En: "Only english"}})
			assert.ErrorIs(t, err, model.ErrValidation)

			f.clock.Advance(time.Hour)
			updated, err := f.menus.Update(ctx, f.user, weekday.ID, MenuInput{Name: weekday.Name})
			require.NoError(t, err)
			assert.True(t, updated.Description.IsZero())
			assert.True(t, updated.CreatedAt.Equal(weekday.CreatedAt))

			require.NoError(t, f.menus.Delete(ctx, f.user, festive.ID))
			_, err = f.menus.Get(ctx, f.user, festive.ID)
			assert.ErrorIs(t, err, model.ErrNotFound)
		})
	}
}
