package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"menu-planner/internal/auth"
	"menu-planner/internal/config"
	"menu-planner/internal/localstore"
	"menu-planner/internal/model"
	"menu-planner/internal/repository"
	"menu-planner/internal/service"
)

// app holds the opened backends.
type app struct {
	db       *gorm.DB
	closer   repository.Closer
	accounts *repository.AccountRepository
	sessions *repository.SessionRepository
	stores   service.Stores
}

func openApp(ctx context.Context, rt *runtime) (*app, error) {
	db, closer, err := repository.Open(ctx, rt.cfg, rt.log)
	if err != nil {
		return nil, err
	}

	a := &app{
		db:       db,
		closer:   closer,
		accounts: repository.NewAccountRepository(db),
		sessions: repository.NewSessionRepository(db),
	}

	if rt.cfg.StorageDriver == config.DriverLocal {
		local, err := localstore.New(rt.cfg.LocalDataDir, rt.log)
		if err != nil {
			_ = closer()
			return nil, err
		}
		a.stores = localStores(local)
	} else {
		a.stores = service.Stores{
			Dishes: repository.NewDishRepository(db),
			Menus:  repository.NewMenuRepository(db),
			Plans:  repository.NewDailyMenuRepository(db),
		}
	}

	rt.log.Info("storage ready", zap.String("driver", rt.cfg.StorageDriver))
	return a, nil
}

func (a *app) Close() error {
	return a.closer()
}

func (a *app) plans() *service.DailyMenuService {
	return service.NewDailyMenuService(a.stores.Plans, a.stores.Menus, a.stores.Dishes)
}

// account finds the account a per-user command works on.
func (a *app) account(ctx context.Context, email string) (*model.Account, error) {
	if email == "" {
		return nil, errors.New("--email is required")
	}
	account, err := a.accounts.FindByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", email, err)
	}
	return account, nil
}

func localStores(local *localstore.Store) service.Stores {
	return service.Stores{
		Dishes: local.Dishes(),
		Menus:  local.Menus(),
		Plans:  local.DailyMenus(),
	}
}
