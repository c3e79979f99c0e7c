package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"menu-planner/internal/auth"
	"menu-planner/internal/bot"
	"menu-planner/internal/service"
)

func newServeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the daily reminder",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), rt)
		},
	}
}

func serve(parent context.Context, rt *runtime) error {
	if err := rt.cfg.RequireTelegram(); err != nil {
		return err
	}
	loc, err := rt.cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, rt)
	if err != nil {
		return err
	}
	defer a.Close()

	plans := a.plans()
	telegramBot, err := bot.New(rt.cfg.TelegramToken, bot.Services{
		Auth:      auth.NewService(a.accounts, a.sessions, auth.NewMailer(rt.cfg.SMTP, rt.log), rt.cfg.JWTSecret, rt.cfg.SessionTTL, rt.log),
		Dishes:    service.NewDishService(a.stores.Dishes),
		Menus:     service.NewMenuService(a.stores.Menus),
		Plans:     plans,
		Reminders: service.NewReminderService(plans),
		Accounts:  a.accounts,
	}, loc, rt.log)
	if err != nil {
		return err
	}

	scheduler := service.NewSchedulerService(loc, rt.log)
	if _, err := scheduler.ScheduleDaily(rt.cfg.ReminderTime, func() {
		jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			rt.log.Error("daily reports", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		scheduler.Stop()
		return nil
	})
	g.Go(func() error {
		defer stop()
		return telegramBot.Start(gctx)
	})

	rt.log.Info("menu planner started", zap.String("reminder_time", rt.cfg.ReminderTime), zap.String("timezone", loc.String()))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	rt.log.Info("shutdown complete")
	return nil
}
