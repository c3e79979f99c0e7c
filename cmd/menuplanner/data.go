package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"menu-planner/internal/localstore"
	"menu-planner/internal/repository"
	"menu-planner/internal/seed"
	"menu-planner/internal/service"
)

func newMigrateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closer, err := repository.Open(cmd.Context(), rt.cfg, rt.log)
			if err != nil {
				return err
			}
			defer closer()
			if err := repository.Migrate(db); err != nil {
				return err
			}
			cmd.Println("schema is up to date")
			return nil
		},
	}
}

func newSeedCmd(rt *runtime) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Add the dishes and menus of a YAML file to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := seed.LoadFile(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(ctx, rt)
			if err != nil {
				return err
			}
			defer a.Close()

			account, err := a.account(ctx, email)
			if err != nil {
				return err
			}
			res, err := seed.Apply(ctx, f, account, service.NewDishService(a.stores.Dishes), service.NewMenuService(a.stores.Menus))
			if err != nil {
				return err
			}
			rt.log.Info("seeded", zap.String("account_id", account.ID), zap.Int("dishes", res.Dishes), zap.Int("menus", res.Menus))
			cmd.Printf("added %d dishes and %d menus, skipped %d existing\n", res.Dishes, res.Menus, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func newExportCmd(rt *runtime) *cobra.Command {
	return newTransferCmd(rt, "export", "Copy an account's data from the configured store to a JSON directory", false)
}

func newImportCmd(rt *runtime) *cobra.Command {
	return newTransferCmd(rt, "import", "Copy an account's data from a JSON directory to the configured store", true)
}

func newTransferCmd(rt *runtime, use, short string, inbound bool) *cobra.Command {
	var email, dir string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, rt)
			if err != nil {
				return err
			}
			defer a.Close()

			account, err := a.account(ctx, email)
			if err != nil {
				return err
			}
			local, err := localstore.New(dir, rt.log)
			if err != nil {
				return err
			}

			src, dst := a.stores, localStores(local)
			if inbound {
				src, dst = dst, src
			}
			stats, err := service.Transfer(ctx, account.ID, src, dst)
			if err != nil {
				return err
			}
			rt.log.Info(use+" finished", zap.String("account_id", account.ID), zap.String("dir", dir))
			cmd.Printf("%sed %s\n", use, stats)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&dir, "dir", "export", "JSON directory")
	return cmd
}
