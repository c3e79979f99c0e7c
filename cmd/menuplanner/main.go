package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"menu-planner/internal/config"
	"menu-planner/internal/logging"
)

// runtime is filled by the root command before any subcommand runs.
type runtime struct {
	cfg config.Config
	log *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:   "menuplanner",
		Short: "Multilingual menu planner with a Telegram bot",
		Long: `menuplanner keeps dishes, menus and daily menus per user.

Storage is chosen with STORAGE_DRIVER (sqlite, postgres or local). Accounts and
sessions always live in the relational database; with the local driver dishes,
menus and daily menus are JSON files under LOCAL_DATA_DIR.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			rt.cfg, rt.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.log != nil {
				_ = rt.log.Sync()
			}
		},
	}

	root.AddCommand(
		newServeCmd(rt),
		newMigrateCmd(rt),
		newSeedCmd(rt),
		newExportCmd(rt),
		newImportCmd(rt),
	)
	return root
}
