package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/hotset/internal/cli"
	"github.com/julianstephens/hotset/internal/storage/postgres"
	"github.com/julianstephens/hotset/internal/utils"
)

type InitCmd struct {
	Force bool `help:"Delete the existing SQLite database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if _, ok := ctx.Store.(*postgres.Store); ok {
			return fmt.Errorf("--force is not supported for PostgreSQL, drop the %q schema manually", "hotset")
		}
		dbPath, err := utils.ExpandHome(ctx.Store.GetConfigPath())
		if err != nil {
			return err
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized hotset storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
