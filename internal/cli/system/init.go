package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/proofstreak/internal/cli"
	"github.com/julianstephens/proofstreak/internal/constants"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite or bolt database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if ctx.Config.Driver == constants.DriverPostgres {
			return fmt.Errorf("--force is not supported for PostgreSQL; drop the %s schema manually", constants.AppName)
		}
		dbPath := ctx.Store.GetConfigPath()
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
	ctx.Printf("Initialized %s storage (%s) at: %s\n", constants.AppName, ctx.Config.Driver, ctx.Store.GetConfigPath())
	return nil
}
