package system

import (
	"fmt"

	"github.com/julianstephens/hourplan/internal/cli"
)

// MigrateCmd applies pending schema migrations. It runs without loading the
// store first, since loading rejects an outdated schema.
type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Init(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Printf("Database is up to date: %s\n", ctx.Store.GetConfigPath())
	return nil
}
