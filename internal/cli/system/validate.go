package system

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/hourplan/internal/cli"
)

type ValidateCmd struct {
	JSON bool `help:"Print conflicts as JSON."`
}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	result, err := ctx.Service.Validate(context.Background())
	if err != nil {
		return err
	}

	if c.JSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Println(string(out))
	} else {
		fmt.Println(result.FormatReport())
	}

	if result.HasConflicts() {
		return fmt.Errorf("found %d conflict(s)", len(result.Conflicts))
	}
	return nil
}
