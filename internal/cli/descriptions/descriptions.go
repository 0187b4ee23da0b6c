package descriptions

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/hourplan/internal/cli"
)

type DescSetCmd struct {
	Label string `arg:"" help:"Block label the description belongs to."`
	Text  string `arg:"" help:"Description shown next to the label's slices."`
}

func (c *DescSetCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Service.SaveDescription(context.Background(), c.Label, c.Text); err != nil {
		return fmt.Errorf("failed to save description: %w", err)
	}
	fmt.Printf("Saved description for %s\n", strings.TrimSpace(c.Label))
	return nil
}

type DescListCmd struct{}

func (c *DescListCmd) Run(ctx *cli.Context) error {
	descs, err := ctx.Service.Descriptions(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load descriptions: %w", err)
	}
	if len(descs) == 0 {
		fmt.Println("No descriptions found.")
		return nil
	}
	cli.PrintDescriptions(descs)
	return nil
}

type DescDeleteCmd struct {
	Label string `arg:"" help:"Label whose description to delete."`
}

func (c *DescDeleteCmd) Run(ctx *cli.Context) error {
	label := strings.TrimSpace(c.Label)
	ok, err := ctx.Confirm(fmt.Sprintf("Delete the description for %s?", label))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Delete cancelled.")
		return nil
	}

	if _, err := ctx.Service.DeleteDescription(context.Background(), label); err != nil {
		return fmt.Errorf("failed to delete description: %w", err)
	}
	fmt.Printf("Deleted description for %s\n", label)
	return nil
}
