package blocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/hourplan/internal/cli"
	"github.com/julianstephens/hourplan/internal/planner"
	"github.com/julianstephens/hourplan/internal/scheduler"
)

// reportExhausted explains a capacity failure before returning it.
func reportExhausted(err error) error {
	var exhausted *scheduler.CapacityExhaustedError
	if errors.As(err, &exhausted) {
		fmt.Println(cli.WarnStyle.Render(fmt.Sprintf("⚠ %.1f hours could not be placed within %d days; nothing was saved.",
			exhausted.Unplaced, exhausted.Horizon)))
	}
	return err
}

type BlockAddCmd struct {
	Worker string  `arg:"" help:"Worker ID."`
	Label  string  `arg:"" help:"Block label."`
	Hours  float64 `arg:"" help:"Total hours, in half-hour steps."`
	Start  string  `help:"First day the block may use (YYYY-MM-DD or 'today')." default:"today"`
	Floor  string  `help:"Earliest day any slice may land on. Defaults to --start."`
}

func (c *BlockAddCmd) Run(ctx *cli.Context) error {
	start, err := cli.ResolveDate(c.Start)
	if err != nil {
		return err
	}
	in := planner.CreateBlockInput{WorkerID: c.Worker, Label: c.Label, Hours: c.Hours, Start: start}
	if c.Floor != "" {
		if in.Floor, err = cli.ResolveDate(c.Floor); err != nil {
			return err
		}
	}

	res, err := ctx.Service.CreateBlock(context.Background(), in)
	if err != nil {
		return reportExhausted(err)
	}
	if len(res.Created) > 0 {
		fmt.Printf("Added block: %s (ID: %s)\n", c.Label, res.Created[0].BlockID)
	}
	cli.PrintResult(res)
	return nil
}

type BlockUrgentCmd struct {
	Worker string  `arg:"" help:"Worker ID."`
	Label  string  `arg:"" help:"Block label."`
	Hours  float64 `arg:"" help:"Hours to pin on the day."`
	Date   string  `help:"Day the urgent work lands on (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *BlockUrgentCmd) Run(ctx *cli.Context) error {
	date, err := cli.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	res, err := ctx.Service.InsertUrgent(context.Background(), planner.UrgentInput{
		WorkerID: c.Worker,
		Label:    c.Label,
		Hours:    c.Hours,
		Date:     date,
	})
	if err != nil {
		return reportExhausted(err)
	}
	fmt.Printf("Inserted urgent block: %s on %s\n", c.Label, date)
	cli.PrintResult(res)
	return nil
}

type BlockDeleteCmd struct {
	Worker string `arg:"" help:"Worker ID."`
	Block  string `arg:"" help:"Block ID to delete."`
}

func (c *BlockDeleteCmd) Run(ctx *cli.Context) error {
	ok, err := ctx.Confirm(fmt.Sprintf("Delete every slice of block %s?", c.Block))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Delete cancelled.")
		return nil
	}
	res, err := ctx.Service.DeleteBlock(context.Background(), c.Worker, c.Block)
	if err != nil {
		return reportExhausted(err)
	}
	fmt.Printf("Deleted block: %s\n", c.Block)
	cli.PrintResult(res)
	return nil
}

type BlockResizeCmd struct {
	Worker string  `arg:"" help:"Worker ID."`
	Block  string  `arg:"" help:"Block ID to resize."`
	Hours  float64 `arg:"" help:"New total hours."`
}

func (c *BlockResizeCmd) Run(ctx *cli.Context) error {
	res, err := ctx.Service.ResizeBlock(context.Background(), c.Worker, c.Block, c.Hours)
	if err != nil {
		return reportExhausted(err)
	}
	fmt.Printf("Resized block %s to %.1f hours\n", c.Block, c.Hours)
	cli.PrintResult(res)
	return nil
}

type BlockFindCmd struct {
	Worker string `arg:"" help:"Worker ID."`
	Query  string `arg:"" optional:"" help:"Case-insensitive label filter."`
}

func (c *BlockFindCmd) Run(ctx *cli.Context) error {
	blocks, err := ctx.Service.FindBlocks(context.Background(), c.Worker, c.Query)
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		fmt.Println("No blocks found")
		return nil
	}
	cli.PrintBlocks(blocks)
	return nil
}

type BlockActualCmd struct {
	Worker string  `arg:"" help:"Worker ID."`
	Block  string  `arg:"" help:"Block ID."`
	Hours  float64 `arg:"" help:"Hours actually worked on the day."`
	Date   string  `help:"Day the hours were worked (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *BlockActualCmd) Run(ctx *cli.Context) error {
	date, err := cli.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	res, err := ctx.Service.SetActualHours(context.Background(), planner.ActualInput{
		WorkerID: c.Worker,
		BlockID:  c.Block,
		Date:     date,
		Hours:    c.Hours,
	})
	if err != nil {
		return reportExhausted(err)
	}
	fmt.Printf("Recorded %.1f hours on %s for block %s\n", c.Hours, date, c.Block)
	cli.PrintResult(res)
	return nil
}
