package blocks

import (
	"context"
	"fmt"

	"github.com/julianstephens/hourplan/internal/cli"
	"github.com/julianstephens/hourplan/internal/planner"
)

type SliceDeleteCmd struct {
	ID string `arg:"" help:"Slice ID to delete."`
}

func (c *SliceDeleteCmd) Run(ctx *cli.Context) error {
	res, err := ctx.Service.DeleteSlice(context.Background(), c.ID)
	if err != nil {
		return reportExhausted(err)
	}
	fmt.Printf("Deleted slice: %s\n", c.ID)
	cli.PrintResult(res)
	return nil
}

type SliceMoveCmd struct {
	ID     string `arg:"" help:"Slice ID to move."`
	Date   string `arg:"" help:"Target day (YYYY-MM-DD or 'today')."`
	Worker string `help:"Target worker. Defaults to the slice's worker."`
}

func (c *SliceMoveCmd) Run(ctx *cli.Context) error {
	date, err := cli.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	res, err := ctx.Service.MoveSlice(context.Background(), planner.MoveSliceInput{
		SliceID:  c.ID,
		WorkerID: c.Worker,
		Date:     date,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Moved slice %s to %s\n", c.ID, date)
	cli.PrintResult(res)
	return nil
}
