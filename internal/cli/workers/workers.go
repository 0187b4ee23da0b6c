package workers

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/hourplan/internal/cli"
	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/utils"
)

// parseWeek reads --hours: one value for every weekday or five values for
// Monday..Friday, comma separated.
func parseWeek(s string) ([5]float64, error) {
	hours, err := utils.ParseHoursList(s)
	if err != nil {
		return [5]float64{}, err
	}
	return models.WeekFromList(hours)
}

type WorkerAddCmd struct {
	Name  string `arg:"" help:"Worker name."`
	ID    string `help:"Worker ID. Generated when omitted."`
	Hours string `help:"Weekday hours: one value or five comma-separated values for Mon..Fri." default:"8"`
}

func (c *WorkerAddCmd) Run(ctx *cli.Context) error {
	week, err := parseWeek(c.Hours)
	if err != nil {
		return fmt.Errorf("invalid --hours: %w", err)
	}
	res, err := ctx.Service.AddWorker(context.Background(), models.Worker{
		ID:           strings.TrimSpace(c.ID),
		Name:         strings.TrimSpace(c.Name),
		WeekdayHours: week,
	})
	if err != nil {
		return err
	}
	w := res.Changes.Workers[0]
	fmt.Printf("Added worker: %s (ID: %s)\n", w.Name, w.ID)
	return nil
}

type WorkerListCmd struct{}

func (c *WorkerListCmd) Run(ctx *cli.Context) error {
	workers, err := ctx.Service.Workers(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get workers: %w", err)
	}
	if len(workers) == 0 {
		fmt.Println("No workers found")
		return nil
	}
	cli.PrintWorkers(workers)
	return nil
}

type WorkerEditCmd struct {
	ID    string `arg:"" help:"Worker ID to edit."`
	Name  string `help:"New display name."`
	Hours string `help:"New weekday hours: one value or five comma-separated values for Mon..Fri."`
	From  string `help:"Date from which the worker's work is repacked (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *WorkerEditCmd) Run(ctx *cli.Context) error {
	if strings.TrimSpace(c.Name) == "" && c.Hours == "" {
		return fmt.Errorf("nothing to change, pass --name and/or --hours")
	}
	bg := context.Background()

	if strings.TrimSpace(c.Name) != "" {
		if _, err := ctx.Service.RenameWorker(bg, c.ID, c.Name); err != nil {
			return err
		}
		fmt.Printf("Renamed %s to %s\n", c.ID, strings.TrimSpace(c.Name))
	}
	if c.Hours == "" {
		return nil
	}

	week, err := parseWeek(c.Hours)
	if err != nil {
		return fmt.Errorf("invalid --hours: %w", err)
	}
	from, err := cli.ResolveDate(c.From)
	if err != nil {
		return err
	}
	res, err := ctx.Service.UpdateWorkerHours(bg, c.ID, week, from)
	if err != nil {
		return err
	}
	fmt.Printf("Updated hours for %s from %s\n", c.ID, from)
	cli.PrintResult(res)
	return nil
}

type WorkerDeleteCmd struct {
	ID string `arg:"" help:"Worker ID to delete."`
}

func (c *WorkerDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	w, err := ctx.Store.GetWorker(bg, c.ID)
	if err != nil {
		return fmt.Errorf("failed to find worker with ID %s: %w", c.ID, err)
	}

	ok, err := ctx.Confirm(fmt.Sprintf("Delete %s and all of their slices and overrides?", w.Name))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Delete cancelled.")
		return nil
	}

	if err := ctx.Service.DeleteWorker(bg, c.ID); err != nil {
		return fmt.Errorf("failed to delete worker: %w", err)
	}
	fmt.Printf("Deleted worker: %s (ID: %s)\n", w.Name, c.ID)
	return nil
}
