package main

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/julianstephens/hourplan/internal/cli"
	"github.com/julianstephens/hourplan/internal/cli/backups"
	"github.com/julianstephens/hourplan/internal/cli/blocks"
	"github.com/julianstephens/hourplan/internal/cli/calendar"
	"github.com/julianstephens/hourplan/internal/cli/descriptions"
	"github.com/julianstephens/hourplan/internal/cli/system"
	"github.com/julianstephens/hourplan/internal/cli/workers"
	"github.com/julianstephens/hourplan/internal/constants"
	"github.com/julianstephens/hourplan/internal/errors"
	"github.com/julianstephens/hourplan/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `help:"SQLite database path, PostgreSQL connection string, or 'keyring' to read the connection string from the OS keyring. Credentials must NOT be embedded in the connection string." type:"string" default:"~/.config/hourplan/hourplan.db" env:"HOURPLAN_DB"`
	Config  string `help:"Config file path (YAML or JSON)." type:"string" default:"~/.config/hourplan/config.yaml"`
	Debug   bool   `help:"Log debug output to stderr."`
	Yes     bool   `short:"y" help:"Answer yes to confirmation prompts."`

	Init     system.InitCmd     `cmd:"" help:"Initialize hourplan storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd `cmd:"" help:"Check stored data for conflicts."`
	Serve    system.ServeCmd    `cmd:"" help:"Serve the HTTP API."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Day      calendar.DayCmd    `cmd:"" help:"Show a worker's capacity and work by day."`
	Worker   struct {
		Add    workers.WorkerAddCmd    `cmd:"" help:"Add a worker."`
		Edit   workers.WorkerEditCmd   `cmd:"" help:"Rename a worker or change their weekday hours."`
		Delete workers.WorkerDeleteCmd `cmd:"" help:"Delete a worker."`
		List   workers.WorkerListCmd   `cmd:"" help:"List workers." default:"1"`
	} `cmd:"" help:"Manage workers."`
	Block struct {
		Add    blocks.BlockAddCmd    `cmd:"" help:"Lay out a new block over free capacity."`
		Urgent blocks.BlockUrgentCmd `cmd:"" help:"Pin urgent work to one day."`
		Resize blocks.BlockResizeCmd `cmd:"" help:"Change a block's total hours."`
		Delete blocks.BlockDeleteCmd `cmd:"" help:"Delete a block."`
		Find   blocks.BlockFindCmd   `cmd:"" help:"Find a worker's blocks by label."`
		Actual blocks.BlockActualCmd `cmd:"" help:"Record the hours actually worked on a day."`
	} `cmd:"" help:"Manage blocks of work."`
	Slice struct {
		Delete blocks.SliceDeleteCmd `cmd:"" help:"Delete one slice."`
		Move   blocks.SliceMoveCmd   `cmd:"" help:"Move a slice to another day or worker."`
	} `cmd:"" help:"Manage individual slices."`
	Desc struct {
		Set    descriptions.DescSetCmd    `cmd:"" help:"Set the description shown for a label."`
		List   descriptions.DescListCmd   `cmd:"" help:"List label descriptions." default:"1"`
		Delete descriptions.DescDeleteCmd `cmd:"" help:"Delete a label's description."`
	} `cmd:"" help:"Manage label descriptions."`
	Override calendar.OverrideSetCmd `cmd:"" help:"Set a day's capacity override."`
	Range    calendar.RangeCmd       `cmd:"" help:"Change overrides over a date range."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
}

// skipLoad lists commands that open the store themselves.
var skipLoad = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Capacity-aware work-hour planner"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := cli.LoadConfig(CLI.Config, CLI.Config != constants.DefaultConfigFile)
	if err != nil {
		errors.Fatal(err)
	}

	configDir, err := cli.ExpandPath(constants.DefaultConfigDir)
	if err != nil {
		errors.Fatal(err)
	}
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug || cfg.Logging.Debug,
		ConfigDir: configDir,
		Dir:       cfg.Logging.Dir,
	}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}

	command := rootCommand(ctx)
	if command == "keyring" {
		// keyring commands never touch the database
		errors.Fatal(ctx.Run(&cli.Context{Config: cfg, Yes: CLI.Yes}))
		return
	}

	store, err := cli.OpenStore(CLI.DB)
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appCtx, err := cli.NewContext(store, cfg, reg)
	if err != nil {
		errors.Fatal(err)
	}
	appCtx.Yes = CLI.Yes

	if !skipLoad[command] {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}
	logger.Debug("Running command", "command", ctx.Command(), "store", filepath.Base(store.GetConfigPath()))

	if err := ctx.Run(appCtx); err != nil {
		errors.Fatal(err)
	}
	if appCtx.Dirty() && cfg.Backup.Auto {
		appCtx.PerformAutomaticBackup()
	}
}

// rootCommand returns the first word of the selected command.
func rootCommand(ctx *kong.Context) string {
	fields := strings.Fields(ctx.Command())
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
