package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/hotset/internal/backup"
	"github.com/julianstephens/hotset/internal/cli"
	"github.com/julianstephens/hotset/internal/cli/backups"
	"github.com/julianstephens/hotset/internal/cli/catchup"
	"github.com/julianstephens/hotset/internal/cli/items"
	"github.com/julianstephens/hotset/internal/cli/sessions"
	"github.com/julianstephens/hotset/internal/cli/swaps"
	"github.com/julianstephens/hotset/internal/cli/system"
	"github.com/julianstephens/hotset/internal/config"
	"github.com/julianstephens/hotset/internal/constants"
	apperr "github.com/julianstephens/hotset/internal/errors"
	"github.com/julianstephens/hotset/internal/hotset"
	"github.com/julianstephens/hotset/internal/logger"
	"github.com/julianstephens/hotset/internal/notifier"
	"github.com/julianstephens/hotset/internal/storage/sqlite"
	"github.com/julianstephens/hotset/internal/utils"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `help:"SQLite file or PostgreSQL connection string. PostgreSQL credentials must NOT be embedded; use the OS keyring, ${env_db} or .pgpass." name:"db"`
	Config  string `help:"Policy file (.yaml, .yml or .toml)." type:"path" default:"${config_file}" env:"HOTSET_CONFIG"`
	Profile string `help:"Keyring profile holding the PostgreSQL connection string." env:"HOTSET_PROFILE"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize hotset storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Serve   system.ServeCmd   `cmd:"" help:"Serve the HTTP API."`

	Session struct {
		Create sessions.SessionCreateCmd `cmd:"" help:"Create a session from a day template."`
		List   sessions.SessionListCmd   `cmd:"" help:"List sessions." default:"1"`
		Show   sessions.SessionShowCmd   `cmd:"" help:"Show a session and its projected schedule."`
		Delete sessions.SessionDeleteCmd `cmd:"" help:"Delete a session."`
	} `cmd:"" help:"Manage shoot-day sessions."`
	Day struct {
		Start sessions.DayStartCmd `cmd:"" help:"Record crew call and start the day."`
		Wrap  sessions.DayWrapCmd  `cmd:"" help:"Record wrap."`
	} `cmd:"" help:"Start or wrap a day."`
	Schedule sessions.ScheduleCmd `cmd:"" help:"Show the projected schedule."`
	Variance sessions.VarianceCmd `cmd:"" help:"Show cumulative variance and real-time deviation."`
	Summary  sessions.SummaryCmd  `cmd:"" help:"Print the day summary as JSON."`

	Item struct {
		Start    items.ItemStartCmd    `cmd:"" help:"Start a scene or block."`
		Complete items.ItemCompleteCmd `cmd:"" help:"Complete the running scene or block."`
		Skip     items.ItemSkipCmd     `cmd:"" help:"Skip a scene or block."`
		Adjust   items.ItemAdjustCmd   `cmd:"" help:"Change a block's start and end."`
		Move     items.ItemMoveCmd     `cmd:"" help:"Reorder a pending item."`
		Delete   items.ItemDeleteCmd   `cmd:"" help:"Delete a pending block."`
	} `cmd:"" help:"Track scenes and blocks."`
	Activity struct {
		Insert items.ActivityInsertCmd `cmd:"" help:"Insert an unplanned activity." default:"1"`
	} `cmd:"" help:"Add unplanned activities."`

	Suggest catchup.SuggestCmd `cmd:"" help:"Suggest ways to recover lost time."`
	Apply   catchup.ApplyCmd   `cmd:"" help:"Apply a catch-up suggestion."`

	Swap struct {
		Suggest swaps.SwapSuggestCmd `cmd:"" help:"Rank scenes from other days to swap in."`
		Run     swaps.SwapRunCmd     `cmd:"" help:"Swap a scene with one from another day."`
	} `cmd:"" help:"Swap scenes between days."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`

	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string, password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
}

// commands that open the store themselves.
var skipLoad = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Live shoot-day schedule tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_file": constants.DefaultConfigFile,
			"env_db":      constants.EnvDBConnection,
			"listen_addr": constants.DefaultListenAddr,
		},
	)

	command := strings.Fields(ctx.Command())[0]

	configPath, err := utils.ExpandHome(CLI.Config)
	if err != nil {
		apperr.Fatal(err)
	}
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(configPath),
		Stderr:    command == "serve",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	policy, err := config.Load(configPath)
	if err != nil {
		apperr.Fatal(err)
	}

	if command == "keyring" {
		if err := ctx.Run(&cli.Context{Policy: policy, Profile: CLI.Profile, Now: time.Now}); err != nil {
			apperr.Fatal(err)
		}
		return
	}

	store, err := cli.ResolveStore(CLI.DB, CLI.Profile)
	if err != nil {
		apperr.Fatal(err)
	}

	opts := []hotset.Option{hotset.WithNotifier(notifier.New())}
	var backupMgr *backup.Manager
	if _, ok := store.(*sqlite.Store); ok {
		dbPath, err := utils.ExpandHome(store.GetConfigPath())
		if err != nil {
			apperr.Fatal(err)
		}
		backupMgr = backup.NewManager(dbPath)
		opts = append(opts, hotset.WithBackups(backupMgr))
	}

	appCtx := &cli.Context{
		Store:   store,
		Service: hotset.New(store, policy, opts...),
		Policy:  policy,
		Backups: backupMgr,
		Profile: CLI.Profile,
		Now:     time.Now,
	}

	if !skipLoad[command] {
		if err := store.Load(); err != nil {
			apperr.Fatal(err)
		}
	}
	defer store.Close()

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		apperr.Fatal(err)
	}
}
