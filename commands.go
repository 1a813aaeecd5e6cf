package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/tutuna/heraldbot/internals/config"
	"github.com/tutuna/heraldbot/internals/logging"
	"github.com/tutuna/heraldbot/internals/store"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.LogLevel, cfg.LogConsole)
}

type serveCmd struct {
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "Run the announcement bot." }
func (*serveCmd) Usage() string {
	return `serve:
  Connect to Telegram and serve commands until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, ok := loadConfig()
	if !ok {
		return subcommands.ExitFailure
	}
	if err := cfg.RequireToken(); err != nil {
		log.Error().Err(err).Msg("cannot start")
		return subcommands.ExitFailure
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("bot stopped")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// withStore runs fn against the configured store and maps the outcome to
// an exit status.
func withStore(ctx context.Context, what string, fn func(context.Context, store.Store, zerolog.Logger) error) subcommands.ExitStatus {
	cfg, log, ok := loadConfig()
	if !ok {
		return subcommands.ExitFailure
	}
	st, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("open store")
		return subcommands.ExitFailure
	}
	defer closeStore()
	if err := fn(ctx, st, log); err != nil {
		log.Error().Err(err).Msg(what)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type adminsCmd struct {
}

func (*adminsCmd) Name() string     { return "admins" }
func (*adminsCmd) Synopsis() string { return "Print the stored admin ids." }
func (*adminsCmd) Usage() string {
	return `admins:
  Print the stored admin ids, one per line.
`
}

func (c *adminsCmd) SetFlags(f *flag.FlagSet) {
}

func (c *adminsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withStore(ctx, "list admins", func(ctx context.Context, st store.Store, _ zerolog.Logger) error {
		return printIDs(ctx, st, store.KeyAdmins, os.Stdout)
	})
}

type channelsCmd struct {
}

func (*channelsCmd) Name() string     { return "channels" }
func (*channelsCmd) Synopsis() string { return "Print the registered channel ids." }
func (*channelsCmd) Usage() string {
	return `channels:
  Print the registered channel ids, one per line.
`
}

func (c *channelsCmd) SetFlags(f *flag.FlagSet) {
}

func (c *channelsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withStore(ctx, "list channels", func(ctx context.Context, st store.Store, _ zerolog.Logger) error {
		return printIDs(ctx, st, store.KeyChannels, os.Stdout)
	})
}

type addAdminCmd struct {
	id int64
}

func (*addAdminCmd) Name() string     { return "addAdmin" }
func (*addAdminCmd) Synopsis() string { return "Grant admin rights to a user." }
func (*addAdminCmd) Usage() string {
	return `addAdmin -id <userID>:
  Add a user to the stored admin set.
`
}

func (c *addAdminCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Telegram user id")
}

func (c *addAdminCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == 0 {
		f.PrintDefaults()
		return subcommands.ExitUsageError
	}
	return withStore(ctx, "add admin", func(ctx context.Context, st store.Store, log zerolog.Logger) error {
		return addAdmin(ctx, st, c.id, log)
	})
}

type removeChannelCmd struct {
	id int64
}

func (*removeChannelCmd) Name() string     { return "removeChannel" }
func (*removeChannelCmd) Synopsis() string { return "Remove a channel from the registry." }
func (*removeChannelCmd) Usage() string {
	return `removeChannel -id <chatID>:
  Remove a channel from the stored channel set.
`
}

func (c *removeChannelCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Telegram chat id")
}

func (c *removeChannelCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == 0 {
		f.PrintDefaults()
		return subcommands.ExitUsageError
	}
	return withStore(ctx, "remove channel", func(ctx context.Context, st store.Store, log zerolog.Logger) error {
		return removeChannel(ctx, st, c.id, log)
	})
}
