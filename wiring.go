package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tutuna/heraldbot/internals/bot"
	"github.com/tutuna/heraldbot/internals/config"
	"github.com/tutuna/heraldbot/internals/database"
	"github.com/tutuna/heraldbot/internals/gateway"
	"github.com/tutuna/heraldbot/internals/registry"
	"github.com/tutuna/heraldbot/internals/store"
	"gopkg.in/telebot.v3"
)

// openStore builds the registry store selected by cfg. The returned close
// func releases the database connection, if any.
func openStore(cfg *config.Config, log zerolog.Logger) (store.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory store, nothing will be persisted")
		return store.NewMemory(), noop, nil
	case config.StoreDB:
		if _, err := database.Dialector(&cfg.Db); err != nil {
			return nil, nil, err
		}
		db := database.DbConnect(&cfg.Db)
		st, err := store.NewGormStore(db)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, errors.Wrap(err, "database handle")
		}
		log.Info().Str("db_type", string(cfg.Db.Type)).Msg("using database store")
		return st, sqlDB.Close, nil
	default:
		st, err := store.NewFileStore(cfg.DataDir, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dir", cfg.DataDir).Msg("using file store")
		return st, noop, nil
	}
}

// serve runs the bot until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}()

	b, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Token,
		Poller: &telebot.LongPoller{Timeout: cfg.PollTimeout},
		OnError: func(err error, c telebot.Context) {
			ev := log.Error().Err(err)
			if c != nil && c.Chat() != nil {
				ev = ev.Int64("chat_id", c.Chat().ID)
			}
			ev.Msg("update handler failed")
		},
	})
	if err != nil {
		return errors.Wrap(err, "create bot")
	}
	gw, err := gateway.NewTelegram(b, b.Me)
	if err != nil {
		return err
	}
	state, err := bot.NewState(ctx, st, gw, bot.Options{
		InitialAdmins:     cfg.InitialAdmins,
		Workers:           cfg.Workers,
		PruneOnQueryError: cfg.PruneOnQueryError,
	}, log)
	if err != nil {
		return err
	}
	bot.NewHandler(state, log).Register(ctx, b)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		b.Stop()
	}()
	log.Info().
		Str("bot", b.Me.Username).
		Int("admins", state.Admins.Len()).
		Int("channels", state.Channels.Len()).
		Msg("bot started")
	b.Start()
	return nil
}

func printIDs(ctx context.Context, st store.Store, key string, w io.Writer) error {
	ids, found, err := st.Load(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		_, err = fmt.Fprintf(w, "no %s stored yet\n", key)
		return err
	}
	for _, id := range ids {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	return nil
}

// addAdmin grants admin rights without a running bot. On a fresh store the
// id becomes the first admin.
func addAdmin(ctx context.Context, st store.Store, id int64, log zerolog.Logger) error {
	admins, err := registry.NewAdmins(ctx, st, []int64{id}, log)
	if err != nil {
		return err
	}
	return admins.Add(ctx, id)
}

func removeChannel(ctx context.Context, st store.Store, id int64, log zerolog.Logger) error {
	channels, err := registry.NewChannels(ctx, st, nil, registry.Policy{}, log)
	if err != nil {
		return err
	}
	if !channels.Contains(id) {
		return errors.Errorf("channel %d is not registered", id)
	}
	return channels.Remove(ctx, id)
}

// loadConfig reads the configuration and builds the logger. A broken
// configuration is reported on stderr since there is no logger yet.
func loadConfig() (*config.Config, zerolog.Logger, bool) {
	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return nil, zerolog.Nop(), false
	}
	return cfg, newLogger(cfg), true
}
