package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/tutuna/heraldbot/internals/database"
)

// ErrMissingToken is the one configuration error the bot cannot start without.
var ErrMissingToken = errors.New("BOT_TOKEN not found in environment variables")

const (
	StoreFile   = "file"
	StoreDB     = "db"
	StoreMemory = "memory"
)

// Keys double as environment variable names (upper-cased) and as dotenv keys.
const (
	KeyToken             = "bot_token"
	KeyInitialAdmins     = "initial_admin_ids"
	KeyDataDir           = "herald_data_dir"
	KeyStore             = "herald_store"
	KeyDbType            = "herald_db_type"
	KeyDbFile            = "herald_db_file"
	KeyDbDSN             = "herald_db_dsn"
	KeyLogLevel          = "herald_log_level"
	KeyLogConsole        = "herald_log_console"
	KeyWorkers           = "herald_workers"
	KeyPruneOnQueryError = "herald_prune_on_query_error"
	KeyPollTimeout       = "herald_poll_timeout"
)

// Config is the resolved runtime configuration.
type Config struct {
	Token         string
	InitialAdmins []int64

	DataDir string
	Store   string
	Db      database.DbParams

	LogLevel   string
	LogConsole bool

	Workers           int
	PruneOnQueryError bool
	PollTimeout       time.Duration
}

// New returns a viper instance with defaults that reads the environment.
// envFile, if not empty and present, is read as a dotenv file; real
// environment variables take precedence over it.
func New(envFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(KeyDataDir, ".")
	v.SetDefault(KeyStore, StoreFile)
	v.SetDefault(KeyDbType, string(database.DbTypeSqlite))
	v.SetDefault(KeyDbFile, "heraldbot.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyPruneOnQueryError, true)
	v.SetDefault(KeyPollTimeout, 10*time.Second)
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(err, "read %s", envFile)
		}
	}
	return v, nil
}

// Load reads the configuration from the environment and envFile.
func Load(envFile string) (*Config, error) {
	v, err := New(envFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper builds a Config from v and validates the store selection.
func FromViper(v *viper.Viper) (*Config, error) {
	admins, err := ParseAdminIDs(v.GetString(KeyInitialAdmins))
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Token:         strings.TrimSpace(v.GetString(KeyToken)),
		InitialAdmins: admins,
		DataDir:       v.GetString(KeyDataDir),
		Store:         strings.ToLower(v.GetString(KeyStore)),
		Db: database.DbParams{
			Type: database.DbType(strings.ToLower(v.GetString(KeyDbType))),
			File: v.GetString(KeyDbFile),
			DSN:  v.GetString(KeyDbDSN),
		},
		LogLevel:          v.GetString(KeyLogLevel),
		LogConsole:        v.GetBool(KeyLogConsole),
		Workers:           v.GetInt(KeyWorkers),
		PruneOnQueryError: v.GetBool(KeyPruneOnQueryError),
		PollTimeout:       v.GetDuration(KeyPollTimeout),
	}
	switch cfg.Store {
	case StoreFile, StoreDB, StoreMemory:
	default:
		return nil, errors.Errorf("unknown HERALD_STORE %q", cfg.Store)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

// RequireToken fails with ErrMissingToken when no bot token is configured.
func (c *Config) RequireToken() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// ParseAdminIDs parses a comma separated id list. Empty items are skipped.
func ParseAdminIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "INITIAL_ADMIN_IDS: invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
