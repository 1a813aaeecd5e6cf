package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutuna/heraldbot/internals/config"
	"github.com/tutuna/heraldbot/internals/database"
	"github.com/tutuna/heraldbot/internals/store"
)

func TestOpenStore_Memory(t *testing.T) {
	st, closeStore, err := openStore(&config.Config{Store: config.StoreMemory}, zerolog.Nop())
	require.NoError(t, err)
	defer closeStore()
	assert.IsType(t, &store.Memory{}, st)
}

func TestOpenStore_File(t *testing.T) {
	dir := t.TempDir()
	st, closeStore, err := openStore(&config.Config{Store: config.StoreFile, DataDir: dir}, zerolog.Nop())
	require.NoError(t, err)
	defer closeStore()

	ctx := context.Background()
	require.NoError(t, st.Save(ctx, store.KeyChannels, []int64{3, 1}))
	assert.FileExists(t, filepath.Join(dir, "channels.json"))
}

func TestOpenStore_Sqlite(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreDB,
		Db:    database.DbParams{Type: database.DbTypeSqlite, File: filepath.Join(t.TempDir(), "herald.db")},
	}
	st, closeStore, err := openStore(cfg, zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, st.Save(ctx, store.KeyAdmins, []int64{5}))
	ids, found, err := st.Load(ctx, store.KeyAdmins)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int64{5}, ids)
	assert.NoError(t, closeStore())
}

func TestOpenStore_BadDatabaseConfig(t *testing.T) {
	cfg := &config.Config{Store: config.StoreDB, Db: database.DbParams{Type: database.DbTypePostgres}}
	_, _, err := openStore(cfg, zerolog.Nop())
	assert.EqualError(t, err, "DSN is required for postgres")
}

func TestPrintIDs(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	var buf bytes.Buffer
	require.NoError(t, printIDs(ctx, st, store.KeyChannels, &buf))
	assert.Equal(t, "no channels stored yet\n", buf.String())

	require.NoError(t, st.Save(ctx, store.KeyChannels, []int64{-200, -100}))
	buf.Reset()
	require.NoError(t, printIDs(ctx, st, store.KeyChannels, &buf))
	assert.Equal(t, "-200\n-100\n", buf.String())
}

func TestAddAdmin(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	require.NoError(t, addAdmin(ctx, st, 7, zerolog.Nop()))
	require.NoError(t, addAdmin(ctx, st, 3, zerolog.Nop()))

	ids, _, err := st.Load(ctx, store.KeyAdmins)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 7}, ids)
}

func TestRemoveChannel(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.Save(ctx, store.KeyChannels, []int64{-100, -200}))

	require.NoError(t, removeChannel(ctx, st, -100, zerolog.Nop()))
	assert.EqualError(t, removeChannel(ctx, st, -100, zerolog.Nop()), "channel -100 is not registered")

	ids, _, err := st.Load(ctx, store.KeyChannels)
	require.NoError(t, err)
	assert.Equal(t, []int64{-200}, ids)
}
