package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestFileStore_MissingBlob(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	ids, found, err := s.Load(context.Background(), KeyAdmins)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, ids)
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, KeyChannels, []int64{-1002, 300, -1001}))

	raw, err := os.ReadFile(filepath.Join(dir, "channels.json"))
	require.NoError(t, err)
	assert.Equal(t, "[-1002,-1001,300]", string(raw), "blob should be a sorted JSON array")

	ids, found, err := s.Load(ctx, KeyChannels)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int64{-1002, -1001, 300}, ids)

	_, err = os.Stat(filepath.Join(dir, "channels.json.tmp"))
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestFileStore_EmptySetIsFound(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, KeyChannels, nil))
	ids, found, err := s.Load(ctx, KeyChannels)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, ids)
}

func TestFileStore_CorruptBlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "admins.json"), []byte("[1,"), 0o600))
	s, err := NewFileStore(dir, zerolog.Nop())
	require.NoError(t, err)

	_, found, err := s.Load(context.Background(), KeyAdmins)
	assert.Error(t, err)
	assert.True(t, found)
	assert.Contains(t, err.Error(), "decode admins")
}

func TestFileStore_CancelledContext(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Save(ctx, KeyAdmins, []int64{1}), context.Canceled)
}

func newSqliteStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "Failed to connect to database")
	s, err := NewGormStore(db)
	require.NoError(t, err)
	return s
}

func TestGormStore_RoundTripAndUpsert(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()

	_, found, err := s.Load(ctx, KeyAdmins)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Save(ctx, KeyAdmins, []int64{7, 3}))
	require.NoError(t, s.Save(ctx, KeyAdmins, []int64{9}))

	ids, found, err := s.Load(ctx, KeyAdmins)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int64{9}, ids, "second save should replace the blob")

	var count int64
	require.NoError(t, s.db.Table("blobs").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormStore_KeysAreIndependent(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, KeyAdmins, []int64{1}))
	require.NoError(t, s.Save(ctx, KeyChannels, []int64{-100, -200}))

	admins, _, err := s.Load(ctx, KeyAdmins)
	require.NoError(t, err)
	channels, _, err := s.Load(ctx, KeyChannels)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, admins)
	assert.Equal(t, []int64{-200, -100}, channels)
}

func TestNewGormStore_NilDB(t *testing.T) {
	s, err := NewGormStore(nil)
	assert.Error(t, err)
	assert.Nil(t, s)
}

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("Failed to open GORM DB: %v", err)
	}
	// skip AutoMigrate, the mock has no schema
	return &GormStore{db: gormDB}, mock
}

func TestGormStore_Mock_LoadDecodes(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"name", "value", "updated_at"}).
		AddRow("channels", "[-100,-200]", time.Now())
	mock.ExpectQuery("^SELECT (.+) FROM `blobs`").WillReturnRows(rows)

	ids, found, err := s.Load(context.Background(), KeyChannels)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int64{-100, -200}, ids)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %s", err)
	}
}

func TestGormStore_Mock_LoadNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("^SELECT (.+) FROM `blobs`").
		WillReturnRows(sqlmock.NewRows([]string{"name", "value", "updated_at"}))

	ids, found, err := s.Load(context.Background(), KeyAdmins)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, ids)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %s", err)
	}
}

func TestGormStore_Mock_LoadError(t *testing.T) {
	s, mock := newMockStore(t)

	expectedErr := errors.New("database connection failed")
	mock.ExpectQuery("^SELECT (.+) FROM `blobs`").WillReturnError(expectedErr)

	_, _, err := s.Load(context.Background(), KeyAdmins)
	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), "load admins")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %s", err)
	}
}

func TestGormStore_Mock_SaveUpserts(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `blobs` (.+) ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, s.Save(context.Background(), KeyAdmins, []int64{2, 1}))

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %s", err)
	}
}

func TestGormStore_Mock_SaveError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `blobs`").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.Save(context.Background(), KeyChannels, []int64{1})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "save channels")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %s", err)
	}
}

func TestMemory_SaveErr(t *testing.T) {
	m := NewMemory()
	m.SaveErr = errors.New("boom")
	assert.EqualError(t, m.Save(context.Background(), KeyAdmins, []int64{1}), "boom")
	_, found, _ := m.Load(context.Background(), KeyAdmins)
	assert.False(t, found)
}
