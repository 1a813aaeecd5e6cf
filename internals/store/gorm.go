package store

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tutuna/heraldbot/internals/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps blobs in the "blobs" table of any gorm database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the blobs table and returns a store on db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("database connection is nil")
	}
	if err := db.AutoMigrate(&models.Blob{}); err != nil {
		return nil, errors.Wrap(err, "migrate blobs")
	}
	return &GormStore{db: db}, nil
}

// Load reads the blob named key. A missing row is not an error.
func (s *GormStore) Load(ctx context.Context, key string) ([]int64, bool, error) {
	var blob models.Blob
	err := s.db.WithContext(ctx).Where("name = ?", key).Take(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "load %s", key)
	}
	ids, err := decodeIDs(key, []byte(blob.Value))
	if err != nil {
		return nil, true, err
	}
	return ids, true, nil
}

// Save inserts or replaces the blob named key.
func (s *GormStore) Save(ctx context.Context, key string, ids []int64) error {
	b, err := encodeIDs(ids)
	if err != nil {
		return err
	}
	blob := models.Blob{Name: key, Value: string(b)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&blob).Error
	if err != nil {
		return errors.Wrapf(err, "save %s", key)
	}
	return nil
}
