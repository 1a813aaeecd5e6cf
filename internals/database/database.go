package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DbType names a supported gorm driver.
type DbType string

const (
	DbTypeSqlite   DbType = "sqlite"
	DbTypePostgres DbType = "postgres"
	DbTypeMysql    DbType = "mysql"
)

// DbParams selects the driver and its connection target. File is used by
// sqlite, DSN by postgres and mysql.
type DbParams struct {
	Type DbType
	File string
	DSN  string
}

// Dialector returns the gorm dialector for params without opening a connection.
func Dialector(params *DbParams) (gorm.Dialector, error) {
	switch params.Type {
	case "", DbTypeSqlite:
		if params.File == "" {
			return nil, fmt.Errorf("database file path is required")
		}
		return sqlite.Open(params.File), nil
	case DbTypePostgres:
		if params.DSN == "" {
			return nil, fmt.Errorf("DSN is required for postgres")
		}
		return postgres.Open(params.DSN), nil
	case DbTypeMysql:
		if params.DSN == "" {
			return nil, fmt.Errorf("DSN is required for mysql")
		}
		return mysql.Open(params.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", params.Type)
	}
}

// DbConnect opens the database described by params. It panics on failure,
// it is only called during startup where a broken store is fatal anyway.
func DbConnect(params *DbParams) *gorm.DB {
	dialector, err := Dialector(params)
	if err != nil {
		panic(err.Error())
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		panic("failed to connect database: " + err.Error())
	}
	return db
}
