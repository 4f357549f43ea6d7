package database

import (
	"github.com/google/wire"
	"gorm.io/gorm"
)

// ProviderSet provides database dependencies.
var ProviderSet = wire.NewSet(ProvideDatabase, ProvideIDatabase)

// ProvideDatabase provides the raw gorm connection.
func ProvideDatabase(cfg Database) (*gorm.DB, error) {
	return NewDatabase(cfg)
}

// ProvideIDatabase provides the IDatabase interface instance.
func ProvideIDatabase(db *gorm.DB) IDatabase {
	return NewGormDB(db)
}
