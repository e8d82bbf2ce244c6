package database

import (
	"fmt"

	"github.com/google/uuid"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"jobtrail-backend/internal/model"
	"jobtrail-backend/internal/utilities"
)

// Exported seeded users shared by package tests.
var (
	TestUser1 model.User
	TestUser2 model.User

	// TestSeedPassword is the plain password of every seeded user.
	TestSeedPassword = "SeedPass123!"
)

// GetTestDB opens a fresh in-memory sqlite database, migrates the models and
// seeds two users. Each call returns an isolated database, so tests never
// observe each other's rows.
func GetTestDB() (*DBInstance, error) {
	// named in-memory database, shared across the pool but private to this
	// call
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	gdb, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if raw, err := gdb.DB(); err == nil {
		raw.SetMaxOpenConns(1)
	}

	db := FromGorm(gdb)
	if err := db.Migrate(); err != nil {
		return nil, err
	}

	if err := seedTestData(db); err != nil {
		return nil, err
	}

	return db, nil
}

// seedTestData inserts two users and assigns the exported variables.
func seedTestData(db *DBInstance) error {
	hashedPwd, err := utilities.HashPassword(TestSeedPassword)
	if err != nil {
		return err
	}

	users := []model.User{
		{ID: uuid.New(), Username: "tracker_user_1", Email: ptr("user1@example.com"), Password: hashedPwd},
		{ID: uuid.New(), Username: "tracker_user_2", Email: ptr("user2@example.com"), Password: hashedPwd},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	TestUser1 = users[0]
	TestUser2 = users[1]
	return nil
}

// ptr helper
func ptr[T any](v T) *T { return &v }
