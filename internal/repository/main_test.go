package repository

import (
	"context"
	"testing"

	"conduit/internal/database"
	"conduit/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps every query on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func createArticle(t *testing.T, db *gorm.DB, author *models.User, slug string, tags ...string) *models.Article {
	t.Helper()
	if tags == nil {
		tags = []string{}
	}
	article := &models.Article{
		Slug:     slug,
		Title:    slug,
		Body:     "body of " + slug,
		TagList:  tags,
		AuthorID: author.ID,
	}
	require.NoError(t, NewArticleRepository(db).Create(context.Background(), article))
	return article
}

func uintPtr(v uint) *uint {
	return &v
}
