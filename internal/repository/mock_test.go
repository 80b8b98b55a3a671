package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qs3c/crew_server/internal/model"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

var errConnReset = errors.New("connection reset by peer")

func TestInteractionRepository_Toggle_StorageFailureRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInteractionRepository(db, NewContentRegistry())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `resumes`.`id` FROM `resumes` .* FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec("UPDATE `likes`").WillReturnError(errConnReset)
	mock.ExpectRollback()

	_, err := repo.Toggle(context.Background(), model.KindLike, 7, 42, model.CategoryResume, true)
	assert.ErrorIs(t, err, errConnReset)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepository_Toggle_CounterFailureRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInteractionRepository(db, NewContentRegistry())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `resumes`.`id` FROM `resumes` .* FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec("UPDATE `likes`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `resumes` SET `like_count`=like_count \\+ \\?").WillReturnError(errConnReset)
	mock.ExpectRollback()

	_, err := repo.Toggle(context.Background(), model.KindLike, 7, 42, model.CategoryResume, true)
	assert.ErrorIs(t, err, errConnReset)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepository_Toggle_LockFailureRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInteractionRepository(db, NewContentRegistry())

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnError(errConnReset)
	mock.ExpectRollback()

	_, err := repo.Toggle(context.Background(), model.KindLike, 7, 42, model.CategoryResume, true)
	assert.ErrorIs(t, err, errConnReset)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepository_ContentExists_StorageFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInteractionRepository(db, NewContentRegistry())

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `sessions`").WillReturnError(errConnReset)

	_, err := repo.ContentExists(context.Background(), 1, model.CategorySession)
	assert.ErrorIs(t, err, errConnReset)
	assert.NoError(t, mock.ExpectationsWereMet())
}
