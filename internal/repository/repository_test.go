package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard-api/internal/database"
	"github.com/yukikurage/taskboard-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
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
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func TestTaskRepository_FindByIDNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewTaskRepository(db).FindByID(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByIDScansPendingTasks(t *testing.T) {
	db, mock := setupMockDB(t)
	rows := sqlmock.NewRows([]string{"id", "name", "email", "pending_tasks", "date_created"}).
		AddRow("u1", "Alice", "a@x.com", `["t1","t2"]`, time.Now())
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\?").WillReturnRows(rows)

	user, err := NewUserRepository(db).FindByID(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, models.TaskIDs{"t1", "t2"}, user.PendingTasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_DeleteNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec("DELETE FROM `tasks` WHERE id = \\?").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewTaskRepository(db).Delete(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_UpdateManyRequiresFilter(t *testing.T) {
	db, mock := setupMockDB(t)

	_, err := NewTaskRepository(db).UpdateMany(context.Background(), nil, Patch{"completed": true})

	assert.ErrorIs(t, err, gorm.ErrMissingWhereClause)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_FindWithSliceFilterUsesIn(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE `tasks`.`id` IN \\(\\?,\\?\\)").
		WithArgs("t1", "t2").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tasks, err := NewTaskRepository(db).Find(context.Background(), Filter{"id": []string{"t1", "t2"}}, database.FindOptions{})

	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_TransactionReadsLockRows(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE id = \\?.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("t1", "Write report"))
	mock.ExpectCommit()

	tx, err := NewStore(db, WithRowLocking(true)).Begin(context.Background())
	require.NoError(t, err)

	task, err := tx.Tasks().FindByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Write report", task.Name)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_BeginFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	_, err := NewStore(db).Begin(context.Background())

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CommitDeadlockIsRetryable(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(deadlockErr)

	tx, err := NewStore(db).Begin(context.Background())
	require.NoError(t, err)

	err = tx.Commit()
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RollbackDiscardsWrites(t *testing.T) {
	db := setupSQLiteDB(t)
	store := NewStore(db)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Users().Create(ctx, &models.User{Name: "Alice", Email: "a@x.com"}))
	require.NoError(t, tx.Rollback())

	count, err := store.Users().Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTaskRepository_UpdateManyMatchesFilter(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	deadline := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, task := range []*models.Task{
		{ID: "t1", Name: "One", Deadline: deadline, AssignedUser: "u1", AssignedUserName: "Alice"},
		{ID: "t2", Name: "Two", Deadline: deadline, AssignedUser: "u1", AssignedUserName: "Alice"},
		{ID: "t3", Name: "Three", Deadline: deadline, AssignedUser: "u2", AssignedUserName: "Bob"},
	} {
		require.NoError(t, repo.Create(ctx, task))
	}

	affected, err := repo.UpdateMany(ctx, Filter{"assigned_user": "u1"}, Patch{"assigned_user_name": "Alicia"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	renamed, err := repo.Find(ctx, Filter{"assigned_user_name": "Alicia"}, database.FindOptions{
		Sort: []database.SortField{{Column: "id"}},
	})
	require.NoError(t, err)
	require.Len(t, renamed, 2)
	assert.Equal(t, "t1", renamed[0].ID)

	untouched, err := repo.FindByID(ctx, "t3")
	require.NoError(t, err)
	assert.Equal(t, "Bob", untouched.AssignedUserName)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Name: "Alice", Email: "a@x.com"}))
	err := repo.Create(ctx, &models.User{Name: "Other", Email: "a@x.com"})

	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))

	found, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)
}

func TestFindOptionsSkipAndLimit(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		require.NoError(t, repo.Create(ctx, &models.User{Name: email, Email: email}))
	}

	users, err := repo.Find(ctx, nil, database.FindOptions{
		Sort:  []database.SortField{{Column: "email", Desc: true}},
		Skip:  1,
		Limit: 1,
	})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "b@x.com", users[0].Email)
}
