package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard-api/internal/database"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type serviceTestEnv struct {
	db    *gorm.DB
	store *repository.GormStore
	coord *Coordinator
	tasks *TaskService
	users *UserService
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
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

	store := repository.NewStore(db)
	coord := NewCoordinator(store, zerolog.Nop(), 3)

	return &serviceTestEnv{
		db:    db,
		store: store,
		coord: coord,
		tasks: NewTaskService(store, coord),
		users: NewUserService(store, coord),
	}
}

func (env *serviceTestEnv) createUser(t *testing.T, name, email string, pending ...string) *models.User {
	t.Helper()
	draft := UserDraft{Name: name, Email: email}
	if len(pending) > 0 {
		draft.PendingTasks = pending
	}
	user, err := env.users.CreateUser(context.Background(), draft)
	require.NoError(t, err)
	return user
}

func (env *serviceTestEnv) createTask(t *testing.T, name, assignedUser string) *models.Task {
	t.Helper()
	task, err := env.tasks.CreateTask(context.Background(), TaskDraft{
		Name:         name,
		Deadline:     "2024-01-01",
		AssignedUser: assignedUser,
	})
	require.NoError(t, err)
	return task
}

func (env *serviceTestEnv) getUser(t *testing.T, id string) *models.User {
	t.Helper()
	user, err := env.users.GetUser(context.Background(), id)
	require.NoError(t, err)
	return user
}

func (env *serviceTestEnv) getTask(t *testing.T, id string) *models.Task {
	t.Helper()
	task, err := env.tasks.GetTask(context.Background(), id)
	require.NoError(t, err)
	return task
}

// requireConsistent checks the task/user relationship invariants over the
// whole store.
func (env *serviceTestEnv) requireConsistent(t *testing.T) {
	t.Helper()

	var tasks []models.Task
	require.NoError(t, env.db.Find(&tasks).Error)
	var users []models.User
	require.NoError(t, env.db.Find(&users).Error)

	tasksByID := make(map[string]models.Task, len(tasks))
	for _, task := range tasks {
		tasksByID[task.ID] = task
	}
	usersByID := make(map[string]models.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	listed := make(map[string]int)
	for _, user := range users {
		require.Len(t, models.UniqueTaskIDs(user.PendingTasks), len(user.PendingTasks),
			"user %s has duplicate pending tasks", user.ID)
		for _, id := range user.PendingTasks {
			task, ok := tasksByID[id]
			require.True(t, ok, "user %s lists missing task %s", user.ID, id)
			require.Equal(t, user.ID, task.AssignedUser, "user %s lists task %s owned by %q", user.ID, id, task.AssignedUser)
			require.False(t, task.Completed, "user %s lists completed task %s", user.ID, id)
			listed[id]++
		}
	}

	for _, task := range tasks {
		if task.AssignedUser == "" {
			require.Equal(t, models.UnassignedUserName, task.AssignedUserName, "task %s", task.ID)
			require.Zero(t, listed[task.ID], "unassigned task %s is listed", task.ID)
			continue
		}

		owner, ok := usersByID[task.AssignedUser]
		require.True(t, ok, "task %s points at missing user %s", task.ID, task.AssignedUser)
		require.Equal(t, owner.Name, task.AssignedUserName, "task %s", task.ID)
		if task.Completed {
			require.Zero(t, listed[task.ID], "completed task %s is listed", task.ID)
		} else {
			require.Equal(t, 1, listed[task.ID], "pending task %s listed %d times", task.ID, listed[task.ID])
		}
	}
}
