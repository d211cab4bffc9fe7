package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/taskboard-api/internal/database"
	"github.com/yukikurage/taskboard-api/internal/models"
)

// ErrNotFound is returned by FindByID, FindByEmail and Delete when no record matches.
var ErrNotFound = errors.New("record not found")

// Filter selects records by column equality. A slice value selects records
// whose column is any of the listed values.
type Filter map[string]any

// Patch lists the columns to overwrite and their new values.
type Patch map[string]any

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// FindByID finds a task by ID
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// Find lists tasks matching filter
	Find(ctx context.Context, filter Filter, opts database.FindOptions) ([]models.Task, error)

	// Count counts tasks matching filter
	Count(ctx context.Context, filter Filter) (int64, error)

	// Create inserts a new task
	Create(ctx context.Context, task *models.Task) error

	// Update overwrites the patched columns of one task
	Update(ctx context.Context, id string, patch Patch) error

	// UpdateMany overwrites the patched columns of every task matching filter
	UpdateMany(ctx context.Context, filter Filter, patch Patch) (int64, error)

	// Delete removes a task
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Find lists users matching filter
	Find(ctx context.Context, filter Filter, opts database.FindOptions) ([]models.User, error)

	// Count counts users matching filter
	Count(ctx context.Context, filter Filter) (int64, error)

	// Create inserts a new user
	Create(ctx context.Context, user *models.User) error

	// Update overwrites the patched columns of one user
	Update(ctx context.Context, id string, patch Patch) error

	// Delete removes a user
	Delete(ctx context.Context, id string) error
}

// Store gives access to both collections outside a transaction and opens
// transaction scopes.
type Store interface {
	Tasks() TaskRepository
	Users() UserRepository

	// Begin opens a transaction scope. Every call made through the returned
	// Tx applies atomically on Commit and is discarded on Rollback.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is an open transaction scope. Rollback after Commit is a no-op that
// returns sql.ErrTxDone.
type Tx interface {
	Tasks() TaskRepository
	Users() UserRepository
	Commit() error
	Rollback() error
}
