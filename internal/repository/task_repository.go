package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/taskboard-api/internal/database"
	"github.com/yukikurage/taskboard-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db        *gorm.DB
	lockReads bool
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// read returns a query that locks the selected rows when running inside a
// transaction that asked for row locking.
func (r *GormTaskRepository) read(ctx context.Context) *gorm.DB {
	query := r.db.WithContext(ctx)
	if r.lockReads {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return query
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.read(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// Find lists tasks matching filter
func (r *GormTaskRepository) Find(ctx context.Context, filter Filter, opts database.FindOptions) ([]models.Task, error) {
	tasks := []models.Task{}
	query := r.read(ctx).Model(&models.Task{})
	if len(filter) > 0 {
		query = query.Where(map[string]any(filter))
	}
	if err := query.Scopes(database.ApplyFindOptions(opts)).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Count counts tasks matching filter
func (r *GormTaskRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Task{})
	if len(filter) > 0 {
		query = query.Where(map[string]any(filter))
	}
	err := query.Count(&count).Error
	return count, err
}

// Create inserts a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// Update overwrites the patched columns of one task
func (r *GormTaskRepository) Update(ctx context.Context, id string, patch Patch) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Updates(map[string]any(patch)).Error
}

// UpdateMany overwrites the patched columns of every task matching filter
func (r *GormTaskRepository) UpdateMany(ctx context.Context, filter Filter, patch Patch) (int64, error) {
	if len(filter) == 0 {
		return 0, gorm.ErrMissingWhereClause
	}
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where(map[string]any(filter)).
		Updates(map[string]any(patch))
	return result.RowsAffected, result.Error
}

// Delete removes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
