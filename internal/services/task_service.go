package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/taskboard-api/internal/database"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
)

var findAll = database.FindOptions{}

// defaultListOptions orders listings by creation time so pages are stable.
var defaultListOptions = database.FindOptions{
	Sort: []database.SortField{{Column: "date_created"}, {Column: "id"}},
}

// TaskService handles task reads and the three task mutations
type TaskService struct {
	store repository.Store
	coord *Coordinator
}

// NewTaskService creates a new TaskService
func NewTaskService(store repository.Store, coord *Coordinator) *TaskService {
	return &TaskService{
		store: store,
		coord: coord,
	}
}

// ListTasks returns every task
func (s *TaskService) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.store.Tasks().Find(ctx, nil, defaultListOptions)
	if err != nil {
		return nil, apierrors.NewStoreError("list tasks", err, false)
	}
	return tasks, nil
}

// CountTasks returns the number of tasks
func (s *TaskService) CountTasks(ctx context.Context) (int64, error) {
	count, err := s.store.Tasks().Count(ctx, nil)
	if err != nil {
		return 0, apierrors.NewStoreError("count tasks", err, false)
	}
	return count, nil
}

// GetTask returns a task by ID
func (s *TaskService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.store.Tasks().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierrors.NewNotFoundError("Task")
		}
		return nil, apierrors.NewStoreError("find task", err, false)
	}
	return task, nil
}

// CreateTask inserts a task and, when it is assigned, lists it in the
// owner's pendingTasks.
func (s *TaskService) CreateTask(ctx context.Context, draft TaskDraft) (*models.Task, error) {
	fields, err := ValidateTaskFields(draft)
	if err != nil {
		return nil, err
	}

	var created *models.Task
	err = s.coord.run(ctx, "create_task", func(scope *txScope) error {
		task := &models.Task{ID: models.NewID()}
		fields.apply(task)

		scope.enter(phaseValidate)
		plan, err := planTaskWrite(ctx, scope.tx, nil, task)
		if err != nil {
			return err
		}

		scope.enter(phasePrimary)
		if err := scope.tx.Tasks().Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		scope.enter(phaseCascade)
		if err := plan.Apply(ctx, scope.tx); err != nil {
			return err
		}

		created = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTask replaces a task's fields and moves it between owners'
// pendingTasks as its assignment or completion changes.
func (s *TaskService) UpdateTask(ctx context.Context, id string, draft TaskDraft) (*models.Task, error) {
	fields, err := ValidateTaskFields(draft)
	if err != nil {
		return nil, err
	}

	var updated *models.Task
	err = s.coord.run(ctx, "update_task", func(scope *txScope) error {
		scope.enter(phaseValidate)
		old, err := scope.tx.Tasks().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierrors.NewNotFoundError("Task")
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		task := *old
		fields.apply(&task)

		plan, err := planTaskWrite(ctx, scope.tx, old, &task)
		if err != nil {
			return err
		}

		scope.enter(phasePrimary)
		if err := scope.tx.Tasks().Update(ctx, id, repository.Patch{
			"name":                            task.Name,
			"description":                     task.Description,
			"deadline":                        task.Deadline,
			models.TaskColumnCompleted:        task.Completed,
			models.TaskColumnAssignedUser:     task.AssignedUser,
			models.TaskColumnAssignedUserName: task.AssignedUserName,
		}); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		scope.enter(phaseCascade)
		if err := plan.Apply(ctx, scope.tx); err != nil {
			return err
		}

		updated = &task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTask removes a task and drops it from its owner's pendingTasks.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	return s.coord.run(ctx, "delete_task", func(scope *txScope) error {
		scope.enter(phaseValidate)
		task, err := scope.tx.Tasks().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierrors.NewNotFoundError("Task")
			}
			return fmt.Errorf("failed to find task: %w", err)
		}
		plan := planTaskDelete(task)

		scope.enter(phasePrimary)
		if err := scope.tx.Tasks().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierrors.NewNotFoundError("Task")
			}
			return fmt.Errorf("failed to delete task: %w", err)
		}

		scope.enter(phaseCascade)
		return plan.Apply(ctx, scope.tx)
	})
}
