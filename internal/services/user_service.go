package services

import (
	"context"
	"errors"
	"fmt"

	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
)

var errEmailTaken = apierrors.NewValidationError("email already exists")

// UserService handles user reads and the three user mutations
type UserService struct {
	store repository.Store
	coord *Coordinator
}

// NewUserService creates a new UserService
func NewUserService(store repository.Store, coord *Coordinator) *UserService {
	return &UserService{
		store: store,
		coord: coord,
	}
}

// ListUsers returns every user
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users().Find(ctx, nil, defaultListOptions)
	if err != nil {
		return nil, apierrors.NewStoreError("list users", err, false)
	}
	return users, nil
}

// CountUsers returns the number of users
func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	count, err := s.store.Users().Count(ctx, nil)
	if err != nil {
		return 0, apierrors.NewStoreError("count users", err, false)
	}
	return count, nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierrors.NewNotFoundError("User")
		}
		return nil, apierrors.NewStoreError("find user", err, false)
	}
	return user, nil
}

// CreateUser inserts a user. Every task listed in pendingTasks must be open
// and unassigned; those tasks are assigned to the new user.
func (s *UserService) CreateUser(ctx context.Context, draft UserDraft) (*models.User, error) {
	fields, err := ValidateUserFields(draft)
	if err != nil {
		return nil, err
	}

	var created *models.User
	err = s.coord.run(ctx, "create_user", func(scope *txScope) error {
		user := &models.User{
			ID:           models.NewID(),
			Name:         fields.Name,
			Email:        fields.Email,
			PendingTasks: models.UniqueTaskIDs(fields.PendingTasks),
		}

		scope.enter(phaseValidate)
		if err := checkEmailAvailable(ctx, scope.tx, user.Email, ""); err != nil {
			return err
		}
		plan, err := planUserCreate(ctx, scope.tx, user)
		if err != nil {
			return err
		}

		scope.enter(phasePrimary)
		if err := scope.tx.Users().Create(ctx, user); err != nil {
			if repository.IsDuplicateKey(err) {
				return errEmailTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		scope.enter(phaseCascade)
		if err := plan.Apply(ctx, scope.tx); err != nil {
			return err
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateUser replaces a user's name, email and (when given) pendingTasks,
// reassigning tasks that enter or leave the list and pushing a rename to
// every task the user owns.
func (s *UserService) UpdateUser(ctx context.Context, id string, draft UserDraft) (*models.User, error) {
	fields, err := ValidateUserFields(draft)
	if err != nil {
		return nil, err
	}

	var updated *models.User
	err = s.coord.run(ctx, "update_user", func(scope *txScope) error {
		scope.enter(phaseValidate)
		old, err := scope.tx.Users().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierrors.NewNotFoundError("User")
			}
			return fmt.Errorf("failed to find user: %w", err)
		}

		user := *old
		user.Name = fields.Name
		user.Email = fields.Email
		user.PendingTasks = nil
		if fields.PendingTasks != nil {
			user.PendingTasks = models.TaskIDs(fields.PendingTasks)
		}

		if user.Email != old.Email {
			if err := checkEmailAvailable(ctx, scope.tx, user.Email, id); err != nil {
				return err
			}
		}
		plan, err := planUserUpdate(ctx, scope.tx, old, &user)
		if err != nil {
			return err
		}

		scope.enter(phasePrimary)
		if err := scope.tx.Users().Update(ctx, id, repository.Patch{
			models.UserColumnName:         user.Name,
			models.UserColumnEmail:        user.Email,
			models.UserColumnPendingTasks: user.PendingTasks,
		}); err != nil {
			if repository.IsDuplicateKey(err) {
				return errEmailTaken
			}
			return fmt.Errorf("failed to update user: %w", err)
		}

		scope.enter(phaseCascade)
		if err := plan.Apply(ctx, scope.tx); err != nil {
			return err
		}

		updated = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes a user and unassigns every task that pointed at it.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	return s.coord.run(ctx, "delete_user", func(scope *txScope) error {
		scope.enter(phaseValidate)
		user, err := scope.tx.Users().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierrors.NewNotFoundError("User")
			}
			return fmt.Errorf("failed to find user: %w", err)
		}
		plan := planUserDelete(user)

		scope.enter(phasePrimary)
		if err := scope.tx.Users().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierrors.NewNotFoundError("User")
			}
			return fmt.Errorf("failed to delete user: %w", err)
		}

		scope.enter(phaseCascade)
		return plan.Apply(ctx, scope.tx)
	})
}

// checkEmailAvailable fails when email belongs to a user other than selfID.
func checkEmailAvailable(ctx context.Context, tx repository.Tx, email, selfID string) error {
	existing, err := tx.Users().FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing.ID != selfID {
		return errEmailTaken
	}
	return nil
}
