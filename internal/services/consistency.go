package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
)

type cascadeKind int

const (
	// addPendingTask adds TaskIDs[0] to UserID's pendingTasks.
	addPendingTask cascadeKind = iota
	// removePendingTask removes TaskIDs[0] from UserID's pendingTasks; a
	// missing user is ignored.
	removePendingTask
	// assignTasks points TaskIDs at UserID/UserName.
	assignTasks
	// unassignTasks clears TaskIDs that still point at UserID.
	unassignTasks
	// unassignAllTasks clears every task that points at UserID.
	unassignAllTasks
	// renameAllTasks rewrites assignedUserName on every task that points at UserID.
	renameAllTasks
)

func (k cascadeKind) String() string {
	switch k {
	case addPendingTask:
		return "add_pending_task"
	case removePendingTask:
		return "remove_pending_task"
	case assignTasks:
		return "assign_tasks"
	case unassignTasks:
		return "unassign_tasks"
	case unassignAllTasks:
		return "unassign_all_tasks"
	case renameAllTasks:
		return "rename_all_tasks"
	default:
		return fmt.Sprintf("cascade(%d)", int(k))
	}
}

// CascadeWrite is one secondary write against the collection the mutation
// did not target.
type CascadeWrite struct {
	Kind     cascadeKind
	UserID   string
	UserName string
	TaskIDs  []string
}

func (w CascadeWrite) String() string {
	return fmt.Sprintf("%s user=%s tasks=[%s]", w.Kind, w.UserID, strings.Join(w.TaskIDs, ","))
}

// CascadePlan is the ordered list of secondary writes that restores the
// task/user invariants after one primary write. It is computed from state
// read inside the transaction and applied in that same transaction.
type CascadePlan struct {
	Writes []CascadeWrite
}

func (p *CascadePlan) add(w CascadeWrite) {
	p.Writes = append(p.Writes, w)
}

// Len returns the number of planned writes.
func (p *CascadePlan) Len() int {
	return len(p.Writes)
}

// Apply performs the planned writes in order. The first failure stops the
// plan; the caller must abort the transaction.
func (p *CascadePlan) Apply(ctx context.Context, tx repository.Tx) error {
	for _, w := range p.Writes {
		if err := applyCascadeWrite(ctx, tx, w); err != nil {
			return fmt.Errorf("cascade %s: %w", w, err)
		}
	}
	return nil
}

func applyCascadeWrite(ctx context.Context, tx repository.Tx, w CascadeWrite) error {
	switch w.Kind {
	case addPendingTask:
		user, err := tx.Users().FindByID(ctx, w.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return apierrors.NewValidationError("assigned user does not exist")
		}
		if err != nil {
			return err
		}
		if user.PendingTasks.Contains(w.TaskIDs[0]) {
			return nil
		}
		return tx.Users().Update(ctx, w.UserID, repository.Patch{
			models.UserColumnPendingTasks: user.PendingTasks.With(w.TaskIDs[0]),
		})

	case removePendingTask:
		user, err := tx.Users().FindByID(ctx, w.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !user.PendingTasks.Contains(w.TaskIDs[0]) {
			return nil
		}
		return tx.Users().Update(ctx, w.UserID, repository.Patch{
			models.UserColumnPendingTasks: user.PendingTasks.Without(w.TaskIDs[0]),
		})

	case assignTasks:
		_, err := tx.Tasks().UpdateMany(ctx, repository.Filter{
			models.TaskColumnID: w.TaskIDs,
		}, repository.Patch{
			models.TaskColumnAssignedUser:     w.UserID,
			models.TaskColumnAssignedUserName: w.UserName,
		})
		return err

	case unassignTasks:
		_, err := tx.Tasks().UpdateMany(ctx, repository.Filter{
			models.TaskColumnID:           w.TaskIDs,
			models.TaskColumnAssignedUser: w.UserID,
		}, unassignPatch())
		return err

	case unassignAllTasks:
		_, err := tx.Tasks().UpdateMany(ctx, repository.Filter{
			models.TaskColumnAssignedUser: w.UserID,
		}, unassignPatch())
		return err

	case renameAllTasks:
		_, err := tx.Tasks().UpdateMany(ctx, repository.Filter{
			models.TaskColumnAssignedUser: w.UserID,
		}, repository.Patch{
			models.TaskColumnAssignedUserName: w.UserName,
		})
		return err

	default:
		return fmt.Errorf("unknown cascade kind %d", int(w.Kind))
	}
}

func unassignPatch() repository.Patch {
	return repository.Patch{
		models.TaskColumnAssignedUser:     "",
		models.TaskColumnAssignedUserName: models.UnassignedUserName,
	}
}

// planTaskWrite computes the cascade for creating (old == nil) or updating a
// task to next. It resolves next.AssignedUserName from the assigned user's
// current name and fails when that user does not exist.
//
// A task sits in its owner's pendingTasks exactly while it is assigned and not
// completed, so completing a task removes it from the list even when the
// owner does not change, and reopening it adds it back.
func planTaskWrite(ctx context.Context, tx repository.Tx, old *models.Task, next *models.Task) (*CascadePlan, error) {
	plan := &CascadePlan{}

	if next.AssignedUser != "" {
		user, err := tx.Users().FindByID(ctx, next.AssignedUser)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierrors.NewValidationError("assigned user does not exist")
		}
		if err != nil {
			return nil, err
		}
		next.AssignedUserName = user.Name
	} else {
		next.AssignedUserName = models.UnassignedUserName
	}

	if old != nil && old.AssignedUser != "" && (old.AssignedUser != next.AssignedUser || next.Completed) {
		plan.add(CascadeWrite{
			Kind:    removePendingTask,
			UserID:  old.AssignedUser,
			TaskIDs: []string{next.ID},
		})
	}

	if next.IsPending() {
		plan.add(CascadeWrite{
			Kind:    addPendingTask,
			UserID:  next.AssignedUser,
			TaskIDs: []string{next.ID},
		})
	}

	return plan, nil
}

// planTaskDelete computes the cascade for deleting task.
func planTaskDelete(task *models.Task) *CascadePlan {
	plan := &CascadePlan{}
	if task.AssignedUser != "" {
		plan.add(CascadeWrite{
			Kind:    removePendingTask,
			UserID:  task.AssignedUser,
			TaskIDs: []string{task.ID},
		})
	}
	return plan
}

// planUserCreate computes the cascade for inserting user with a pre-populated
// pendingTasks. Every listed task must exist, be open, and be unassigned.
// user.PendingTasks is de-duplicated in place.
func planUserCreate(ctx context.Context, tx repository.Tx, user *models.User) (*CascadePlan, error) {
	user.PendingTasks = models.UniqueTaskIDs(user.PendingTasks)
	plan := &CascadePlan{}
	if len(user.PendingTasks) == 0 {
		return plan, nil
	}

	tasks, err := loadClaimableTasks(ctx, tx, user.PendingTasks)
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		if task.AssignedUser != "" {
			return nil, apierrors.NewValidationError("task %s is already assigned to another user", task.ID)
		}
	}

	plan.add(CascadeWrite{
		Kind:     assignTasks,
		UserID:   user.ID,
		UserName: user.Name,
		TaskIDs:  user.PendingTasks.Strings(),
	})
	return plan, nil
}

// planUserUpdate computes the cascade for replacing old with next. A nil
// next.PendingTasks keeps the stored list. Tasks added to the list are
// claimed, taking them from any previous owner; tasks dropped from the list
// are unassigned; a rename is pushed to every task the user owns.
func planUserUpdate(ctx context.Context, tx repository.Tx, old *models.User, next *models.User) (*CascadePlan, error) {
	if next.PendingTasks == nil {
		next.PendingTasks = old.PendingTasks
	}
	next.PendingTasks = models.UniqueTaskIDs(next.PendingTasks)

	added := next.PendingTasks.Minus(old.PendingTasks)
	removed := old.PendingTasks.Minus(next.PendingTasks)

	plan := &CascadePlan{}

	if len(added) > 0 {
		tasks, err := loadClaimableTasks(ctx, tx, added)
		if err != nil {
			return nil, err
		}
		for _, task := range tasks {
			if task.AssignedUser != "" && task.AssignedUser != next.ID {
				plan.add(CascadeWrite{
					Kind:    removePendingTask,
					UserID:  task.AssignedUser,
					TaskIDs: []string{task.ID},
				})
			}
		}
	}

	if len(removed) > 0 {
		plan.add(CascadeWrite{
			Kind:    unassignTasks,
			UserID:  next.ID,
			TaskIDs: removed.Strings(),
		})
	}

	if len(added) > 0 {
		plan.add(CascadeWrite{
			Kind:     assignTasks,
			UserID:   next.ID,
			UserName: next.Name,
			TaskIDs:  added.Strings(),
		})
	}

	if old.Name != next.Name {
		plan.add(CascadeWrite{
			Kind:     renameAllTasks,
			UserID:   next.ID,
			UserName: next.Name,
		})
	}

	return plan, nil
}

// planUserDelete computes the cascade for deleting user: every task that
// points at the user is unassigned.
func planUserDelete(user *models.User) *CascadePlan {
	plan := &CascadePlan{}
	plan.add(CascadeWrite{
		Kind:   unassignAllTasks,
		UserID: user.ID,
	})
	return plan
}

// loadClaimableTasks reads ids inside tx and rejects the set if any task is
// missing or completed.
func loadClaimableTasks(ctx context.Context, tx repository.Tx, ids models.TaskIDs) ([]models.Task, error) {
	tasks, err := tx.Tasks().Find(ctx, repository.Filter{models.TaskColumnID: ids.Strings()}, findAll)
	if err != nil {
		return nil, err
	}

	found := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		found[task.ID] = struct{}{}
		if task.Completed {
			return nil, apierrors.NewValidationError("completed tasks cannot be pending: %s", task.ID)
		}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, apierrors.NewValidationError("pending task %s does not exist", id)
		}
	}

	return tasks, nil
}
