package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/models"
)

// TaskDraft is a requested task state as received from a client. Deadline
// and Completed keep their raw decoded JSON form until validated.
type TaskDraft struct {
	Name         string
	Description  string
	Deadline     any
	Completed    any
	AssignedUser string
}

// UserDraft is a requested user state. A nil PendingTasks on update leaves
// the stored list untouched; an empty non-nil slice clears it.
type UserDraft struct {
	Name         string
	Email        string
	PendingTasks []string
}

// TaskFields is a TaskDraft that passed ValidateTaskFields.
type TaskFields struct {
	Name         string
	Description  string
	Deadline     time.Time
	Completed    bool
	AssignedUser string
}

// apply copies the validated fields onto task, leaving identity and the
// derived assignedUserName alone.
func (f TaskFields) apply(task *models.Task) {
	task.Name = f.Name
	task.Description = f.Description
	task.Deadline = f.Deadline
	task.Completed = f.Completed
	task.AssignedUser = f.AssignedUser
}

// UserFields is a UserDraft that passed ValidateUserFields.
type UserFields struct {
	Name         string
	Email        string
	PendingTasks []string
}

const (
	minDeadlineYear = 0
	maxDeadlineYear = 9999
)

var deadlineLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ValidateTaskFields checks the structural requirements of a task draft and
// coerces completed and deadline. It never touches the store.
func ValidateTaskFields(draft TaskDraft) (TaskFields, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" || isEmptyValue(draft.Deadline) {
		return TaskFields{}, apierrors.NewValidationError("name and deadline required")
	}

	completed, err := parseCompleted(draft.Completed)
	if err != nil {
		return TaskFields{}, err
	}

	deadline, err := parseDeadline(draft.Deadline)
	if err != nil {
		return TaskFields{}, err
	}

	return TaskFields{
		Name:         name,
		Description:  draft.Description,
		Deadline:     deadline,
		Completed:    completed,
		AssignedUser: strings.TrimSpace(draft.AssignedUser),
	}, nil
}

// ValidateUserFields checks the structural requirements of a user draft.
func ValidateUserFields(draft UserDraft) (UserFields, error) {
	name := strings.TrimSpace(draft.Name)
	email := strings.TrimSpace(draft.Email)
	if name == "" || email == "" {
		return UserFields{}, apierrors.NewValidationError("name and email required")
	}

	return UserFields{
		Name:         name,
		Email:        email,
		PendingTasks: draft.PendingTasks,
	}, nil
}

func isEmptyValue(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(value) == ""
	default:
		return false
	}
}

func parseCompleted(v any) (bool, error) {
	switch value := v.(type) {
	case nil:
		return false, nil
	case bool:
		return value, nil
	case string:
		switch value {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, apierrors.NewValidationError("completed must be boolean")
}

// parseDeadline accepts a time, a unix millisecond number, or a string in
// one of deadlineLayouts or integer milliseconds. Only years 0000-9999 are
// accepted since the stores cannot round-trip anything else.
func parseDeadline(v any) (time.Time, error) {
	var deadline time.Time
	switch value := v.(type) {
	case time.Time:
		deadline = value
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) || value < math.MinInt64 || value >= math.MaxInt64 {
			return time.Time{}, errInvalidDeadline()
		}
		deadline = time.UnixMilli(int64(value)).UTC()
	case string:
		parsed, ok := parseDeadlineString(strings.TrimSpace(value))
		if !ok {
			return time.Time{}, errInvalidDeadline()
		}
		deadline = parsed
	default:
		return time.Time{}, errInvalidDeadline()
	}

	if year := deadline.Year(); year < minDeadlineYear || year > maxDeadlineYear {
		return time.Time{}, errInvalidDeadline()
	}
	return deadline, nil
}

func parseDeadlineString(raw string) (time.Time, bool) {
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

func errInvalidDeadline() error {
	return apierrors.NewValidationError("deadline must be a valid date")
}
