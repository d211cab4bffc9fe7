package dto

import (
	"time"

	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
)

// TaskRequest is the body of POST /api/tasks and PUT /api/tasks/:id.
// Deadline and Completed are decoded loosely and coerced by the service.
// AssignedUserName is accepted for compatibility but always derived.
type TaskRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	Deadline         any    `json:"deadline"`
	Completed        any    `json:"completed"`
	AssignedUser     string `json:"assignedUser"`
	AssignedUserName string `json:"assignedUserName"`
}

// ToDraft converts the request into a service draft
func (r TaskRequest) ToDraft() services.TaskDraft {
	return services.TaskDraft{
		Name:         r.Name,
		Description:  r.Description,
		Deadline:     r.Deadline,
		Completed:    r.Completed,
		AssignedUser: r.AssignedUser,
	}
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Deadline         time.Time `json:"deadline"`
	Completed        bool      `json:"completed"`
	AssignedUser     string    `json:"assignedUser"`
	AssignedUserName string    `json:"assignedUserName"`
	DateCreated      time.Time `json:"dateCreated"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:               task.ID,
		Name:             task.Name,
		Description:      task.Description,
		Deadline:         task.Deadline,
		Completed:        task.Completed,
		AssignedUser:     task.AssignedUser,
		AssignedUserName: task.AssignedUserName,
		DateCreated:      task.DateCreated,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}
