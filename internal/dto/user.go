package dto

import (
	"time"

	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
)

// UserRequest is the body of POST /api/users and PUT /api/users/:id.
// Omitting pendingTasks on update keeps the stored list.
type UserRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PendingTasks []string `json:"pendingTasks"`
}

// ToDraft converts the request into a service draft
func (r UserRequest) ToDraft() services.UserDraft {
	return services.UserDraft{
		Name:         r.Name,
		Email:        r.Email,
		PendingTasks: r.PendingTasks,
	}
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PendingTasks []string  `json:"pendingTasks"`
	DateCreated  time.Time `json:"dateCreated"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PendingTasks: user.PendingTasks.Strings(),
		DateCreated:  user.DateCreated,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}
	return items
}
