package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/dto"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns all users, or their number when count=true
func (h *UserHandler) ListUsers(c *gin.Context) {
	if wantsCount(c) {
		count, err := h.userService.CountUsers(c.Request.Context())
		if err != nil {
			apierrors.RespondWithError(c, err)
			return
		}
		apierrors.Respond(c, http.StatusOK, "OK", count)
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusOK, "OK", dto.ToUserDTOs(users))
}

// GetUser returns a specific user by ID
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusOK, "OK", dto.ToUserDTO(*user))
}

// CreateUser creates a new user
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req.ToDraft())
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusCreated, "User created!", dto.ToUserDTO(*user))
}

// UpdateUser replaces an existing user
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), c.Param("id"), req.ToDraft())
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusOK, "User updated!", dto.ToUserDTO(*user))
}

// DeleteUser deletes a user and unassigns its tasks
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
