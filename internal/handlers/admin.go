package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain"
	"taskboard/internal/dto"
	"taskboard/internal/service"
)

// AdminHandler serves the admin-only surface.
type AdminHandler struct {
	userSvc *service.UserService
}

func NewAdminHandler(userSvc *service.UserService) *AdminHandler {
	return &AdminHandler{userSvc: userSvc}
}

// ListUsers godoc
// @Summary      List user accounts
// @Tags         admin
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListUsersResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users := h.userSvc.List(c.Request.Context())
	out := make([]dto.UserResponse, len(users))
	for i := range users {
		out[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, dto.ListUsersResponse{Items: out})
}

func userToResponse(u domain.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Username: u.Username, Role: string(u.Role)}
}
