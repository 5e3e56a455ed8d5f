package handler

import (
	"net/http"

	"reimburse/internal/middleware"
	"reimburse/internal/model"
	"reimburse/internal/service"
	"reimburse/pkg/pagination"
	"reimburse/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	{
		admin.POST("/users", h.CreateUser)
		admin.GET("/users", h.ListUsers)
	}
}

// CreateUser is the admin endpoint for provisioning Employee/Manager/
// Finance accounts and wiring up the manager relationship
func (h *UserHandler) CreateUser(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
		return
	}

	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), callerID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{
		"message": "User " + user.Name + " created.",
		"user_id": user.ID,
	}))
}

// ListUsers returns the company's users, paginated
func (h *UserHandler) ListUsers(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
		return
	}

	params := pagination.Parse(c)
	users, total, err := h.userService.ListUsers(c.Request.Context(), callerID, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   users,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}
