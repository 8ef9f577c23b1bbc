package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spareshop-api/dtos"
	"spareshop-api/services"
	"spareshop-api/utils/response"
)

type DashboardController struct {
	dashboard services.DashboardService
	users     services.UserService
}

func NewDashboardController(dashboard services.DashboardService, users services.UserService) *DashboardController {
	return &DashboardController{dashboard: dashboard, users: users}
}

func (dc *DashboardController) GetDashboard(c *gin.Context) {
	summary, err := dc.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (dc *DashboardController) GetUsers(c *gin.Context) {
	users, err := dc.users.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", users)
}

func (dc *DashboardController) GetAuditLogs(c *gin.Context) {
	var filter dtos.AuditLogFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, bindError(err))
		return
	}

	logs, meta, err := dc.users.ListAuditLogs(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "Success",
		"data":   logs,
		"meta":   meta,
	})
}
