package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/whitfield-edu/engagement-api/internal/middleware"
	"github.com/whitfield-edu/engagement-api/internal/models"
	"github.com/whitfield-edu/engagement-api/internal/service"
)

// Handlers bundles the API handlers for route registration.
type Handlers struct {
	Auth       *AuthHandler
	Wellbeing  *WellbeingHandler
	Meeting    *MeetingHandler
	Inbox      *InboxHandler
	Statistics *StatisticsHandler
	Report     *ReportHandler
	Metrics    *MetricsHandler
}

// RegisterRoutes mounts the API under the given prefix. Login, health and
// metrics stay outside the JWT guard.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, authService *service.AuthService, reportsEnabled bool) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	protected.POST("/auth/password", h.Auth.ChangePassword)
	protected.GET("/auth/me", h.Auth.Me)

	protected.POST("/wellbeing",
		middleware.RequireRoles(models.RoleStudent), h.Wellbeing.CheckIn)
	protected.GET("/students/:id/wellbeing",
		middleware.RBAC("SELF", string(models.RolePersonalSupervisor), string(models.RoleSeniorTutor)), h.Wellbeing.History)

	protected.POST("/meetings",
		middleware.RequireRoles(models.RoleStudent, models.RolePersonalSupervisor), h.Meeting.Book)
	protected.GET("/meetings", h.Meeting.Agenda)

	protected.GET("/inbox/unread", h.Inbox.Unread)
	protected.POST("/inbox/:id/read", h.Inbox.MarkRead)
	protected.POST("/inbox/messages", h.Inbox.SendMessage)
	protected.GET("/inbox/conversation/:userId", h.Inbox.Conversation)

	protected.GET("/students/:id/statistics",
		middleware.RBAC("SELF", string(models.RolePersonalSupervisor), string(models.RoleSeniorTutor)), h.Statistics.Student)
	protected.GET("/supervisors/me/overview",
		middleware.RequireRoles(models.RolePersonalSupervisor), h.Statistics.SupervisorOverview)
	protected.GET("/tutor/overview",
		middleware.RequireRoles(models.RoleSeniorTutor), h.Statistics.TutorOverview)

	if reportsEnabled {
		protected.GET("/reports/progress/:id",
			middleware.RBAC("SELF", string(models.RolePersonalSupervisor), string(models.RoleSeniorTutor)), h.Report.Progress)
	}
}
