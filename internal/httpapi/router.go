package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"edulog/internal/auth"
)

// Register mounts every route on the engine. Authenticated routes carry the
// bearer-token middleware; admin routes additionally require the admin role.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/login", h.Login)
	api.POST("/register", h.RegisterUser)
	api.POST("/token/refresh", h.RefreshToken)

	authed := api.Group("", auth.RequireAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))
	{
		authed.POST("/logout", h.Logout)

		authed.POST("/attendance/clock-in", h.ClockIn)
		authed.POST("/attendance/clock-out", h.ClockOut)
		authed.GET("/attendance/:student_id", h.StudentStats)
		authed.GET("/attendance/:student_id/status", h.ClockStatus)
		authed.POST("/attendance/login_log", h.LoginLog)
		authed.POST("/attendance/logout_log", h.LogoutLog)

		authed.GET("/attendance/stats/total-students", h.TotalStudents)
		authed.GET("/attendance/stats/attendance-today", h.AttendanceToday)
		authed.GET("/attendance/stats/absent-students", h.AbsentStudents)
		authed.GET("/attendance/stats/percentage", h.AttendancePercentage)
		authed.GET("/students/stats/department-wise", h.DepartmentStats)
		authed.GET("/students/:student_id/details", h.StudentDetails)

		authed.GET("/attendance/records", h.ListAttendanceRecords)
		authed.POST("/attendance/records", h.CreateAttendanceRecord)
		authed.GET("/attendance/records/:id", h.GetAttendanceRecord)
		authed.PUT("/attendance/records/:id", h.UpdateAttendanceRecord)

		authed.GET("/events", h.ListEvents)
		authed.POST("/events", h.CreateEvent)
		authed.GET("/events/upcoming", h.UpcomingEvents)
		authed.GET("/events/:id", h.GetEvent)
		authed.PUT("/events/:id", h.UpdateEvent)
		authed.DELETE("/events/:id", h.DeleteEvent)
	}

	admin := authed.Group("", auth.RequireAdmin())
	{
		admin.GET("/attendance/reports", h.StudentReport)
		admin.GET("/attendance/reports/filters", h.ReportFilterOptions)
		admin.GET("/attendance/reports/students", h.StudentSearch)
		admin.GET("/attendance/recent-logs", h.RecentAttendance)
		admin.GET("/attendance/logs", h.ListAuditLogs)
		admin.PUT("/attendance/update/:id", h.UpdateAttendanceRecord)

		admin.GET("/admin/attendance", h.AdminListAttendance)
		admin.DELETE("/admin/attendance/:id", h.DeleteAttendanceRecord)

		admin.GET("/departments", h.ListDepartments)
		admin.POST("/departments", h.CreateDepartment)
		admin.GET("/departments/:id", h.GetDepartment)
		admin.PUT("/departments/:id", h.UpdateDepartment)
		admin.DELETE("/departments/:id", h.DeleteDepartment)
	}
}
