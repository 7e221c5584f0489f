package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"edulog/internal/attendance"
)

// TotalStudents serves the student headcount.
func (h *Handler) TotalStudents(c *gin.Context) {
	total, err := h.users.CountStudents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total})
}

// AttendanceToday serves today's campus-wide present percentage, 0 when
// there are no students.
func (h *Handler) AttendanceToday(c *gin.Context) {
	total, err := h.users.CountStudents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}
	pct, err := h.att.TodayPercentage(c.Request.Context(), total)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendancePercentage": pct})
}

// AbsentStudents serves today's explicit-absent count.
func (h *Handler) AbsentStudents(c *gin.Context) {
	n, err := h.att.AbsentToday(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"absentCount": n})
}

// AttendancePercentage serves every student's overall percentage.
func (h *Handler) AttendancePercentage(c *gin.Context) {
	rows, err := h.att.PercentageList(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	if rows == nil {
		rows = []attendance.PercentageRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// DepartmentStats serves per-department student headcounts.
func (h *Handler) DepartmentStats(c *gin.Context) {
	stats, err := h.users.DepartmentStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// StudentReport runs the filtered per-student report.
func (h *Handler) StudentReport(c *gin.Context) {
	rows, err := h.att.Report(c.Request.Context(), attendance.ReportFilter{
		StartDate:   c.Query("startDate"),
		EndDate:     c.Query("endDate"),
		Status:      c.Query("statusFilter"),
		Department:  c.Query("departmentFilter"),
		StudentName: c.Query("studentNameFilter"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}

	formatted := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		date := "N/A"
		if row.LatestDate != nil {
			date = *row.LatestDate
		}
		dept := "N/A"
		if row.Department != nil {
			dept = *row.Department
		}
		status := attendance.StatusAbsent
		if row.Present > 0 {
			status = attendance.StatusPresent
		}
		formatted = append(formatted, gin.H{
			"attendanceDate":       date,
			"studentName":          row.StudentName,
			"status":               status,
			"department":           dept,
			"attendancePercentage": row.Percentage,
		})
	}
	c.JSON(http.StatusOK, formatted)
}

// ReportFilterOptions serves the selectable report filters.
func (h *Handler) ReportFilterOptions(c *gin.Context) {
	depts, err := h.users.ListDepartments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	names := make([]string, 0, len(depts))
	for _, d := range depts {
		names = append(names, d.Name)
	}
	c.JSON(http.StatusOK, gin.H{
		"departments":    names,
		"status_choices": attendance.Statuses,
	})
}

// StudentSearch matches students by username or student id substring.
func (h *Handler) StudentSearch(c *gin.Context) {
	students, err := h.users.SearchStudents(c.Request.Context(), c.Query("q"), 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, students)
}

// RecentAttendance serves the newest ledger rows for the dashboard.
func (h *Handler) RecentAttendance(c *gin.Context) {
	rows, err := h.att.RecentRecords(c.Request.Context(), 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if rows == nil {
		rows = []attendance.RecentRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// ListAuditLogs serves the login/logout audit trail newest first.
func (h *Handler) ListAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	logs, err := h.att.ListLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if logs == nil {
		logs = []attendance.LogEntry{}
	}
	c.JSON(http.StatusOK, logs)
}
