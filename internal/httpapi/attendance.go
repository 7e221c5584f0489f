package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"edulog/internal/attendance"
	"edulog/internal/auth"
	"edulog/internal/identity"
	"edulog/internal/queue"
)

// ClockIn upserts today's ledger row for the caller.
func (h *Handler) ClockIn(c *gin.Context) {
	claims := auth.FromContext(c)
	result, err := h.att.ClockIn(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "clock-in failed"})
		return
	}
	clockInsTotal.Inc()
	c.JSON(http.StatusCreated, gin.H{
		"message":               "Clocked in successfully",
		"is_clocked_in":         true,
		"clock_in_time":         result.ClockInTime,
		"updated_present_count": result.PresentCount,
	})
}

// ClockOut closes today's ledger row for the caller.
func (h *Handler) ClockOut(c *gin.Context) {
	claims := auth.FromContext(c)
	clockOut, err := h.att.ClockOut(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, attendance.ErrNoRecordToday) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No attendance record found for today"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "clock-out failed"})
		return
	}
	clockOutsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{
		"message":        "Clocked out successfully",
		"clock_out_time": clockOut,
	})
}

// resolveStudent looks a user up by row id or student id and enforces that a
// student can only reach their own data while an admin can reach anyone's.
func (h *Handler) resolveStudent(c *gin.Context) *identity.User {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return nil
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return nil
	}
	claims := auth.FromContext(c)
	if !claims.IsAdmin() && claims.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil
	}
	return user
}

// ClockStatus reports whether the student is clocked in right now.
func (h *Handler) ClockStatus(c *gin.Context) {
	user := h.resolveStudent(c)
	if user == nil {
		return
	}
	clockedIn, err := h.att.IsClockedIn(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_clocked_in": clockedIn})
}

// StudentStats serves the per-student attendance counts and percentage.
func (h *Handler) StudentStats(c *gin.Context) {
	user := h.resolveStudent(c)
	if user == nil {
		return
	}
	stats, err := h.att.StatsForUser(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// StudentDetails serves a user profile.
func (h *Handler) StudentDetails(c *gin.Context) {
	user := h.resolveStudent(c)
	if user == nil {
		return
	}
	c.JSON(http.StatusOK, user)
}

// LoginLog appends a login entry to the audit trail via the queue.
func (h *Handler) LoginLog(c *gin.Context) {
	claims := auth.FromContext(c)
	h.publishAudit(c, queue.Message{Action: "login", UserID: claims.UserID})
	c.JSON(http.StatusCreated, gin.H{"message": "Login recorded."})
}

// LogoutLog appends a logout entry to the audit trail via the queue.
func (h *Handler) LogoutLog(c *gin.Context) {
	claims := auth.FromContext(c)
	h.publishAudit(c, queue.Message{Action: "logout", UserID: claims.UserID})
	c.JSON(http.StatusCreated, gin.H{"message": "Logout recorded."})
}

// recordDTO is the student-facing record shape with camelCase clock fields.
type recordDTO struct {
	ID           string  `json:"id"`
	StudentID    *string `json:"student_id"`
	StudentName  string  `json:"student_name"`
	Date         string  `json:"date"`
	Status       string  `json:"status"`
	ClockInTime  *string `json:"clockInTime"`
	ClockOutTime *string `json:"clockOutTime"`
}

func toRecordDTO(rec attendance.Record) recordDTO {
	return recordDTO{
		ID:           rec.ID,
		StudentID:    rec.StudentID,
		StudentName:  rec.StudentName,
		Date:         rec.Date,
		Status:       rec.Status,
		ClockInTime:  rec.ClockInTime,
		ClockOutTime: rec.ClockOutTime,
	}
}

// ListAttendanceRecords lists ledger rows newest first.
func (h *Handler) ListAttendanceRecords(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	records, err := h.att.ListRecords(c.Request.Context(), attendance.RecordFilter{Limit: limit})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	dtos := make([]recordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toRecordDTO(rec))
	}
	c.JSON(http.StatusOK, dtos)
}

type createRecordRequest struct {
	User         string  `json:"user" binding:"required"`
	Date         string  `json:"date" binding:"required"`
	Status       string  `json:"status"`
	ClockInTime  *string `json:"clock_in_time"`
	ClockOutTime *string `json:"clock_out_time"`
}

// CreateAttendanceRecord inserts a ledger row for an arbitrary user/date.
func (h *Handler) CreateAttendanceRecord(c *gin.Context) {
	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != "" && !attendance.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), req.User)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if user == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown user"})
		return
	}
	rec, err := h.att.CreateRecord(c.Request.Context(), attendance.Record{
		UserID:       user.ID,
		Date:         req.Date,
		Status:       req.Status,
		ClockInTime:  req.ClockInTime,
		ClockOutTime: req.ClockOutTime,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrDuplicateRecord) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, toRecordDTO(rec))
}

// GetAttendanceRecord returns one ledger row.
func (h *Handler) GetAttendanceRecord(c *gin.Context) {
	rec, err := h.att.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Attendance record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, toRecordDTO(*rec))
}

type updateRecordRequest struct {
	Date         *string `json:"date"`
	Status       *string `json:"status"`
	ClockInTime  *string `json:"clock_in_time"`
	ClockOutTime *string `json:"clock_out_time"`
}

// UpdateAttendanceRecord applies a partial update. The owning user and the
// joined student fields are immutable; "late" can only be set here.
func (h *Handler) UpdateAttendanceRecord(c *gin.Context) {
	var req updateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != nil && !attendance.ValidStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	rec, err := h.att.UpdateRecord(c.Request.Context(), c.Param("id"), attendance.RecordUpdate{
		Date:         req.Date,
		Status:       req.Status,
		ClockInTime:  req.ClockInTime,
		ClockOutTime: req.ClockOutTime,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Attendance record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, toRecordDTO(*rec))
}

// DeleteAttendanceRecord removes a ledger row.
func (h *Handler) DeleteAttendanceRecord(c *gin.Context) {
	if err := h.att.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Attendance record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// AdminListAttendance lists student ledger rows with an optional date range.
func (h *Handler) AdminListAttendance(c *gin.Context) {
	records, err := h.att.ListRecords(c.Request.Context(), attendance.RecordFilter{
		FromDate:     c.Query("from_date"),
		ToDate:       c.Query("to_date"),
		StudentsOnly: true,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	c.JSON(http.StatusOK, records)
}
