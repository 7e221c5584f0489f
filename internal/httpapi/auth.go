package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"edulog/internal/auth"
	"edulog/internal/identity"
	"edulog/internal/queue"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues an access/refresh token pair.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.identity.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials! Please try again."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	tokens, err := h.issueTokens(c, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	h.publishAudit(c, queue.Message{Action: "login", UserID: user.ID})
	loginsTotal.Inc()

	resp := gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"role":          user.Role,
		"message":       "Login successful!",
	}
	if user.Role == identity.RoleStudent {
		resp["student_id"] = user.StudentID
		resp["student_name"] = user.Username
	}
	c.JSON(http.StatusOK, resp)
}

type registerRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	StudentID  string `json:"student_id"`
	Department string `json:"department"`
}

// RegisterUser creates an account. Validation problems come back as
// field-keyed errors in a 400 body.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": gin.H{"body": err.Error()}})
		return
	}

	err := h.identity.Register(c.Request.Context(), identity.RegisterInput{
		Email:      req.Email,
		Username:   req.Username,
		Password:   req.Password,
		Role:       req.Role,
		StudentID:  req.StudentID,
		Department: req.Department,
	})
	if err != nil {
		var fieldErrs identity.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": fieldErrs})
		case errors.Is(err, identity.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": gin.H{"email": "This email is already registered."}})
		case errors.Is(err, identity.ErrStudentIDTaken):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": gin.H{"student_id": "This student id is already registered."}})
		default:
			log.Printf("register failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "errors": gin.H{"detail": "registration failed"}})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "User registered"})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken rotates a refresh token: the presented token is revoked and
// blacklisted, and a fresh pair is issued. A replayed token is rejected.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := auth.Parse(req.RefreshToken, h.cfg.JWTSigningKey, h.cfg.JWTIssuer)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if h.blacklist.Revoked(c.Request.Context(), req.RefreshToken) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
		return
	}
	stored, err := h.users.GetRefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token lookup failed"})
		return
	}
	if stored == nil || stored.Revoked {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), claims.UserID)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	if err := h.users.RevokeRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
		log.Printf("refresh revoke failed: %v", err)
	}
	if err := h.blacklist.Revoke(c.Request.Context(), req.RefreshToken, claims.ExpiresAt.Time); err != nil {
		log.Printf("refresh blacklist failed: %v", err)
	}

	tokens, err := h.issueTokens(c, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout records a logout audit event and revokes the presented refresh
// token when one is supplied.
func (h *Handler) Logout(c *gin.Context) {
	claims := auth.FromContext(c)

	var req logoutRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken != "" {
		if parsed, err := auth.Parse(req.RefreshToken, h.cfg.JWTSigningKey, h.cfg.JWTIssuer); err == nil {
			_ = h.users.RevokeRefreshToken(c.Request.Context(), req.RefreshToken)
			_ = h.blacklist.Revoke(c.Request.Context(), req.RefreshToken, parsed.ExpiresAt.Time)
		}
	}

	h.publishAudit(c, queue.Message{Action: "logout", UserID: claims.UserID})
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}

func (h *Handler) issueTokens(c *gin.Context, user *identity.User) (auth.TokenPair, error) {
	studentID := ""
	if user.StudentID != nil {
		studentID = *user.StudentID
	}
	tokens, err := auth.Issue(user.ID, user.Role, studentID, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL, h.cfg.RefreshTTL)
	if err != nil {
		return auth.TokenPair{}, err
	}
	if err := h.users.SaveRefreshToken(c.Request.Context(), identity.RefreshToken{
		Token:     tokens.RefreshToken,
		UserID:    user.ID,
		ExpiresAt: tokens.RefreshExp,
	}); err != nil {
		log.Printf("save refresh token failed: %v", err)
	}
	return tokens, nil
}

func (h *Handler) publishAudit(c *gin.Context, msg queue.Message) {
	if h.queue == nil {
		return
	}
	if err := h.queue.Publish(c.Request.Context(), msg); err != nil {
		log.Printf("queue publish failed: %v", err)
	}
}
