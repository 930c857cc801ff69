package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/blogflow/backend/internal/models"
	"github.com/blogflow/backend/internal/utils"
)

type signupRequest struct {
	Email    string `json:"email" example:"alice@example.com" binding:"required"`
	Username string `json:"username" example:"alice" binding:"required"`
	Password string `json:"password" example:"Password123" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" example:"alice" binding:"required"`
	Password string `json:"password" example:"Password123" binding:"required"`
}

type simpleResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Operation successful"`
}

type conflictResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"Username already taken."`
	Reason  string `json:"reason" example:"USERNAME_TAKEN"`
}

// Signup godoc
// @Summary Register a new account
// @Description Create a username/password account and start a session for it
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body signupRequest true "Registration data"
// @Success 200 {object} map[string]interface{} "Account created and logged in"
// @Failure 400 {object} simpleResponse
// @Failure 409 {object} conflictResponse
// @Failure 500 {object} simpleResponse
// @Router /signup [post]
func (s *Server) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Invalid payload"})
	}
	// Sanitize and validate input
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = utils.SanitizeString(req.Username)
	req.Password = utils.SanitizeString(req.Password)

	if req.Email == "" || req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Email, username, and password are required."})
	}

	if !utils.ValidateEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Invalid email address format."})
	}

	if valid, msg := utils.ValidateUsername(req.Username); !valid {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: msg})
	}

	if valid, msg := utils.ValidatePassword(req.Password); !valid {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: msg})
	}

	// Both collision checks run before any write; when both collide the
	// username wins as the reported reason.
	usernameTaken, err := s.credentialExists("username = ?", req.Username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Unable to check existing accounts. Please try again."})
	}
	emailTaken, err := s.credentialExists("email = ?", req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Unable to check existing accounts. Please try again."})
	}
	if usernameTaken {
		return c.JSON(http.StatusConflict, conflictResponse{Success: false, Message: "Username already taken.", Reason: "USERNAME_TAKEN"})
	}
	if emailTaken {
		return c.JSON(http.StatusConflict, conflictResponse{Success: false, Message: "Email already registered.", Reason: "EMAIL_TAKEN"})
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Failed to create account."})
	}

	user := models.User{
		Email:    req.Email,
		Username: req.Username,
		Password: string(hash),
	}

	// Account row and session start commit together; a half-registered
	// account whose signup answered 500 must not exist.
	var token string
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		issued, err := utils.GenerateJWT(user.ID, user.Username, s.Cfg.JWTSecret, s.Cfg.JWTExpiry)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		user.LastLoginAt = &now
		user.SessionToken = &issued
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		token = issued
		return nil
	})
	if err != nil {
		// Unique indexes close the check-then-write race; the loser gets the
		// same conflict answer as if the check had caught it.
		if reason, ok := uniqueViolationReason(err); ok {
			message := "Username already taken."
			if reason == "EMAIL_TAKEN" {
				message = "Email already registered."
			}
			return c.JSON(http.StatusConflict, conflictResponse{Success: false, Message: message, Reason: reason})
		}
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Failed to save account."})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Account created.",
		"token":   token,
		"user": map[string]any{
			"id":       user.ID,
			"email":    user.Email,
			"username": user.Username,
		},
	})
}

// Login godoc
// @Summary User login
// @Description Authenticate by username or email and return a JWT. Every attempt is recorded.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body loginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{} "Login successful"
// @Failure 400 {object} simpleResponse
// @Failure 401 {object} simpleResponse
// @Failure 429 {object} simpleResponse
// @Failure 500 {object} simpleResponse
// @Router /login [post]
func (s *Server) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "Invalid payload"})
	}
	// The username field also accepts the account email.
	login := utils.SanitizeString(req.Username)
	password := utils.SanitizeString(req.Password)

	if login == "" || password == "" {
		return c.JSON(http.StatusBadRequest, simpleResponse{Success: false, Message: "All fields are required."})
	}

	ipAddress := clientIP(c)

	// Check for too many failed attempts
	if s.GetFailedAttemptsCount(login, ipAddress) >= 5 {
		return c.JSON(http.StatusTooManyRequests, simpleResponse{Success: false, Message: "Too many failed login attempts. Please try again later."})
	}

	var user models.User
	err := s.DB.Where("username = ? OR email = ?", login, login).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		// Store unreachable: neither granted nor denied.
		_ = s.RecordLoginAttempt(login, ipAddress, false)
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Unable to verify credentials. Please try again."})
	}

	granted := err == nil &&
		bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil

	// The attempt is recorded whatever the outcome; a failure to write the
	// audit row is its own error, not a denial.
	if logErr := s.RecordLoginAttempt(login, ipAddress, granted); logErr != nil {
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Unable to record login attempt. Please try again."})
	}

	if !granted {
		return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid username or password."})
	}

	// The token carries the resolved username, which the login input may not
	// equal when the lookup matched on email.
	token, err := utils.GenerateJWT(user.ID, user.Username, s.Cfg.JWTSecret, s.Cfg.JWTExpiry)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Failed to generate authentication token."})
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	user.SessionToken = &token
	if err := s.DB.Save(&user).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Failed to update user session."})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful.",
		"token":   token,
		"user": map[string]any{
			"id":       user.ID,
			"email":    user.Email,
			"username": user.Username,
		},
	})
}

// Logout godoc
// @Summary User logout
// @Description Logout user and invalidate session
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} simpleResponse
// @Failure 401 {object} simpleResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c echo.Context) error {
	user := c.Get("user").(*models.User)

	// Clear session token
	user.SessionToken = nil
	if err := s.DB.Save(user).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, simpleResponse{Success: false, Message: "Failed to logout."})
	}

	return c.JSON(http.StatusOK, simpleResponse{Success: true, Message: "Logged out successfully."})
}

// GetProfile godoc
// @Summary Get user profile
// @Description Get current user profile information
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "User profile"
// @Failure 401 {object} simpleResponse
// @Router /auth/profile [get]
func (s *Server) GetProfile(c echo.Context) error {
	user := c.Get("user").(*models.User)

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"user": map[string]any{
			"id":            user.ID,
			"email":         user.Email,
			"username":      user.Username,
			"last_login_at": user.LastLoginAt,
			"created_at":    user.CreatedAt,
		},
	})
}

// helpers

func (s *Server) credentialExists(query string, arg string) (bool, error) {
	var count int64
	if err := s.DB.Model(&models.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// uniqueViolationReason maps a duplicate-key write error to the conflict
// reason for the index that rejected it.
func uniqueViolationReason(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return "EMAIL_TAKEN", true
		}
		return "USERNAME_TAKEN", true
	}
	// sqlite fallback driver has no typed error; the message names the column
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		if strings.Contains(msg, "email") {
			return "EMAIL_TAKEN", true
		}
		return "USERNAME_TAKEN", true
	}
	return "", false
}

func clientIP(c echo.Context) string {
	if ip := c.Request().Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return c.RealIP()
}
