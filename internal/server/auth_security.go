package server

import (
	"time"

	"github.com/blogflow/backend/internal/models"
)

// GetFailedAttemptsCount returns the number of failed login attempts for a username/IP in the last hour
func (s *Server) GetFailedAttemptsCount(username, ipAddress string) int64 {
	var count int64
	oneHourAgo := time.Now().Add(-1 * time.Hour)
	s.DB.Model(&models.LoginAttempt{}).
		Where("username = ? AND ip_address = ? AND success = false AND created_at > ?", username, ipAddress, oneHourAgo).
		Count(&count)
	return count
}

// RecordLoginAttempt appends one attempt row, success or not. The submitted
// password is never written. A returned error means the audit trail could
// not be written; the caller must surface that separately from the
// credential check itself.
func (s *Server) RecordLoginAttempt(username, ipAddress string, success bool) error {
	attempt := models.LoginAttempt{
		Username:  username,
		IPAddress: ipAddress,
		Success:   success,
	}
	return s.DB.Create(&attempt).Error
}

// CleanupOldAttempts removes login attempts older than 24 hours
func (s *Server) CleanupOldAttempts() {
	oneDayAgo := time.Now().Add(-24 * time.Hour)
	s.DB.Where("created_at < ?", oneDayAgo).Delete(&models.LoginAttempt{})
}
