// Package auth restricts the bot to an allow-list of Telegram users.
package auth

import (
	"go.uber.org/zap"
)

type Authenticator struct {
	allowed map[int64]struct{}
	logger  *zap.Logger
}

func NewAuthenticator(allowedUserIDs []int64, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[int64]struct{}, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = struct{}{}
	}
	return &Authenticator{
		allowed: allowed,
		logger:  logger,
	}
}

// IsUserAllowed reports whether userID may scan folders and edit canvases
func (a *Authenticator) IsUserAllowed(userID int64) bool {
	if _, ok := a.allowed[userID]; ok {
		a.logger.Debug("User access granted",
			zap.Int64("user_id", userID))
		return true
	}

	a.logger.Warn("Unauthorized access attempt",
		zap.Int64("user_id", userID))
	return false
}

func (a *Authenticator) AllowedUsersCount() int {
	return len(a.allowed)
}
