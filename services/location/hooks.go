package location

import (
	"context"
	"time"

	"coolie/models"

	"go.uber.org/zap"
)

// FingerprintChecker compares a user's cart against a location fingerprint.
type FingerprintChecker interface {
	Check(ctx context.Context, userID, fingerprint string) (bool, error)
}

// CartInvalidationHook clears the bound user's cart when the session's
// location fingerprint changes.
func CartInvalidationHook(checker FingerprintChecker, timeout time.Duration, logger *zap.Logger) SessionHook {
	return func(s *Session) {
		s.Store.Subscribe(func(snap models.LocationSnapshot) {
			userID := s.UserID()
			if userID == "" || snap.Fingerprint == "" {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			cleared, err := checker.Check(ctx, userID, snap.Fingerprint)
			if err != nil {
				logger.Error("CartInvalidation: clear failed, cart kept",
					zap.String("session", s.ID), zap.String("userID", userID), zap.Error(err))
				return
			}
			if cleared {
				logger.Info("CartInvalidation: cart cleared after location change",
					zap.String("session", s.ID), zap.String("userID", userID),
					zap.String("fingerprint", snap.Fingerprint))
			}
		})
	}
}
