package services

import "log"

// NotificationSink delivers user-facing settlement notices (margin warnings,
// liquidations, refunds, prizes). Delivery failures are logged by callers
// and never block settlement.
type NotificationSink interface {
	Notify(userID uint, event string, message string) error
}

// LogNotificationSink writes notices to the application log.
type LogNotificationSink struct{}

func NewLogNotificationSink() *LogNotificationSink {
	return &LogNotificationSink{}
}

func (s *LogNotificationSink) Notify(userID uint, event string, message string) error {
	log.Printf("[Notify] user=%d event=%s %s", userID, event, message)
	return nil
}
