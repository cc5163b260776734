package models

// NotificationService announces a newly observed pending transfer on the
// configured local channels. Implementations must not block the caller
// for long and must swallow channel failures.
type NotificationService interface {
	SendNotification(notification *PendingNotification)
}
