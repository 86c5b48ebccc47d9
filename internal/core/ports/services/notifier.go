package services

import "context"

// Notification is one outbound message to a customer or investor.
type Notification struct {
	RecipientID string
	Subject     string
	Body        string
}

// Notifier delivers notifications for allotment and distribution events.
// Delivery runs outside the database transaction; a failed send never rolls
// back a settled operation.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
