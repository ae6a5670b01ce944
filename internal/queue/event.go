// Package queue defines the user lifecycle events published to the
// message broker and the RabbitMQ publisher that delivers them.
package queue

import (
	"time"

	"github.com/iliyamo/user-directory/internal/model"
)

// Event kinds carried in UserEvent.Event.
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

// QueueName is the durable queue all user events are published to.
const QueueName = "user.events"

// UserEvent is published after a successful create, update or delete. It
// carries the public fields only, enough for downstream consumers to
// react without querying the primary database.
type UserEvent struct {
	Event       string `json:"event"`
	UserID      uint64 `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	OccurredAt  string `json:"occurred_at"` // RFC 3339 UTC
}

// NewUserEvent builds an event of the given kind from a user record.
func NewUserEvent(kind string, u model.User) UserEvent {
	return UserEvent{
		Event:       kind,
		UserID:      u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
}
