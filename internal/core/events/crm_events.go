package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSessionEnded       = "session.ended"
	EventTypeUserDeleted        = "user.deleted"
	EventTypePermissionsUpdated = "user.permissions_updated"
	EventTypeSystemDataCleared  = "system.data_cleared"
)

type SessionEndedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

func NewSessionEndedEvent(sessionID, userID string) *SessionEndedEvent {
	return &SessionEndedEvent{
		BaseEvent: newBase(EventTypeSessionEnded, map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
		}),
		SessionID: sessionID,
		UserID:    userID,
	}
}

type UserDeletedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	DeletedBy string `json:"deleted_by"`
}

func NewUserDeletedEvent(userID, role, deletedBy string) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseEvent: newBase(EventTypeUserDeleted, map[string]interface{}{
			"user_id":    userID,
			"role":       role,
			"deleted_by": deletedBy,
		}),
		UserID:    userID,
		Role:      role,
		DeletedBy: deletedBy,
	}
}

type PermissionsUpdatedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	UpdatedBy string `json:"updated_by"`
}

func NewPermissionsUpdatedEvent(userID, updatedBy string) *PermissionsUpdatedEvent {
	return &PermissionsUpdatedEvent{
		BaseEvent: newBase(EventTypePermissionsUpdated, map[string]interface{}{
			"user_id":    userID,
			"updated_by": updatedBy,
		}),
		UserID:    userID,
		UpdatedBy: updatedBy,
	}
}

type SystemDataClearedEvent struct {
	BaseEvent
	ClearedBy string           `json:"cleared_by"`
	Counts    map[string]int64 `json:"counts"`
}

func NewSystemDataClearedEvent(clearedBy string, counts map[string]int64) *SystemDataClearedEvent {
	return &SystemDataClearedEvent{
		BaseEvent: newBase(EventTypeSystemDataCleared, map[string]interface{}{
			"cleared_by": clearedBy,
			"counts":     counts,
		}),
		ClearedBy: clearedBy,
		Counts:    counts,
	}
}

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}
