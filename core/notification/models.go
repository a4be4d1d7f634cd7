package notification

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/apetrei/examsched/core/session"
)

// Notification types as declared by the server.
const (
	TypeSystem   = "system"
	TypeSchedule = "schedule"
	TypeDeadline = "deadline"
	TypeInfo     = "info"
)

type (
	Notification struct {
		ID        int       `json:"id"`
		Title     string    `json:"title"`
		Message   string    `json:"message"`
		Type      string    `json:"type"`
		Read      bool      `json:"read"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// Settings are the user's notification preferences.
	Settings struct {
		EmailNotifications    bool `json:"email_notifications"`
		PushNotifications     bool `json:"push_notifications"`
		ScheduleNotifications bool `json:"schedule_notifications"`
		SystemNotifications   bool `json:"system_notifications"`
	}

	// SettingsUpdate toggles individual preferences; unset fields are left
	// untouched server-side.
	SettingsUpdate struct {
		EmailNotifications    null.Bool `json:"email_notifications,omitempty"`
		PushNotifications     null.Bool `json:"push_notifications,omitempty"`
		ScheduleNotifications null.Bool `json:"schedule_notifications,omitempty"`
		SystemNotifications   null.Bool `json:"system_notifications,omitempty"`
	}

	// SendInput targets either an explicit recipient list or a whole role.
	SendInput struct {
		Title      string        `json:"title" validate:"required,max=100"`
		Message    string        `json:"message" validate:"required"`
		Type       string        `json:"type" validate:"required,oneof=system schedule deadline info"`
		Recipients []int         `json:"recipients,omitempty" validate:"omitempty,dive,gt=0"`
		Role       *session.Role `json:"role,omitempty"`
		SendEmail  bool          `json:"send_email,omitempty"`
	}
)
