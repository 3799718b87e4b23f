package model

type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Password  string `json:"-"`
	CreatedAt int64  `json:"createdAt"`
}

// Reminder is the wire and cache representation. Deadline and CreatedAt are
// epoch milliseconds.
type Reminder struct {
	ID        int64  `json:"id,omitempty"`
	UserID    int64  `json:"userId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Deadline  int64  `json:"deadline"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// DisplayReminder carries ISO-8601 timestamps for presentation.
type DisplayReminder struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Deadline  string `json:"deadline"`
	CreatedAt string `json:"createdAt"`
}

type Session struct {
	UserID int64  `json:"userId"`
	Token  string `json:"token"`
}

func (s Session) Valid() bool {
	return s.UserID > 0 && s.Token != ""
}

const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeEvent is pushed to a user's live connections after a reminder write.
type ChangeEvent struct {
	Type       string `json:"type"`
	UserID     int64  `json:"userId"`
	ReminderID int64  `json:"reminderId"`
	Op         string `json:"op"`
}

const ChangeEventType = "reminders-changed"
