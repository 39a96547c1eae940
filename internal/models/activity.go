package models

import "time"

// ActivityCompleted статус завершённой активности, учитывается в статистике.
const ActivityCompleted = "COMPLETED"

// ActivityLog запись о взаимодействии пользователя с контентом.
type ActivityLog struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	Content      *Content  `json:"content,omitempty"`
	Status       string    `json:"status"`
	DateAccessed time.Time `json:"dateAccessed"`
}

// Message сообщение из формы обратной связи.
type Message struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Message  string    `json:"message"`
	DateSent time.Time `json:"dateSent"`
}
