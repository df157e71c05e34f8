package models

// ReminderPayload is the asynq payload for a scheduled-visit reminder.
type ReminderPayload struct {
	RequestID string `json:"requestId"`
	UserID    string `json:"userId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	FireDate  string `json:"fireDate"`
}
