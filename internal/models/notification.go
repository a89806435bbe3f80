package models

// Notification is a per-student announcement delivered by the backend.
type Notification struct {
	ID        FlexID   `json:"id"`
	Message   string   `json:"message"`
	Type      string   `json:"type,omitempty"`
	IsRead    bool     `json:"is_read"`
	CreatedAt FlexTime `json:"created_at"`
}

// UnreadCount counts notifications not yet marked read.
func UnreadCount(items []Notification) int {
	count := 0
	for _, n := range items {
		if !n.IsRead {
			count++
		}
	}
	return count
}
