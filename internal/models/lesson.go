package models

// Lesson is one video lesson inside a batch's classroom.
type Lesson struct {
	ID          FlexID `json:"id"`
	BatchID     FlexID `json:"batch_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	VideoURL    string `json:"video_url"`
}

// Comment is one discussion message under a lesson.
type Comment struct {
	ID        FlexID   `json:"id"`
	LessonID  FlexID   `json:"lesson_id"`
	UserName  string   `json:"user_name"`
	UserRole  string   `json:"user_role,omitempty"`
	Message   string   `json:"message"`
	CreatedAt FlexTime `json:"created_at"`
}
