package models

// Batch is one scheduled cohort of a course that accepts enrollment payments.
type Batch struct {
	ID         FlexID `json:"id"`
	CourseName string `json:"course_name"`
	BatchName  string `json:"batch_name"`
	Fees       Money  `json:"fees"`
}

// PromotedCourse is a batch surfaced on the guest landing page.
type PromotedCourse struct {
	ID         FlexID `json:"id"`
	CourseName string `json:"course_name"`
	BatchName  string `json:"batch_name"`
	IsFull     bool   `json:"is_full"`
	SeatsLeft  int    `json:"seats_left"`
}

// Instructor is a public teacher profile.
type Instructor struct {
	ID              FlexID `json:"id"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	Bio             string `json:"bio"`
	ExperienceBadge string `json:"experience_badge,omitempty"`
}
