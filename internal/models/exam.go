package models

// ExamResult is a released exam result record.
type ExamResult struct {
	ID            FlexID   `json:"id"`
	CourseName    string   `json:"course_name"`
	BatchName     string   `json:"batch_name"`
	ExamTitle     string   `json:"exam_title"`
	MarksObtained Money    `json:"marks_obtained"`
	TotalMarks    Money    `json:"total_marks"`
	Grade         string   `json:"grade"`
	ResultDate    FlexTime `json:"result_date"`
}
