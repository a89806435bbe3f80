package models

// Student is the portal's view of a student record owned by the admin backend.
type Student struct {
	ID             FlexID   `json:"id"`
	Name           string   `json:"name"`
	PhonePrimary   string   `json:"phone_primary"`
	PhoneSecondary string   `json:"phone_secondary,omitempty"`
	Address        string   `json:"address,omitempty"`
	DOB            FlexTime `json:"dob,omitempty"`
	ProfileImage   string   `json:"profile_image,omitempty"`
	CreatedAt      FlexTime `json:"created_at,omitempty"`
}

// Valid reports whether the record carries the identity field the portal
// requires before trusting it. Backend payloads without an id are discarded.
func (s *Student) Valid() bool {
	return s != nil && s.ID != ""
}
