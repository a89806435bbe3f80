package models

// Session is the locally-remembered identity of a logged-in student.
// Invariant: StudentSnapshot != nil implies Phone != "". Phone may exist
// alone mid-login, before the first successful backend fetch completes.
type Session struct {
	Phone           string   `json:"phone,omitempty"`
	StudentSnapshot *Student `json:"student,omitempty"`
}

// Authenticated reports whether a structurally valid snapshot is present.
// Dashboard visibility is a function of this, never tracked separately.
func (s Session) Authenticated() bool {
	return s.Phone != "" && s.StudentSnapshot.Valid()
}

// Empty reports whether no identity is remembered at all.
func (s Session) Empty() bool {
	return s.Phone == "" && s.StudentSnapshot == nil
}
