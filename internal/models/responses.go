package models

import "time"

// StatusResponse is returned by /api/status
type StatusResponse struct {
	Loaded      bool      `json:"loaded"`
	RunID       string    `json:"run_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitzero"`
	LoadedAt    time.Time `json:"loaded_at,omitzero"`
	People      int       `json:"people"`
	Unmatched   int       `json:"unmatched"`
}

// PersonSummary is the list view of a canonical person
type PersonSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Handle      string `json:"handle"`
	Program     string `json:"program"`
	Cohort      string `json:"cohort"`
	Submissions int    `json:"submissions"`
	Courses     int    `json:"courses"`
}

// NewPersonSummary condenses p for listing
func NewPersonSummary(p *CanonicalPerson) PersonSummary {
	return PersonSummary{
		ID:          p.ID,
		Name:        p.Name,
		Email:       p.Email,
		Handle:      p.Handle,
		Program:     p.Program,
		Cohort:      p.Cohort,
		Submissions: len(p.Submissions),
		Courses:     len(p.Attendance),
	}
}

// PeopleResponse is returned by /api/people
type PeopleResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	People []PersonSummary `json:"people"`
}

// ReloadResponse is returned after a snapshot reload
type ReloadResponse struct {
	RunID  string `json:"run_id"`
	People int    `json:"people"`
}

// ErrorResponse carries a failure message
type ErrorResponse struct {
	Error string `json:"error"`
}
