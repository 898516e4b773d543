package models

import "time"

// ColumnRole is the role a source column plays during extraction
type ColumnRole string

const (
	RoleContact  ColumnRole = "contact"
	RoleAdmin    ColumnRole = "admin"
	RoleResponse ColumnRole = "response"
)

// ColumnClassification records how a single header was classified
type ColumnClassification struct {
	Index    int        `json:"index"`
	Column   string     `json:"column"`
	Role     ColumnRole `json:"role"`
	Category Category   `json:"category,omitempty"`
	Slug     string     `json:"slug,omitempty"`
}

// FieldProfile holds fill and shape metrics for a contact column
type FieldProfile struct {
	Category           Category `json:"category"`
	Column             string   `json:"column"`
	TotalRows          int      `json:"total_rows"`
	NonEmpty           int      `json:"non_empty"`
	FillRate           float64  `json:"fill_rate"`
	Distinct           int      `json:"distinct"`
	UniquenessRatio    float64  `json:"uniqueness_ratio"`
	Entropy            float64  `json:"entropy"`
	PatternConformance float64  `json:"pattern_conformance"`
}

// SourceReport describes what one source export contributed
type SourceReport struct {
	Path     string                 `json:"path"`
	Form     string                 `json:"form"`
	Rows     int                    `json:"rows"`
	Records  int                    `json:"records"`
	Filtered int                    `json:"filtered"`
	Error    string                 `json:"error,omitempty"`
	Columns  []ColumnClassification `json:"columns,omitempty"`
	Profiles []FieldProfile         `json:"profiles,omitempty"`
}

// Failed reports whether the source was skipped
func (r SourceReport) Failed() bool {
	return r.Error != ""
}

// UnmatchedName is an attendance column no registry entry claimed.
// Closest is a review hint only; it never attaches data.
type UnmatchedName struct {
	Course       string  `json:"course"`
	Source       string  `json:"source"`
	Name         string  `json:"name"`
	Closest      string  `json:"closest,omitempty"`
	ClosestRatio float64 `json:"closest_ratio,omitempty"`
}

// RunReport summarizes one pipeline invocation
type RunReport struct {
	RunID             string          `json:"run_id"`
	StartedAt         time.Time       `json:"started_at"`
	FinishedAt        time.Time       `json:"finished_at"`
	Sources           []SourceReport  `json:"sources"`
	RecordsExtracted  int             `json:"records_extracted"`
	RecordsFiltered   int             `json:"records_filtered"`
	Groups            int             `json:"groups"`
	People            int             `json:"people"`
	AttendanceFiles   []string        `json:"attendance_files"`
	AttendanceMatched int             `json:"attendance_matched"`
	Unmatched         []UnmatchedName `json:"unmatched"`
}

// FailedSources counts the sources that contributed no records due to errors
func (r RunReport) FailedSources() int {
	n := 0
	for _, s := range r.Sources {
		if s.Failed() {
			n++
		}
	}
	return n
}

// Snapshot is the single serialized output document of a run
type Snapshot struct {
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	People      []CanonicalPerson `json:"people"`
	Report      RunReport         `json:"report"`
}

// FindPerson returns the person with the given id
func (s *Snapshot) FindPerson(id string) (*CanonicalPerson, bool) {
	for i := range s.People {
		if s.People[i].ID == id {
			return &s.People[i], true
		}
	}
	return nil, false
}
