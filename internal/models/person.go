package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Category names a linkable contact field
type Category string

const (
	CategoryName    Category = "name"
	CategoryEmail   Category = "email"
	CategoryHandle  Category = "handle"
	CategoryProgram Category = "program"
	CategoryCohort  Category = "cohort"
)

// Categories lists the contact categories in classification priority order.
var Categories = []Category{
	CategoryName,
	CategoryEmail,
	CategoryHandle,
	CategoryProgram,
	CategoryCohort,
}

// Contact holds the identity fields of a submission or a person.
// Values keep their display form; comparison keys are derived elsewhere.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Handle  string `json:"handle"`
	Program string `json:"program"`
	Cohort  string `json:"cohort"`
}

// Get returns the value stored for cat
func (c Contact) Get(cat Category) string {
	switch cat {
	case CategoryName:
		return c.Name
	case CategoryEmail:
		return c.Email
	case CategoryHandle:
		return c.Handle
	case CategoryProgram:
		return c.Program
	case CategoryCohort:
		return c.Cohort
	}
	return ""
}

// Set stores value for cat
func (c *Contact) Set(cat Category, value string) {
	switch cat {
	case CategoryName:
		c.Name = value
	case CategoryEmail:
		c.Email = value
	case CategoryHandle:
		c.Handle = value
	case CategoryProgram:
		c.Program = value
	case CategoryCohort:
		c.Cohort = value
	}
}

// HasIdentity reports whether any linkable field (name, email, handle) is set.
func (c Contact) HasIdentity() bool {
	return c.Name != "" || c.Email != "" || c.Handle != ""
}

// RawRecord is one data row of one source export
type RawRecord struct {
	Contact   Contact    `json:"contact"`
	Responses OrderedMap `json:"responses"`
	Source    string     `json:"source"`
	Form      string     `json:"form"`
}

// Submission is the bundle of answers one record contributed to a person
type Submission struct {
	Form      string     `json:"form"`
	Responses OrderedMap `json:"responses"`
}

// CanonicalPerson is the merged registry entry for one individual
type CanonicalPerson struct {
	ID string `json:"id"`
	Contact
	NormalizedName string             `json:"normalized_name"`
	Submissions    []Submission       `json:"submissions"`
	Sources        []string           `json:"sources"`
	Attendance     []AttendanceRecord `json:"attendance"`
}

// AddSource records src once
func (p *CanonicalPerson) AddSource(src string) {
	if src == "" {
		return
	}
	for _, s := range p.Sources {
		if s == src {
			return
		}
	}
	p.Sources = append(p.Sources, src)
}

// StableID derives the person identifier from the resolved identity, so
// reruns over the same inputs keep the same ids.
func (p *CanonicalPerson) StableID() string {
	key := strings.ToLower(strings.TrimSpace(p.Email)) + "|" + p.NormalizedName + "|" + strings.ToLower(p.Handle)
	sum := sha256.Sum256([]byte(key))
	return "per_" + hex.EncodeToString(sum[:])[:12]
}

// AttendanceStats summarizes one course's sessions for one person
type AttendanceStats struct {
	TotalSessions  int     `json:"total_sessions"`
	Attended       int     `json:"attended"`
	Justified      int     `json:"justified"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// AttendanceRecord is one person's history in one course table
type AttendanceRecord struct {
	Course   string          `json:"course"`
	Source   string          `json:"source"`
	Sessions OrderedMap      `json:"sessions"`
	Stats    AttendanceStats `json:"stats"`
}
