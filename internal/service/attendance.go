package service

import (
	"errors"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"survey-registry/internal/analysis"
	"survey-registry/internal/models"
	"survey-registry/internal/platform/logger"
)

// StatusCodes are the cell values counted by attendance stats
type StatusCodes struct {
	Present    string
	PresentAlt string
	Justified  string
}

func (c StatusCodes) attended(status string) bool {
	return status != "" && (status == c.Present || status == c.PresentAlt)
}

// CourseTable is one parsed attendance file
type CourseTable struct {
	Course string
	Source string
	Table  *analysis.AttendanceTable
}

// NamedAttendance pairs an attendance column header with its record
type NamedAttendance struct {
	Name   string
	Record models.AttendanceRecord
}

// BuildAttendance summarizes every person column of a table, in header order.
// Total sessions counts every session row, including rows the person left blank.
func BuildAttendance(ct CourseTable, codes StatusCodes) []NamedAttendance {
	table := ct.Table
	total := len(table.Sessions)
	out := make([]NamedAttendance, 0, len(table.People))

	for _, person := range table.People {
		record := models.AttendanceRecord{Course: ct.Course, Source: ct.Source}
		for _, session := range table.Sessions {
			status := table.StatusOf(session, person)
			if status == "" {
				continue
			}
			record.Sessions.Set(session, status)
			switch {
			case codes.attended(status):
				record.Stats.Attended++
			case status == codes.Justified:
				record.Stats.Justified++
			}
		}
		record.Stats.TotalSessions = total
		record.Stats.AttendanceRate = attendanceRate(record.Stats.Attended, total)
		out = append(out, NamedAttendance{Name: person, Record: record})
	}
	return out
}

// attendanceRate is attended/total as a percentage rounded to two decimals
func attendanceRate(attended, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(attended)/float64(total)*100*100) / 100
}

// AttachResult reports what the matcher did with each attendance column
type AttachResult struct {
	Matched   int
	Unmatched []models.UnmatchedName
}

// AttendanceMatcher links attendance tables to registry people by name.
type AttendanceMatcher struct {
	names  *NameMatcher
	codes  StatusCodes
	logger *slog.Logger
}

func NewAttendanceMatcher(names *NameMatcher, codes StatusCodes, log *slog.Logger) *AttendanceMatcher {
	if log == nil {
		log = logger.Discard()
	}
	return &AttendanceMatcher{names: names, codes: codes, logger: log}
}

// Attach appends course records to matched people in place. Each table is
// applied in order; a person matched twice receives both records.
func (am *AttendanceMatcher) Attach(people []models.CanonicalPerson, tables []CourseTable) AttachResult {
	var result AttachResult

	candidates := make([]string, len(people))
	normalized := make([]string, len(people))
	for i := range people {
		candidates[i] = people[i].Name
		normalized[i] = people[i].NormalizedName
	}

	for _, ct := range tables {
		for _, entry := range BuildAttendance(ct, am.codes) {
			idx, ok := am.names.Match(entry.Name, candidates)
			if !ok {
				result.Unmatched = append(result.Unmatched, am.unmatched(ct, entry.Name, people, normalized))
				continue
			}
			p := &people[idx]
			p.Attendance = append(p.Attendance, entry.Record)
			p.AddSource(ct.Source)
			sort.Strings(p.Sources)
			result.Matched++
		}
	}
	return result
}

func (am *AttendanceMatcher) unmatched(ct CourseTable, name string, people []models.CanonicalPerson, normalized []string) models.UnmatchedName {
	u := models.UnmatchedName{Course: ct.Course, Source: ct.Source, Name: name}
	if idx, ratio := Closest(Normalize(name), normalized); idx >= 0 {
		u.Closest = people[idx].Name
		u.ClosestRatio = math.Round(ratio*100) / 100
	}
	am.logger.Warn("attendance name unmatched",
		"course", ct.Course,
		"name", name,
		"closest", u.Closest,
	)
	return u
}

// LoadDir parses every .md file of dir in lexical order. A missing directory
// yields no tables; files that cannot be parsed are logged and skipped.
func (am *AttendanceMatcher) LoadDir(dir string) []CourseTable {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			am.logger.Info("attendance directory not found", "dir", dir)
		} else {
			am.logger.Warn("attendance directory unreadable", "dir", dir, "err", err)
		}
		return nil
	}

	var tables []CourseTable
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		path := filepath.Join(dir, name)
		table, err := analysis.ReadAttendanceFile(path)
		if err != nil {
			am.logger.Warn("skipping attendance file", "source", path, "err", err)
			continue
		}
		am.logger.Debug("attendance file parsed",
			"source", path,
			"people", len(table.People),
			"sessions", len(table.Sessions),
		)
		tables = append(tables, CourseTable{
			Course: strings.TrimSuffix(name, ".md"),
			Source: path,
			Table:  table,
		})
	}
	return tables
}
