package analysis

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ErrNoTable is returned when a document contains no pipe-delimited row.
var ErrNoTable = errors.New("no pipe-delimited table found")

var alignmentCell = regexp.MustCompile(`^:?-+:?$`)

// AttendanceTable is a session grid: people across, sessions down.
type AttendanceTable struct {
	People   []string
	Sessions []string
	// Status maps session -> person -> status code; blank cells are absent.
	Status map[string]map[string]string
}

// StatusOf returns the recorded status for a person in a session
func (t *AttendanceTable) StatusOf(session, person string) string {
	return t.Status[session][person]
}

// ReadAttendanceFile parses the table in a markdown document on disk.
func ReadAttendanceFile(path string) (*AttendanceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := ParseAttendanceTable(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return table, nil
}

// ParseAttendanceTable reads the first pipe-delimited grid of a document.
// The first row names people; every later row is a session label followed by
// one status cell per person, matched by position.
func ParseAttendanceTable(r io.Reader) (*AttendanceTable, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var header []string
	table := &AttendanceTable{Status: make(map[string]map[string]string)}
	seenPerson := make(map[string]bool)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, "|") {
			continue
		}
		cells := splitPipeRow(line)

		if header == nil {
			header = cells
			for _, name := range header[1:] {
				if name != "" && !seenPerson[name] {
					seenPerson[name] = true
					table.People = append(table.People, name)
				}
			}
			continue
		}

		if isAlignmentRow(cells) {
			continue
		}
		session := cells[0]
		if session == "" {
			continue
		}
		if _, ok := table.Status[session]; !ok {
			table.Sessions = append(table.Sessions, session)
		}
		row := make(map[string]string)
		for j := 1; j < len(cells) && j < len(header); j++ {
			person := header[j]
			if person == "" || cells[j] == "" {
				continue
			}
			row[person] = cells[j]
		}
		table.Status[session] = row
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if header == nil {
		return nil, ErrNoTable
	}
	return table, nil
}

func splitPipeRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	cells := strings.Split(line, "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

func isAlignmentRow(cells []string) bool {
	sawDash := false
	for _, c := range cells {
		if c == "" {
			continue
		}
		if !alignmentCell.MatchString(c) {
			return false
		}
		sawDash = true
	}
	return sawDash
}
