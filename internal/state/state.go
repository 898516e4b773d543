package state

import (
	"sync"
	"time"

	"survey-registry/internal/models"
)

// DataFrame represents a loaded CSV file with its data
type DataFrame struct {
	Headers  []string
	Rows     [][]string
	FilePath string
	FileName string
}

// Cell returns the raw value at row/col, or "" when the row is short
func (df *DataFrame) Cell(row, col int) string {
	if row < 0 || row >= len(df.Rows) || col < 0 || col >= len(df.Rows[row]) {
		return ""
	}
	return df.Rows[row][col]
}

// ColumnValues returns every value of a column, padding short rows with ""
func (df *DataFrame) ColumnValues(col int) []string {
	values := make([]string, len(df.Rows))
	for i := range df.Rows {
		values[i] = df.Cell(i, col)
	}
	return values
}

// AppState holds the registry snapshot served by the read API
type AppState struct {
	mu sync.RWMutex

	snapshot *models.Snapshot
	loadedAt time.Time
}

// Global state instance
var State = &AppState{}

// SetSnapshot swaps in a freshly loaded snapshot
func (s *AppState) SetSnapshot(snap *models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snap
	s.loadedAt = time.Now()
}

// GetSnapshot returns the current snapshot, or nil before the first load
func (s *AppState) GetSnapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}

// LoadedAt returns when the current snapshot was installed
func (s *AppState) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadedAt
}
