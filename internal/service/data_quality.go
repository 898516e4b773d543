package service

import (
	"math"
	"regexp"
	"strings"

	"survey-registry/internal/models"
	"survey-registry/internal/state"
)

// DataQualityProfiler measures how well a source fills its contact columns
type DataQualityProfiler struct {
	patterns map[models.Category]*regexp.Regexp
}

// NewDataQualityProfiler creates a new profiler
func NewDataQualityProfiler() *DataQualityProfiler {
	return &DataQualityProfiler{patterns: buildContactPatterns()}
}

func buildContactPatterns() map[models.Category]*regexp.Regexp {
	return map[models.Category]*regexp.Regexp{
		models.CategoryName:    regexp.MustCompile(`^[\p{L}][\p{L}\p{M}'.\- ]*$`),
		models.CategoryEmail:   regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`),
		models.CategoryHandle:  regexp.MustCompile(`^@?[A-Za-z0-9_]{3,32}$`),
		models.CategoryProgram: regexp.MustCompile(`\p{L}`),
		models.CategoryCohort:  regexp.MustCompile(`\d{2,4}`),
	}
}

// ProfileContacts profiles every contact column of a classified table, in
// header order.
func (dqp *DataQualityProfiler) ProfileContacts(df *state.DataFrame, columns []models.ColumnClassification) []models.FieldProfile {
	var profiles []models.FieldProfile
	for _, col := range columns {
		if col.Role != models.RoleContact {
			continue
		}
		profiles = append(profiles, dqp.ProfileColumn(df, col))
	}
	return profiles
}

// ProfileColumn analyzes quality metrics for a single column
func (dqp *DataQualityProfiler) ProfileColumn(df *state.DataFrame, col models.ColumnClassification) models.FieldProfile {
	profile := models.FieldProfile{
		Category:  col.Category,
		Column:    col.Column,
		TotalRows: len(df.Rows),
	}

	uniqueValues := make(map[string]int)
	conforming := 0
	pattern := dqp.patterns[col.Category]

	for row := range df.Rows {
		value := strings.TrimSpace(df.Cell(row, col.Index))
		if isNullValue(value) {
			continue
		}
		profile.NonEmpty++
		uniqueValues[strings.ToLower(value)]++
		if pattern == nil || pattern.MatchString(value) {
			conforming++
		}
	}

	profile.Distinct = len(uniqueValues)
	if profile.TotalRows > 0 {
		profile.FillRate = round4(float64(profile.NonEmpty) / float64(profile.TotalRows))
	}
	if profile.NonEmpty > 0 {
		profile.UniquenessRatio = round4(float64(profile.Distinct) / float64(profile.NonEmpty))
		profile.PatternConformance = round4(float64(conforming) / float64(profile.NonEmpty))
	}
	profile.Entropy = round4(dqp.calculateEntropy(uniqueValues, profile.NonEmpty))

	return profile
}

// calculateEntropy computes Shannon entropy
func (dqp *DataQualityProfiler) calculateEntropy(valueCounts map[string]int, total int) float64 {
	if total == 0 {
		return 0
	}

	entropy := 0.0
	for _, count := range valueCounts {
		if count > 0 {
			p := float64(count) / float64(total)
			entropy -= p * math.Log2(p)
		}
	}

	return entropy
}

func isNullValue(value string) bool {
	switch value {
	case "", "null", "NULL", "None":
		return true
	}
	return false
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
