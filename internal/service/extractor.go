package service

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"survey-registry/internal/models"
	"survey-registry/internal/state"
)

const (
	slugTruncateAbove = 30
	slugKeepBudget    = 25
	slugEllipsis      = "..."
)

// ColumnPatterns is the static header classification table
type ColumnPatterns struct {
	// Contact lists header variants per category; matching is a
	// case-insensitive substring test.
	Contact     map[models.Category][]string
	Admin       []string
	Decorations []string
}

// Extractor turns a survey export into raw records.
type Extractor struct {
	contact     map[models.Category][]string
	admin       []string
	decorations []string
	handles     HandleNormalizer
}

// ExtractResult is what one table contributed
type ExtractResult struct {
	Records  []models.RawRecord
	Columns  []models.ColumnClassification
	Rows     int
	Filtered int
}

func NewExtractor(patterns ColumnPatterns, handles HandleNormalizer) *Extractor {
	e := &Extractor{
		contact:     make(map[models.Category][]string, len(patterns.Contact)),
		decorations: patterns.Decorations,
		handles:     handles,
	}
	for cat, variants := range patterns.Contact {
		for _, v := range variants {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				e.contact[cat] = append(e.contact[cat], v)
			}
		}
	}
	for _, a := range patterns.Admin {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			e.admin = append(e.admin, a)
		}
	}
	return e
}

// Classify assigns every header exactly one role. Categories claim columns in
// models.Categories order, each taking the first unclaimed header that
// contains one of its variants. Of the rest, headers containing an admin
// pattern are discarded and everything else is a response.
func (e *Extractor) Classify(headers []string) []models.ColumnClassification {
	columns := make([]models.ColumnClassification, len(headers))
	claimed := make([]bool, len(headers))
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(h)
		columns[i] = models.ColumnClassification{Index: i, Column: h}
	}

	for _, cat := range models.Categories {
		variants := e.contact[cat]
		if len(variants) == 0 {
			continue
		}
		for i := range headers {
			if claimed[i] || !containsAny(lowered[i], variants) {
				continue
			}
			claimed[i] = true
			columns[i].Role = models.RoleContact
			columns[i].Category = cat
			break
		}
	}

	for i := range headers {
		if claimed[i] {
			continue
		}
		if containsAny(lowered[i], e.admin) {
			columns[i].Role = models.RoleAdmin
			continue
		}
		columns[i].Role = models.RoleResponse
		columns[i].Slug = Slug(headers[i], e.decorations)
		if columns[i].Slug == "" {
			columns[i].Slug = "question_" + strconv.Itoa(i+1)
		}
	}
	return columns
}

// Extract emits one record per row that carries a name, email or handle.
func (e *Extractor) Extract(df *state.DataFrame, source string) ExtractResult {
	columns := e.Classify(df.Headers)
	result := ExtractResult{Columns: columns, Rows: len(df.Rows)}
	form := FormLabel(source)

	for row := range df.Rows {
		record := models.RawRecord{Source: source, Form: form}

		for _, col := range columns {
			value := strings.TrimSpace(df.Cell(row, col.Index))
			switch col.Role {
			case models.RoleContact:
				if col.Category == models.CategoryHandle {
					value = e.handles.Normalize(value)
				}
				record.Contact.Set(col.Category, value)
			case models.RoleResponse:
				if value != "" {
					record.Responses.Set(col.Slug, value)
				}
			}
		}

		if !record.Contact.HasIdentity() {
			result.Filtered++
			continue
		}
		result.Records = append(result.Records, record)
	}
	return result
}

// Slug derives the short response key for a question header. Decorations are
// removed, long questions are cut at a word boundary, punctuation is dropped
// and the remaining words are joined with underscores in lower case.
func Slug(question string, decorations []string) string {
	for _, d := range decorations {
		if d != "" {
			question = strings.ReplaceAll(question, d, "")
		}
	}
	question = strings.TrimSpace(norm.NFC.String(question))

	if utf8.RuneCountInString(question) > slugTruncateAbove {
		words := strings.Fields(question)
		kept := make([]string, 0, len(words))
		used := 0
		for _, w := range words {
			n := utf8.RuneCountInString(w)
			if used+n > slugKeepBudget {
				break
			}
			kept = append(kept, w)
			used += n + 1
		}
		question = strings.Join(kept, " ")
		if len(kept) < len(words) {
			question += slugEllipsis
		}
	}

	// Accents survive as precomposed letters; leftover marks such as emoji
	// variation selectors and keycaps are dropped.
	question = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, question)

	return strings.ToLower(strings.Join(strings.Fields(question), "_"))
}

// FormLabel is the source file's base name without its extension
func FormLabel(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
