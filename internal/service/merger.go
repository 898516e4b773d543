package service

import (
	"sort"
	"unicode/utf8"

	"survey-registry/internal/models"
)

// Merger collapses identity groups into canonical people
type Merger struct {
	handles HandleNormalizer
}

func NewMerger(handles HandleNormalizer) *Merger {
	return &Merger{handles: handles}
}

// Merge resolves each identity field independently: the first non-empty
// value seeds it and only a strictly longer value replaces it.
func (m *Merger) Merge(group []models.RawRecord) models.CanonicalPerson {
	var person models.CanonicalPerson

	for _, r := range group {
		for _, cat := range models.Categories {
			value := r.Contact.Get(cat)
			if cat == models.CategoryHandle {
				value = m.handles.Normalize(value)
			}
			if value == "" {
				continue
			}
			current := person.Get(cat)
			if current == "" || utf8.RuneCountInString(value) > utf8.RuneCountInString(current) {
				person.Set(cat, value)
			}
		}

		if r.Responses.Len() > 0 {
			person.Submissions = append(person.Submissions, models.Submission{
				Form:      r.Form,
				Responses: r.Responses.Clone(),
			})
		}
		person.AddSource(r.Source)
	}

	sort.Strings(person.Sources)
	person.NormalizedName = Normalize(person.Name)
	person.ID = person.StableID()
	return person
}

// MergeAll merges every group in key order
func (m *Merger) MergeAll(groups *Groups) []models.CanonicalPerson {
	people := make([]models.CanonicalPerson, 0, groups.Len())
	for _, key := range groups.Keys {
		people = append(people, m.Merge(groups.Members[key]))
	}
	return people
}
