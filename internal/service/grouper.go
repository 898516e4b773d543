package service

import (
	"strings"

	"survey-registry/internal/models"
)

const noEmailPrefix = "no_email|"

// Groups partitions records by identity key
type Groups struct {
	// Keys in first-seen order
	Keys    []string
	Members map[string][]models.RawRecord
}

// Len returns the number of groups
func (g *Groups) Len() int {
	return len(g.Keys)
}

// GroupKey is the normalized email, or a name/handle composite when the
// record has no email.
func GroupKey(r models.RawRecord) string {
	if email := NormalizeEmail(r.Contact.Email); email != "" {
		return email
	}
	return noEmailPrefix + Normalize(r.Contact.Name) + "|" + strings.ToLower(r.Contact.Handle)
}

// Group assigns every record to exactly one group, keeping input order
// within each group.
//
// Records without email or handle that share a name land in one group even
// when they are different people.
func Group(records []models.RawRecord) *Groups {
	groups := &Groups{Members: make(map[string][]models.RawRecord)}
	for _, r := range records {
		key := GroupKey(r)
		if _, ok := groups.Members[key]; !ok {
			groups.Keys = append(groups.Keys, key)
		}
		groups.Members[key] = append(groups.Members[key], r)
	}
	return groups
}
