package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-registry/internal/models"
)

func record(name, email, handle, source string, responses ...string) models.RawRecord {
	r := models.RawRecord{
		Contact: models.Contact{Name: name, Email: email, Handle: handle},
		Source:  source,
		Form:    FormLabel(source),
	}
	for i := 0; i+1 < len(responses); i += 2 {
		r.Responses.Set(responses[i], responses[i+1])
	}
	return r
}

func TestGroupKey(t *testing.T) {
	assert.Equal(t, "ana@uc.cl", GroupKey(record("Ana", " ANA@uc.cl ", "@ana", "a.csv")))
	assert.Equal(t, "no_email|jose perez|@jp", GroupKey(record("José  Pérez", "", "@JP", "a.csv")))
	assert.Equal(t, "no_email||@jp", GroupKey(record("", "", "@jp", "a.csv")))
	assert.Equal(t, "no_email|luis|", GroupKey(record("Luis", "", "", "a.csv")))
}

func TestGroupPartitionsRecords(t *testing.T) {
	records := []models.RawRecord{
		record("Ana", "ana@uc.cl", "", "a.csv"),
		record("Luis", "", "@luis", "a.csv"),
		record("Ana María", "ANA@UC.CL", "", "b.csv"),
		record("", "", "@luis", "b.csv"),
		record("Luis", "", "@luis", "b.csv"),
	}

	groups := Group(records)

	assert.Equal(t, []string{"ana@uc.cl", "no_email|luis|@luis", "no_email||@luis"}, groups.Keys)
	total := 0
	for _, key := range groups.Keys {
		total += len(groups.Members[key])
	}
	assert.Equal(t, len(records), total, "every record lands in exactly one group")

	ana := groups.Members["ana@uc.cl"]
	require.Len(t, ana, 2)
	assert.Equal(t, "Ana", ana[0].Contact.Name, "input order is kept within a group")
	assert.Equal(t, "Ana María", ana[1].Contact.Name)
}

// Two different people sharing a name with no email and no handle are merged.
func TestGroupMergesNamesakesWithoutEmailOrHandle(t *testing.T) {
	groups := Group([]models.RawRecord{
		record("Camila Rojas", "", "", "a.csv", "q", "first person"),
		record("CAMILA ROJAS", "", "", "b.csv", "q", "second person"),
	})

	require.Equal(t, 1, groups.Len())
	assert.Len(t, groups.Members[groups.Keys[0]], 2)
}
