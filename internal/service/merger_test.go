package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-registry/internal/models"
)

func newTestMerger() *Merger {
	return NewMerger(NewHandleNormalizer("@", []string{"no tengo", "no", "none", "0", "n/a", "-"}))
}

func TestMergeLongestValueWins(t *testing.T) {
	group := []models.RawRecord{
		record("Ana Pérez", "ana@uc.cl", "", "./sources/2023-1.csv", "q1", "a"),
		record("Ana María Pérez", "ANA@UC.CL", "@ana", "./sources/2024-1.csv"),
		record("Ana", "", "@ana_perez", "./sources/2024-2.csv", "q2", "b"),
	}
	group[0].Contact.Program = "Ingeniería"
	group[2].Contact.Program = "Ing"

	p := newTestMerger().Merge(group)

	assert.Equal(t, "Ana María Pérez", p.Name)
	assert.Equal(t, "ana maria perez", p.NormalizedName)
	assert.Equal(t, "ana@uc.cl", p.Email, "equal length keeps the earlier value")
	assert.Equal(t, "@ana_perez", p.Handle)
	assert.Equal(t, "Ingeniería", p.Program, "shorter values never replace")
	assert.Equal(t, "", p.Cohort)
}

func TestMergeRenormalizesHandles(t *testing.T) {
	group := []models.RawRecord{
		record("Luis", "", "none", "a.csv"),
		record("Luis", "", "luis soto", "b.csv"),
	}

	p := newTestMerger().Merge(group)
	assert.Equal(t, "@luissoto", p.Handle)
}

func TestMergeSubmissionsAndSources(t *testing.T) {
	group := []models.RawRecord{
		record("Ana", "ana@uc.cl", "", "./sources/b.csv", "q1", "a"),
		record("Ana", "ana@uc.cl", "", "./sources/a.csv"),
		record("Ana", "ana@uc.cl", "", "./sources/b.csv", "q2", "c"),
	}

	p := newTestMerger().Merge(group)

	require.Len(t, p.Submissions, 2, "records without responses contribute no submission")
	assert.Equal(t, "b", p.Submissions[0].Form)
	assert.Equal(t, []string{"q1"}, p.Submissions[0].Responses.Keys())
	assert.Equal(t, []string{"q2"}, p.Submissions[1].Responses.Keys())
	assert.Equal(t, []string{"./sources/a.csv", "./sources/b.csv"}, p.Sources)
}

func TestMergeSourcesIndependentOfOrder(t *testing.T) {
	a := record("Ana", "ana@uc.cl", "", "x.csv", "q", "1")
	b := record("Ana", "ana@uc.cl", "", "y.csv", "q", "2")

	m := newTestMerger()
	p1 := m.Merge([]models.RawRecord{a, b})
	p2 := m.Merge([]models.RawRecord{b, a})

	assert.Equal(t, p1.Sources, p2.Sources)
	assert.Len(t, p2.Submissions, len(p1.Submissions))
	assert.Equal(t, p1.ID, p2.ID)
}

func TestMergeStableID(t *testing.T) {
	m := newTestMerger()
	p1 := m.Merge([]models.RawRecord{record("Ana", "ana@uc.cl", "", "a.csv")})
	p2 := m.Merge([]models.RawRecord{record("Ana", "ana@uc.cl", "", "a.csv")})
	p3 := m.Merge([]models.RawRecord{record("Luis", "", "@luis", "a.csv")})

	assert.True(t, strings.HasPrefix(p1.ID, "per_"))
	assert.Len(t, p1.ID, len("per_")+12)
	assert.Equal(t, p1.ID, p2.ID)
	assert.NotEqual(t, p1.ID, p3.ID)
}

func TestMergeAllFollowsGroupOrder(t *testing.T) {
	groups := Group([]models.RawRecord{
		record("Luis", "", "@luis", "a.csv"),
		record("Ana", "ana@uc.cl", "", "a.csv"),
	})

	people := newTestMerger().MergeAll(groups)
	require.Len(t, people, 2)
	assert.Equal(t, "Luis", people[0].Name)
	assert.Equal(t, "Ana", people[1].Name)
}
