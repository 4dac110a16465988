package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestPlanTotal(t *testing.T) {
	c := New([]Entry{
		{Name: "a.npz", Size: 100},
		{Name: "b.npz", Size: 200},
	})

	plan, err := Resolve(c, []string{"*.npz"})
	require.NoError(t, err)
	require.Equal(t, int64(300), plan.Total())
	require.Len(t, plan.Files(), 2)
}

func TestPlanZeroMatches(t *testing.T) {
	c := New([]Entry{{Name: "a.npz", Size: 100}})

	plan, err := Resolve(c, []string{"missing*", "a.npz"})
	require.NoError(t, err)
	require.Len(t, plan.Sets, 2)
	require.Empty(t, plan.Sets[0].Files)
	require.Equal(t, int64(100), plan.Total())
}

func TestPlanOverlappingPatternsDoubleCount(t *testing.T) {
	c := New([]Entry{
		{Name: "alanine-dipeptide.npz", Size: 500},
		{Name: "alanine-dipeptide.pdb", Size: 50},
	})

	plan, err := Resolve(c, []string{"alanine*", "*.npz"})
	require.NoError(t, err)
	require.Equal(t, int64(1050), plan.Total())
	require.Equal(t, []string{
		"alanine-dipeptide.npz",
		"alanine-dipeptide.pdb",
		"alanine-dipeptide.npz",
	}, names(plan.Files()))
}

func TestResolveBadPattern(t *testing.T) {
	c := New([]Entry{{Name: "a.npz", Size: 100}})
	_, err := Resolve(c, []string{"a.npz", "[bad"})
	require.Error(t, err)
}
