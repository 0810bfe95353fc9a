package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContainsFold(t *testing.T) {
	require.True(t, ContainsFold("Frozen II", "frozen"))
	require.True(t, ContainsFold("Frozen II", "ZEN i"))
	require.True(t, ContainsFold("Moana", ""))
	require.False(t, ContainsFold("Moana", "moana 2"))
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "toystory4", NormalizeName("  Toy Story\t4\n"))
}

func TestClosestMatch(t *testing.T) {
	candidates := []string{"Frozen", "Frozen II", "Incredibles 2", "Moana"}

	require.Equal(t, "Incredibles 2", ClosestMatch("incredible 2", candidates, 0.8))
	require.Equal(t, "Moana", ClosestMatch("Moanna", candidates, 0.8))
	require.Equal(t, "", ClosestMatch("Spirited Away", candidates, 0.8))
	require.Equal(t, "", ClosestMatch("   ", candidates, 0.8))
	require.Equal(t, "", ClosestMatch("Moana", nil, 0.8))
}
