package code

import (
	"bytes"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"pylon/internal/domain"
)

func TestWordListIsSortedAndUnique(t *testing.T) {
	require.True(t, sort.StringsAreSorted(words[:]))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		require.False(t, seen[w], w)
		seen[w] = true
		require.True(t, IsWord(w))
	}
	require.False(t, IsWord("zzz"))
}

func TestGenerate(t *testing.T) {
	c, err := Generate("7", 2, bytes.NewReader([]byte{0, 255}))
	require.NoError(t, err)
	require.Equal(t, domain.Code("7-"+words[0]+"-"+words[255]), c)
	require.Equal(t, domain.Nameplate("7"), c.Nameplate())

	c, err = Generate("42", 3, nil)
	require.NoError(t, err)
	require.Len(t, strings.Split(string(c), "-"), 4)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := Generate("7", 0, nil)
	require.ErrorIs(t, err, ErrLength)
	_, err = Generate("7", MaxWords+1, nil)
	require.ErrorIs(t, err, ErrLength)
	_, err = Generate("seven", 2, nil)
	require.ErrorIs(t, err, ErrNameplate)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, domain.Code("7-guitar-ocean"), Normalize("  7 Guitar  OCEAN "))
	require.Equal(t, domain.Code("7-guitar-ocean"), Normalize("7--guitar-ocean"))
}

func TestParse(t *testing.T) {
	np, ws, err := Parse("12-guitar-ocean")
	require.NoError(t, err)
	require.Equal(t, domain.Nameplate("12"), np)
	require.Equal(t, []string{"guitar", "ocean"}, ws)

	for _, bad := range []domain.Code{"", "12", "x-guitar", "12-gu1tar", "12-guitar-"} {
		_, _, err := Parse(bad)
		require.Error(t, err, string(bad))
	}
}
