package pokemonprovider

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		s      string
		length int
		want   string
	}{
		{name: "short", s: "pikachu", length: 10, want: "pikachu"},
		{name: "exact", s: "pikachu", length: 7, want: "pikachu"},
		{name: "ascii", s: "pikachu", length: 4, want: "pika..."},
		{name: "cut inside a rune", s: "flabébé", length: 5, want: "flab..."},
		{name: "on a rune boundary", s: "flabébé", length: 6, want: "flabé..."},
		{name: "cut inside the first rune", s: "ポケモン", length: 2, want: "..."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := truncate(tc.s, tc.length)
			require.Equal(t, tc.want, got)
			require.True(t, utf8.ValidString(got))
		})
	}

	t.Run("large body", func(t *testing.T) {
		t.Parallel()

		got := truncate("{"+strings.Repeat("é", 1000), 1000)
		require.True(t, utf8.ValidString(got))
		require.LessOrEqual(t, len(got), 1000+len("..."))
	})
}
