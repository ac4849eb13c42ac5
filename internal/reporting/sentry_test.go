package reporting

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		error string
		want  string
	}{
		{
			name:  "timeout",
			error: `failed to send request: Get "https://pokeapi.co/api/v2/pokemon/pikachu": context deadline exceeded (Client.Timeout exceeded while awaiting headers)`,
			want:  `failed to send request: Get "https://pokeapi.co/api/v2/pokemon/<name>": context deadline exceeded (Client.Timeout exceeded while awaiting headers)`,
		},
		{
			name:  "connection reset by peer",
			error: `failed to send request: Get "https://pokeapi.co/api/v2/pokemon/mr-mime": read tcp [dead:beef:feb1:d745::c001]:64079->[dead:beef::6811:112a]:443: read: connection reset by peer`,
			want:  `failed to send request: Get "https://pokeapi.co/api/v2/pokemon/<name>": read tcp <host>-><host>: read: connection reset by peer`,
		},
		{
			name:  "ipv4",
			error: `failed to send request: Get "https://pokeapi.co/api/v2/pokemon/eevee": dial tcp 104.21.12.3:443: connect: connection refused`,
			want:  `failed to send request: Get "https://pokeapi.co/api/v2/pokemon/<name>": dial tcp <host>: connect: connection refused`,
		},
		{
			name:  "nothing to sanitize",
			error: `failed to parse pokeapi response: unexpected end of JSON input`,
			want:  `failed to parse pokeapi response: unexpected end of JSON input`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, sanitizeError(tc.error))
		})
	}

	t.Run("misc ipv6", func(t *testing.T) {
		t.Parallel()

		for _, ip := range []string{`1:2:3:4:5:6:7:8`, `1::`, `1::8`, `::2:3:4:5:6:7:8`, `::`} {
			t.Run(ip, func(t *testing.T) {
				t.Parallel()

				require.Equal(t, "<host>", sanitizeError(fmt.Sprintf("[%s]:1234", ip)))
			})
		}
	})
}

func TestReportWithoutHub(t *testing.T) {
	t.Parallel()

	// Must not panic when Sentry is not configured
	Report(t.Context(), fmt.Errorf("some error"), map[string]string{"key": "value"})
	Report(t.Context(), nil)
}

func TestAddMetaMiddleware(t *testing.T) {
	t.Parallel()

	called := false
	handler := NewAddMetaMiddleware("pokemon")(func(w http.ResponseWriter, r *http.Request) {
		called = true

		meta := MetaFromContext(r.Context())
		require.Equal(t, map[string]string{
			"port":       "pokemon",
			"userAgent":  "pokedex/1.0",
			"methodPath": "GET /v1/pokemon/pikachu",
		}, meta.tags)
		require.False(t, meta.startedAt.IsZero())
	})

	req := httptest.NewRequest(http.MethodGet, "http://example.com/v1/pokemon/pikachu", nil)
	req.Header.Set("User-Agent", "pokedex/1.0")
	handler(httptest.NewRecorder(), req)

	require.True(t, called)
}

func TestMetaFromContext(t *testing.T) {
	t.Parallel()

	ctx := AddTagsToContext(t.Context(), map[string]string{"tag": "1"})
	ctx = AddExtrasToContext(ctx, map[string]string{"name": "pikachu"})

	meta := MetaFromContext(ctx)
	require.Equal(t, map[string]string{"tag": "1"}, meta.tags)
	require.Equal(t, map[string]string{"name": "pikachu"}, meta.extras)

	// Mutating the copy does not affect the context
	meta.extras["name"] = "eevee"
	require.Equal(t, "pikachu", MetaFromContext(ctx).extras["name"])

	empty := MetaFromContext(t.Context())
	require.Empty(t, empty.tags)
	require.Empty(t, empty.extras)
}
