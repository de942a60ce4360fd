package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "https://ex.com/a", "https://ex.com/a"},
		{"drops query", "https://ex.com/a?x=1", "https://ex.com/a"},
		{"drops fragment", "https://ex.com/a#frag", "https://ex.com/a"},
		{"drops both", "https://ex.com/a?x=1&y=2#frag", "https://ex.com/a"},
		{"strips trailing slash", "https://ex.com/a/", "https://ex.com/a"},
		{"strips repeated trailing slashes", "https://ex.com/a//", "https://ex.com/a"},
		{"bare host", "https://ex.com/", "https://ex.com"},
		{"bare host double slash", "https://ex.com//", "https://ex.com"},
		{"empty query kept out", "https://ex.com/a?", "https://ex.com/a"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizeURL(tc.in))
		})
	}
}

func TestNormalizeURLIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://ex.com/a?x=1#frag",
		"https://ex.com/products/item/",
		"https://ex.com",
		"https://ex.com//",
		"https://ex.com/a//",
		"http://ex.com:8080/path?q=v",
		"not a url at all//",
		"",
	}
	for _, in := range inputs {
		once := NormalizeURL(in)
		require.Equal(t, once, NormalizeURL(once), "normalize must be idempotent for %q", in)
	}
}

func TestSameDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		seed string
		want bool
	}{
		{"same host", "https://ex.com/a", "https://ex.com", true},
		{"different host", "https://other.com/a", "https://ex.com", false},
		{"subdomain differs", "https://www.ex.com/a", "https://ex.com", false},
		{"port differs", "https://ex.com:8080/a", "https://ex.com", false},
		{"case sensitive", "https://EX.com/a", "https://ex.com", false},
		{"relative url", "/a/b", "https://ex.com", false},
		{"empty url", "", "https://ex.com", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, SameDomain(tc.url, tc.seed))
		})
	}
}

func TestPathKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty path", "https://ex.com", "home"},
		{"root path", "https://ex.com/", "home"},
		{"single segment", "https://ex.com/about", "about"},
		{"nested path flattens", "https://ex.com/products/item1", "products-item1"},
		{"upper case lowered", "https://ex.com/About-Us", "about-us"},
		{"percent decoded", "https://ex.com/caf%C3%A9", "café"},
		{"reserved chars replaced", "https://ex.com/a%3Fb%2Ac", "a-b-c"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, PathKey(NormalizeURL(tc.in)))
		})
	}
}

func TestPathKeyDeterministic(t *testing.T) {
	t.Parallel()

	u := NormalizeURL("https://ex.com/Shop/Category%20One")
	require.Equal(t, PathKey(u), PathKey(u))
}
