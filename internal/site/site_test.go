package site

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	r, params := Match("/product/abc-123")
	assert.Equal(t, "product", r.Name)
	assert.Equal(t, map[string]string{"id": "abc-123"}, params)

	r, _ = Match("/shop/")
	assert.Equal(t, "shop", r.Name)

	r, _ = Match("/")
	assert.Equal(t, "home", r.Name)

	for _, p := range []string{"/product", "/product/a/b", "/nope", "/admin/x"} {
		r, _ = Match(p)
		assert.Equal(t, "not-found", r.Name, p)
	}
}

func TestLoadPages(t *testing.T) {
	require.NotPanics(t, MustLoadPages)

	terms, ok := LoadPage("terms-of-service")
	require.True(t, ok)
	assert.Equal(t, "Terms of Service", terms.Title)
	assert.True(t, strings.HasPrefix(terms.Body, "# Terms of Service"))

	_, ok = LoadPage("shop")
	assert.False(t, ok)

	for _, r := range Routes {
		if r.Page == "" {
			continue
		}
		_, ok := LoadPage(r.Page)
		assert.True(t, ok, "route %s has page %s", r.Path, r.Page)
	}
}

func TestSitemap(t *testing.T) {
	now := time.Date(2025, 12, 23, 10, 30, 0, 0, time.UTC)
	body, err := Sitemap("https://chaeen.example.com/", []string{"p1", "p2"}, now)
	require.NoError(t, err)

	out := string(body)
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, out, "<loc>https://chaeen.example.com/</loc>")
	assert.Contains(t, out, "<loc>https://chaeen.example.com/product/p2</loc>")
	assert.Contains(t, out, "<lastmod>2025-12-23T10:30:00.000Z</lastmod>")
	assert.Equal(t, len(StaticPaths())+2, strings.Count(out, "<url>"))
	assert.Equal(t, strings.Count(out, "<url>"), strings.Count(out, "<changefreq>weekly</changefreq>"))
	assert.NotContains(t, out, ":id")
}

func TestRobotsAndManifest(t *testing.T) {
	assert.Equal(t, "User-agent: *\nAllow: /\nSitemap: https://chaeen.example.com/sitemap.xml\n", string(Robots("https://chaeen.example.com/")))

	var m map[string]any
	require.NoError(t, json.Unmarshal(Manifest(), &m))
	assert.Equal(t, "CHAEEN MATCHA", m["name"])
	assert.Equal(t, "CHAEEN", m["short_name"])
	assert.Equal(t, "#1F6F63", m["theme_color"])
	icons := m["icons"].([]any)
	require.Len(t, icons, 1)
	assert.Equal(t, "/favicon.png", icons[0].(map[string]any)["src"])
}

func TestWriteStatic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public")
	written, err := WriteStatic(dir, "https://chaeen.example.com", []string{"p1"}, time.Now())
	require.NoError(t, err)
	require.Len(t, written, 3)
	for _, name := range []string{SitemapFile, RobotsFile, ManifestFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
