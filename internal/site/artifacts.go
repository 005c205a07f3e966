package site

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	SitemapFile  = "sitemap.xml"
	RobotsFile   = "robots.txt"
	ManifestFile = "manifest.webmanifest"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Sitemap lists every static route plus one detail page per product id.
func Sitemap(siteURL string, productIDs []string, now time.Time) ([]byte, error) {
	base := strings.TrimRight(siteURL, "/")
	lastMod := now.UTC().Format("2006-01-02T15:04:05.000Z")

	paths := StaticPaths()
	for _, id := range productIDs {
		paths = append(paths, "/product/"+id)
	}

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range paths {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        base + p,
			LastMod:    lastMod,
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}
	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return append([]byte(`<?xml version="1.0" encoding="UTF-8"?>`+"\n"), body...), nil
}

func Robots(siteURL string) []byte {
	return []byte("User-agent: *\nAllow: /\nSitemap: " + strings.TrimRight(siteURL, "/") + "/sitemap.xml\n")
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type webManifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []manifestIcon `json:"icons"`
}

func Manifest() []byte {
	m := webManifest{
		Name:            "CHAEEN MATCHA",
		ShortName:       "CHAEEN",
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: "#ffffff",
		ThemeColor:      "#1F6F63",
		Icons:           []manifestIcon{{Src: "/favicon.png", Sizes: "512x512", Type: "image/png"}},
	}
	body, _ := json.MarshalIndent(m, "", "  ")
	return body
}

// WriteStatic writes the sitemap, robots file and manifest into dir.
func WriteStatic(dir, siteURL string, productIDs []string, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	sitemap, err := Sitemap(siteURL, productIDs, now)
	if err != nil {
		return nil, err
	}
	files := []struct {
		name string
		body []byte
	}{
		{SitemapFile, sitemap},
		{RobotsFile, Robots(siteURL)},
		{ManifestFile, Manifest()},
	}
	written := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.body, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
