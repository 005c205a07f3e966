package site

import (
	"embed"
	"fmt"
	"sort"
)

//go:embed pages/*.md
var pagesFS embed.FS

// Page is a static informational page. Body is markdown.
type Page struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Body     string `json:"body"`
}

// NotFoundPage is rendered for unmatched routes and missing products.
var NotFoundPage = Page{
	Slug:     "not-found",
	Title:    "404 Page Not Found",
	Subtitle: "The page you are looking for does not exist.",
}

var pageMeta = map[string]Page{
	"home":             {Title: "CHAEEN MATCHA", Subtitle: "Ceremonial Grade A matcha from Shizuoka"},
	"about":            {Title: "The Ritual of Cha", Subtitle: "Our Philosophy"},
	"contact":          {Title: "Connect With Us", Subtitle: "Let's Share the Ritual"},
	"terms-of-service": {Title: "Terms of Service", Subtitle: "Please read these terms carefully before using our services"},
	"privacy-policy":   {Title: "Privacy Policy", Subtitle: "Learn how we protect and handle your personal information"},
}

// LoadPage returns the static page for slug.
func LoadPage(slug string) (Page, bool) {
	meta, ok := pageMeta[slug]
	if !ok {
		return Page{}, false
	}
	body, err := pagesFS.ReadFile("pages/" + slug + ".md")
	if err != nil {
		return Page{}, false
	}
	meta.Slug = slug
	meta.Body = string(body)
	return meta, true
}

// PageSlugs lists every static page slug in a stable order.
func PageSlugs() []string {
	out := make([]string, 0, len(pageMeta))
	for slug := range pageMeta {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

// MustLoadPages verifies every page has content. Used at startup.
func MustLoadPages() {
	for _, slug := range PageSlugs() {
		if _, ok := LoadPage(slug); !ok {
			panic(fmt.Sprintf("site: missing page content for %q", slug))
		}
	}
}
