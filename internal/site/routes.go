// Package site describes the storefront's public routes, static pages and
// the crawler artifacts generated from them.
package site

import "strings"

// Route is a user-facing path. Parameterized routes are left out of the sitemap.
type Route struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Page    string `json:"page,omitempty"`
	Sitemap bool   `json:"-"`
}

// Routes lists the user agent routes in match order. The catch-all comes last.
var Routes = []Route{
	{Path: "/", Name: "home", Page: "home", Sitemap: true},
	{Path: "/shop", Name: "shop", Sitemap: true},
	{Path: "/product/:id", Name: "product"},
	{Path: "/admin", Name: "admin", Sitemap: true},
	{Path: "/about", Name: "about", Page: "about", Sitemap: true},
	{Path: "/contact", Name: "contact", Page: "contact", Sitemap: true},
	{Path: "/terms-of-service", Name: "terms-of-service", Page: "terms-of-service", Sitemap: true},
	{Path: "/privacy-policy", Name: "privacy-policy", Page: "privacy-policy", Sitemap: true},
	{Path: "*", Name: "not-found"},
}

// Match resolves a request path to a route and its parameters.
func Match(path string) (Route, map[string]string) {
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	for _, r := range Routes {
		if r.Path == "*" {
			return r, nil
		}
		if params, ok := matchPattern(r.Path, path); ok {
			return r, params
		}
	}
	return Routes[len(Routes)-1], nil
}

func matchPattern(pattern, path string) (map[string]string, bool) {
	pp := strings.Split(strings.Trim(pattern, "/"), "/")
	sp := strings.Split(strings.Trim(path, "/"), "/")
	if len(pp) != len(sp) {
		return nil, false
	}
	var params map[string]string
	for i := range pp {
		if name, ok := strings.CutPrefix(pp[i], ":"); ok {
			if sp[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = sp[i]
			continue
		}
		if pp[i] != sp[i] {
			return nil, false
		}
	}
	return params, true
}

// StaticPaths returns the sitemap-eligible route paths.
func StaticPaths() []string {
	var out []string
	for _, r := range Routes {
		if r.Sitemap {
			out = append(out, r.Path)
		}
	}
	return out
}
