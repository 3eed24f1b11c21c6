// Package docs holds the embedded help topics shown by `shobdo docs` and the TUI's
// help screen.
package docs

import (
	"bufio"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

// Topic describes one help page. Title is the page's first heading.
type Topic struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Topics lists topic names, sorted.
func Topics() []string {
	names, _ := fs.Glob(contentFS, "content/*.md")
	out := make([]string, 0, len(names))
	for _, p := range names {
		out = append(out, strings.TrimSuffix(path.Base(p), ".md"))
	}
	sort.Strings(out)
	return out
}

// List returns every topic with its title.
func List() []Topic {
	names := Topics()
	out := make([]Topic, 0, len(names))
	for _, n := range names {
		body, _ := Get(n)
		out = append(out, Topic{Name: n, Title: title(body, n)})
	}
	return out
}

// Get returns a topic's markdown. Names are case-insensitive; anything that looks
// like a path is rejected.
func Get(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return "", false
	}
	b, err := contentFS.ReadFile("content/" + name + ".md")
	if err != nil {
		return "", false
	}
	return string(b), true
}

func title(body, fallback string) string {
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		if t, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), "# "); ok {
			return strings.TrimSpace(t)
		}
	}
	return fallback
}
