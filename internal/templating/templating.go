// Package templating substitutes {{placeholder}} tokens in offer letters,
// campaign emails and AI prompts.
package templating

import (
	"html"
	"regexp"
	"sort"
)

var placeholder = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

type Options struct {
	// EscapeHTML escapes substituted values, not the template itself.
	EscapeHTML bool
}

type Result struct {
	Output string
	// Missing lists placeholders with no value, sorted and deduplicated.
	// They are left in the output untouched.
	Missing []string
}

// Render replaces every known placeholder in tpl with its value.
func Render(tpl string, values map[string]string, opts Options) Result {
	missing := map[string]struct{}{}
	out := placeholder.ReplaceAllStringFunc(tpl, func(token string) string {
		key := placeholder.FindStringSubmatch(token)[1]
		v, ok := values[key]
		if !ok {
			missing[key] = struct{}{}
			return token
		}
		if opts.EscapeHTML {
			return html.EscapeString(v)
		}
		return v
	})

	res := Result{Output: out}
	for k := range missing {
		res.Missing = append(res.Missing, k)
	}
	sort.Strings(res.Missing)
	return res
}

// Placeholders returns the distinct placeholder names used in tpl in order of
// first appearance.
func Placeholders(tpl string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(tpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
