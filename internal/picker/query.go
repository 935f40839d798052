package picker

import (
	"sort"
	"strings"
)

// ParseQuery splits raw search bar input into fetch options. Tokens of the
// form @key=value become options (the last value wins for repeated keys); all
// other tokens are rejoined with single spaces under the reserved "query" key.
func ParseQuery(raw string) map[string]string {
	options := make(map[string]string)
	var words []string

	for _, word := range strings.Fields(raw) {
		if rest, ok := strings.CutPrefix(word, "@"); ok {
			if key, value, found := strings.Cut(rest, "="); found && key != "" {
				options[key] = value
				continue
			}
		}
		words = append(words, word)
	}

	if len(words) > 0 {
		options["query"] = strings.Join(words, " ")
	}
	return options
}

// formatOptions renders active fetch options for the status bar, free text
// first and the remaining keys in stable order.
func formatOptions(options map[string]string) string {
	if len(options) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Search:")
	if query, ok := options["query"]; ok {
		b.WriteByte(' ')
		b.WriteString(query)
	}

	keys := make([]string, 0, len(options))
	for key := range options {
		if key != "query" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(" @")
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(options[key])
	}
	return b.String()
}
