package spider

import "strings"

// DefaultSlug is used when no title heading can name a record.
const DefaultSlug = "output"

// Record is one species fact sheet. It is assembled once by the detail parser
// and never mutated afterwards; stores only append records.
type Record struct {
	Slug        string  // sanitized record name, never empty
	Title       string  // raw page heading, NA when missing
	Description string  // NA when missing
	Fields      *Fields // sanitized key -> escaped text or NA
	ImageURL    string  // distribution map, empty when absent
	References  string  // bibliography text, empty when absent
	SourceURL   string  // detail page the record was built from
}

// Field returns the value stored under key, or NA.
func (r *Record) Field(key string) string {
	if v, ok := r.Fields.Get(key); ok {
		return v
	}
	return NA
}

var htmlEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
	`'`, "&#x27;",
)

// EscapeHTML entity-escapes the five HTML special characters. Quotes are
// written as &quot; and &#x27;.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
