// Package sanitize strips storefront markup out of free text before it is
// embedded in a model prompt. Product descriptions arrive as raw HTML; left
// as-is, tags and entity references corrupt the prompt structure and give
// hostile descriptions a channel to smuggle instructions to the model.
package sanitize

import "regexp"

// markupRE matches HTML tags, character entity references, and newlines.
var markupRE = regexp.MustCompile(`<[^>]*>|&[^;]*;|\n`)

// Strip removes markup tags, entity references, and line breaks from s,
// preserving all other characters and their relative order. Pure and total:
// it never fails, and input already free of markup is returned unchanged.
func Strip(s string) string {
	if s == "" {
		return ""
	}
	return markupRE.ReplaceAllString(s, "")
}
