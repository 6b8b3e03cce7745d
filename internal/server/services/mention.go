package services

import "regexp"

// Word characters are Unicode letters, digits and underscore, so Cyrillic
// handles are matched too.
var mentionRe = regexp.MustCompile(`@([\p{L}\p{N}_]+)`)

// ExtractMentions returns the handles named with @handle in text, without the
// @, de-duplicated in first-seen order. It returns nil when there are none.
func ExtractMentions(text string) []string {
	matches := mentionRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}
