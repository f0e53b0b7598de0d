package classifier

import "strings"

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "as": {}, "is": {}, "was": {}, "are": {}, "were": {},
	"be": {}, "been": {}, "has": {}, "have": {}, "had": {}, "will": {},
	"would": {}, "could": {}, "should": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "it": {}, "its": {}, "says": {}, "said": {},
}

// Tokenize lower-cases the text, strips everything but letters and digits,
// and drops stop words and single-character fragments.
func Tokenize(text string) []string {
	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
		} else {
			builder.WriteByte(' ')
		}
	}

	fields := strings.Fields(builder.String())
	tokens := fields[:0]
	for _, tok := range fields {
		if len(tok) < 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
