package search

import "strings"

// Stop words to ignore when matching query terms against chunk text
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "what": true, "which": true, "who": true, "how": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// MatchedTerms returns the distinct query terms, in query order, that occur
// verbatim in text. Stop words are ignored.
func MatchedTerms(text, query string) []string {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return nil
	}

	docWords := make(map[string]bool)
	for _, word := range tokenizeAndFilter(text) {
		docWords[word] = true
	}

	seen := make(map[string]bool, len(queryWords))
	var matched []string
	for _, w := range queryWords {
		if docWords[w] && !seen[w] {
			seen[w] = true
			matched = append(matched, w)
		}
	}
	return matched
}
