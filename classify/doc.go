// Package classify provides the rule-based document classifier.
//
// Classification looks for fixed keywords in the upper-cased text, checking
// the most specific document types first. Field extraction runs a small set
// of regular expressions per document type. Both operations are pure and
// never fail; the error results exist only to satisfy ai.Classifier.
package classify
