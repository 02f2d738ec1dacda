// Package mail classifies message subjects as spam with a keyword lexicon.
//
// The rule is intentionally crude: a subject is spam when at least
// SpamThreshold lexicon keywords occur anywhere in it as case-insensitive
// substrings. There are no word boundaries, so "congratulationsXYZ" matches
// "congratulations", and overlapping keywords each count.
package mail

import (
	"fmt"
	"strings"
)

// SpamThreshold is the number of keyword hits that makes a subject spam.
const SpamThreshold = 2

// Lexicon is an ordered list of lowercase spam keywords.
type Lexicon []string

// DefaultLexicon is the keyword list used when none is configured.
var DefaultLexicon = Lexicon{
	"urgent",
	"action required",
	"account suspended",
	"password reset",
	"verify your account",
	"limited offer",
	"you won",
	"free",
	"congratulations",
	"click here",
	"bank",
	"paypal",
	"security alert",
}

// NewLexicon lowercases keywords and rejects blank ones.
func NewLexicon(keywords ...string) (Lexicon, error) {
	lex := make(Lexicon, 0, len(keywords))
	for i, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			return nil, fmt.Errorf("lexicon keyword %d is empty", i)
		}
		lex = append(lex, strings.ToLower(kw))
	}
	return lex, nil
}

// LexiconMatch is the outcome of matching one subject against a lexicon.
type LexiconMatch struct {
	Count    int      `json:"count"`
	Keywords []string `json:"keywords"`
}

// IsSpam applies SpamThreshold to the match count.
func (m LexiconMatch) IsSpam() bool {
	return m.Count >= SpamThreshold
}

// Match counts the lexicon keywords found in subject.
func Match(subject string, lexicon Lexicon) LexiconMatch {
	lower := strings.ToLower(subject)
	m := LexiconMatch{Keywords: []string{}}
	for _, kw := range lexicon {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(lower, kw) {
			m.Count++
			m.Keywords = append(m.Keywords, kw)
		}
	}
	return m
}

// Classify reports whether subject is spam under lexicon.
func Classify(subject string, lexicon Lexicon) bool {
	return Match(subject, lexicon).IsSpam()
}

// Badge returns the label rendered next to a message.
func Badge(isSpam bool) string {
	if isSpam {
		return "SPAM"
	}
	return "SAFE"
}
