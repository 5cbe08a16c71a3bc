package flair

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxTextLen is the longest flair text Reddit accepts, in characters.
const MaxTextLen = 64

// Format records which rule interpreted a message body.
type Format int

const (
	// FormatTokenized is the line exported by the flair picker site,
	// e.g. "Class: warrior, Elite Warrior".
	FormatTokenized Format = iota + 1
	// FormatDirect is a hand-written PM naming the class directly.
	FormatDirect
)

func (f Format) String() string {
	switch f {
	case FormatTokenized:
		return "tokenized"
	case FormatDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// Request is a message body interpreted as a flair request.
type Request struct {
	Class   string
	Text    string
	HasText bool // text followed the first comma
	Format  Format
}

// validName matches from the start of the name only; trailing characters
// outside the set are tolerated.
var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+`)

// ValidUsername reports whether name starts with at least one permitted
// character.
func ValidUsername(name string) bool {
	return validName.MatchString(name)
}

// ParseRequest splits body on its first comma. The head names the class:
// when it holds two or more whitespace separated tokens the last one wins,
// otherwise the whole head is the class. The tail, if any, is the flair text.
func ParseRequest(body string) Request {
	head, tail, hasTail := strings.Cut(body, ",")
	head = strings.TrimRightFunc(head, unicode.IsSpace)

	req := Request{Class: head, Format: FormatDirect}
	if tokens := strings.Fields(head); len(tokens) >= 2 {
		req.Class = tokens[len(tokens)-1]
		req.Format = FormatTokenized
	}
	if hasTail {
		req.Text = Truncate(strings.TrimLeftFunc(tail, unicode.IsSpace))
		req.HasText = true
	}
	return req
}

// Truncate cuts s to at most MaxTextLen characters.
func Truncate(s string) string {
	n := 0
	for i := range s {
		if n == MaxTextLen {
			return s[:i]
		}
		n++
	}
	return s
}
