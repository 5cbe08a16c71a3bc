// internal/reddit/types.go
package reddit

import (
	"fmt"
	"strings"
)

// MessageID is a message fullname, e.g. "t4_2abc9".
type MessageID string

type Message struct {
	ID      MessageID
	Author  string // empty when the platform reports no sender (deleted accounts, subreddit mail)
	Subject string
	Body    string
}

// HasAuthor reports whether the platform attributed the message to a user.
func (m Message) HasAuthor() bool { return m.Author != "" }

type ListPage struct {
	Messages []Message
	After    string // empty on the last page
}

// APIError carries the errors array of an api_type=json response.
type APIError struct {
	Endpoint string
	Errors   [][]string
}

func (e *APIError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, tuple := range e.Errors {
		parts = append(parts, strings.Join(tuple, ": "))
	}
	return fmt.Sprintf("reddit %s: %s", e.Endpoint, strings.Join(parts, "; "))
}
