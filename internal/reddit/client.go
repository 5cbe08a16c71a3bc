package reddit

import "context"

// Client is the narrow Reddit surface required by flairbot.
type Client interface {
	Unread(ctx context.Context, after string, limit int) (ListPage, error)
	SetFlair(ctx context.Context, subreddit, user, text, class string) error
	SendMessage(ctx context.Context, to, subject, body string) error
	MarkRead(ctx context.Context, id MessageID) error
}
