// internal/flair/service.go
package flair

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joshsymonds/flairbot/internal/rate"
	"github.com/joshsymonds/flairbot/internal/reddit"
	"github.com/joshsymonds/flairbot/internal/registry"
)

const (
	processedSubject = "Flair Request Processed!"
	invalidSubject   = "Flair Request Invalid!"
	defaultPageSize  = 100
)

// Journal records the outcome of each request. A nil Journal disables it.
type Journal interface {
	Success(user, text, class string) error
	Failure(user string) error
}

// Spec describes a single inbox pass.
type Spec struct {
	Subreddit string // community the flair is applied on
	Subject   string // exact subject a request must carry
	PageSize  int
	DryRun    bool
}

// Summary counts what a pass did.
type Summary struct {
	Applied  int
	Rejected int
	Skipped  int
}

type Service struct {
	Client   reddit.Client
	Limiter  rate.Limiter
	Logger   *slog.Logger
	Registry *registry.Registry
	Journal  Journal
}

// NewService constructs a Service. journal may be nil.
func NewService(
	client reddit.Client,
	limiter rate.Limiter,
	logger *slog.Logger,
	reg *registry.Registry,
	journal Journal,
) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if limiter == nil {
		limiter = rate.Unlimited{}
	}
	return &Service{
		Client:   client,
		Limiter:  limiter,
		Logger:   logger,
		Registry: reg,
		Journal:  journal,
	}
}

// Run processes every message that is unread when it starts, then returns.
// Rejected requests are not errors; any platform or journal failure aborts
// the pass.
func (s *Service) Run(ctx context.Context, spec Spec) (Summary, error) {
	var sum Summary
	msgs, err := s.fetchUnread(ctx, spec.PageSize)
	if err != nil {
		return sum, err
	}
	if len(msgs) == 0 {
		s.Logger.Info("no unread messages")
		return sum, nil
	}
	s.Logger.Info("processing inbox", "unread", len(msgs), "dry_run", spec.DryRun)

	for _, msg := range msgs {
		if !msg.HasAuthor() {
			// left unread for a later pass
			s.Logger.Debug("skipping message without author", "id", msg.ID)
			sum.Skipped++
			continue
		}
		applied, err := s.handle(ctx, spec, msg)
		if err != nil {
			return sum, fmt.Errorf("message %s from %s: %w", msg.ID, msg.Author, err)
		}
		if applied {
			sum.Applied++
		} else {
			sum.Rejected++
		}
		if err := s.markRead(ctx, spec, msg.ID); err != nil {
			return sum, fmt.Errorf("mark %s read: %w", msg.ID, err)
		}
	}
	return sum, nil
}

// fetchUnread materializes the whole unread listing before any message is
// touched, so marking messages read cannot shift the pages.
func (s *Service) fetchUnread(ctx context.Context, pageSize int) ([]reddit.Message, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	var all []reddit.Message
	after := ""
	for {
		if err := s.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := s.Client.Unread(ctx, after, pageSize)
		if err != nil {
			return nil, fmt.Errorf("list unread: %w", err)
		}
		all = append(all, page.Messages...)
		if page.After == "" || page.After == after {
			break
		}
		after = page.After
	}
	return all, nil
}

func (s *Service) handle(ctx context.Context, spec Spec, msg reddit.Message) (bool, error) {
	if msg.Subject != spec.Subject || !ValidUsername(msg.Author) {
		s.Logger.Info("rejecting non-request", "user", msg.Author, "subject", msg.Subject)
		return false, s.reject(ctx, spec, msg.Author)
	}

	req := ParseRequest(msg.Body)
	entry, ok := s.Registry.Lookup(req.Class)
	if !ok {
		s.Logger.Info("rejecting unknown class",
			"user", msg.Author, "class", req.Class, "format", req.Format)
		return false, s.reject(ctx, spec, msg.Author)
	}

	text := entry.Text
	if req.HasText {
		text = req.Text
	}
	text = Truncate(text)
	return true, s.apply(ctx, spec, msg.Author, text, req.Class)
}

func (s *Service) apply(ctx context.Context, spec Spec, user, text, class string) error {
	log := s.Logger.With("user", user, "class", class, "text", text)
	if spec.DryRun {
		log.Info("dry-run: would apply flair")
		return nil
	}
	if err := s.Limiter.Wait(ctx); err != nil {
		return err
	}
	if err := s.Client.SetFlair(ctx, spec.Subreddit, user, text, class); err != nil {
		return fmt.Errorf("set flair: %w", err)
	}
	if err := s.Limiter.Wait(ctx); err != nil {
		return err
	}
	if err := s.Client.SendMessage(ctx, user, processedSubject, processedBody(spec.Subreddit)); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	if s.Journal != nil {
		if err := s.Journal.Success(user, text, class); err != nil {
			return err
		}
	}
	log.Info("flair applied")
	return nil
}

func (s *Service) reject(ctx context.Context, spec Spec, user string) error {
	if spec.DryRun {
		s.Logger.Info("dry-run: would send rejection", "user", user)
		return nil
	}
	if err := s.Limiter.Wait(ctx); err != nil {
		return err
	}
	if err := s.Client.SendMessage(ctx, user, invalidSubject, invalidBody(spec.Subreddit)); err != nil {
		return fmt.Errorf("send rejection: %w", err)
	}
	if s.Journal != nil {
		if err := s.Journal.Failure(user); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) markRead(ctx context.Context, spec Spec, id reddit.MessageID) error {
	if spec.DryRun {
		return nil
	}
	if err := s.Limiter.Wait(ctx); err != nil {
		return err
	}
	return s.Client.MarkRead(ctx, id)
}

func processedBody(subreddit string) string {
	return fmt.Sprintf("Your flair request has been processed. The next time you visit /r/%s, "+
		"your flair should be applied!", subreddit)
}

func invalidBody(subreddit string) string {
	return fmt.Sprintf("If you are receiving this message your flair request was not accepted. "+
		"This is likely because you changed either the title or the body of your message.\n\n"+
		"Please ensure you have read and understood the instructions, then try again. "+
		"If the issue persists, send a [modmail](https://www.reddit.com/message/compose?to=%%2Fr%%2F%s).",
		subreddit)
}
