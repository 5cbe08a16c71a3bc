// internal/runtime/redditapi.go adapts the Reddit OAuth HTTP API to our small interface
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/joshsymonds/flairbot/internal/reddit"
)

const maxErrorBody = 512

type redditClient struct {
	http *http.Client
	base string
}

// NewRedditAPIClient wraps an already authorized HTTP client.
func NewRedditAPIClient(hc *http.Client, apiBase string) *redditClient {
	return &redditClient{http: hc, base: strings.TrimRight(apiBase, "/")}
}

type listing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				Name    string `json:"name"`
				Author  string `json:"author"`
				Subject string `json:"subject"`
				Body    string `json:"body"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type jsonEnvelope struct {
	JSON struct {
		Errors [][]any `json:"errors"`
	} `json:"json"`
}

func (r *redditClient) Unread(ctx context.Context, after string, limit int) (reddit.ListPage, error) {
	q := url.Values{}
	q.Set("raw_json", "1")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if after != "" {
		q.Set("after", after)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.base+"/message/unread?"+q.Encode(), nil)
	if err != nil {
		return reddit.ListPage{}, err
	}
	var l listing
	if err := r.do(req, &l); err != nil {
		return reddit.ListPage{}, err
	}
	page := reddit.ListPage{After: l.Data.After}
	for _, child := range l.Data.Children {
		d := child.Data
		page.Messages = append(page.Messages, reddit.Message{
			ID:      reddit.MessageID(d.Name),
			Author:  d.Author,
			Subject: d.Subject,
			Body:    d.Body,
		})
	}
	return page, nil
}

func (r *redditClient) SetFlair(ctx context.Context, subreddit, user, text, class string) error {
	form := url.Values{
		"api_type":  {"json"},
		"name":      {user},
		"text":      {text},
		"css_class": {class},
	}
	return r.postJSONAPI(ctx, "/r/"+url.PathEscape(subreddit)+"/api/flair", form)
}

func (r *redditClient) SendMessage(ctx context.Context, to, subject, body string) error {
	form := url.Values{
		"api_type": {"json"},
		"to":       {to},
		"subject":  {subject},
		"text":     {body},
	}
	return r.postJSONAPI(ctx, "/api/compose", form)
}

func (r *redditClient) MarkRead(ctx context.Context, id reddit.MessageID) error {
	req, err := r.formRequest(ctx, "/api/read_message", url.Values{"id": {string(id)}})
	if err != nil {
		return err
	}
	return r.do(req, nil)
}

func (r *redditClient) postJSONAPI(ctx context.Context, path string, form url.Values) error {
	req, err := r.formRequest(ctx, path, form)
	if err != nil {
		return err
	}
	var env jsonEnvelope
	if err := r.do(req, &env); err != nil {
		return err
	}
	if len(env.JSON.Errors) == 0 {
		return nil
	}
	apiErr := &reddit.APIError{Endpoint: path}
	for _, tuple := range env.JSON.Errors {
		var parts []string
		for _, v := range tuple {
			if v == nil {
				continue
			}
			parts = append(parts, fmt.Sprint(v))
		}
		apiErr.Errors = append(apiErr.Errors, parts)
	}
	return apiErr
}

func (r *redditClient) formRequest(ctx context.Context, path string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

func (r *redditClient) do(req *http.Request, out any) error {
	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s %s: %s: %s",
			req.Method, req.URL.Path, resp.Status, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

var _ reddit.Client = (*redditClient)(nil)
