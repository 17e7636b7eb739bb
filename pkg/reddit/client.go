// Package reddit builds the platform client the bot uses to read
// subreddits and publish replies.
package reddit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	goreddit "github.com/vartanbeno/go-reddit/v2/reddit"

	"github.com/daniel-butler/whoisthat/pkg/config"
	"github.com/daniel-butler/whoisthat/pkg/errs"
)

// Options override the configured defaults for one client. Empty fields
// fall back to the defaults.
type Options struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Username     string
	Password     string

	// Endpoints and transport, mostly for tests.
	BaseURL    string
	TokenURL   string
	HTTPClient *http.Client
}

// Client is a reddit API client.
type Client struct {
	api       *goreddit.Client
	userAgent string
	username  string
}

// Post is a submission as listed by reddit.
type Post struct {
	ID        string
	FullID    string
	Subreddit string
	Title     string
	Body      string
	Permalink string
	CreatedAt time.Time
}

// UserAgent builds the default user agent for an application version.
func UserAgent(version string) string {
	return "WhoIsThat Bot/" + version
}

// BuildClient creates a client from opts, filling gaps from defaults.
// Username and password must be given together or not at all; a client
// without them is read-only.
func BuildClient(defaults config.Reddit, opts Options) (*Client, error) {
	id := firstNonEmpty(opts.ClientID, defaults.ClientID)
	secret := firstNonEmpty(opts.ClientSecret, defaults.ClientSecret)
	userAgent := firstNonEmpty(opts.UserAgent, defaults.UserAgent, UserAgent(defaults.AppVersion))
	username := firstNonEmpty(opts.Username, defaults.Username)
	password := firstNonEmpty(opts.Password, defaults.Password)

	if (username == "") != (password == "") {
		return nil, errs.ErrIncompatibleCredentials
	}

	ropts := []goreddit.Opt{goreddit.WithUserAgent(userAgent)}
	if opts.HTTPClient != nil {
		ropts = append(ropts, goreddit.WithHTTPClient(opts.HTTPClient))
	}
	if opts.BaseURL != "" {
		ropts = append(ropts, goreddit.WithBaseURL(opts.BaseURL))
	}
	if opts.TokenURL != "" {
		ropts = append(ropts, goreddit.WithTokenURL(opts.TokenURL))
	}

	var api *goreddit.Client
	var err error
	if username == "" {
		api, err = goreddit.NewReadonlyClient(ropts...)
	} else {
		api, err = goreddit.NewClient(goreddit.Credentials{
			ID:       id,
			Secret:   secret,
			Username: username,
			Password: password,
		}, ropts...)
	}
	if err != nil {
		return nil, fmt.Errorf("creating reddit client: %w", err)
	}

	return &Client{api: api, userAgent: userAgent, username: username}, nil
}

// UserAgent returns the user agent the client sends.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Authenticated reports whether the client acts as a reddit user and can
// therefore publish replies.
func (c *Client) Authenticated() bool {
	return c.username != ""
}

// NewPosts returns the newest submissions of a subreddit.
func (c *Client) NewPosts(ctx context.Context, subreddit string, limit int) ([]Post, error) {
	posts, _, err := c.api.Subreddit.NewPosts(ctx, subreddit, &goreddit.ListOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("listing r/%s: %w", subreddit, err)
	}

	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		post := Post{
			ID:        p.ID,
			FullID:    p.FullID,
			Subreddit: p.SubredditName,
			Title:     p.Title,
			Body:      p.Body,
			Permalink: p.Permalink,
		}
		if p.Created != nil {
			post.CreatedAt = p.Created.Time.UTC()
		}
		out = append(out, post)
	}
	return out, nil
}

// Reply comments on a post or comment identified by its full id (t3_…).
func (c *Client) Reply(ctx context.Context, parentFullID, text string) error {
	if !c.Authenticated() {
		return fmt.Errorf("%w: replying needs client_username and client_password", errs.ErrArgument)
	}
	if _, _, err := c.api.Comment.Submit(ctx, parentFullID, text); err != nil {
		return fmt.Errorf("replying to %s: %w", parentFullID, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
