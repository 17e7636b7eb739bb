// Package pipeline moves posts from reddit into the store and runs token
// extraction over the ones still pending.
package pipeline

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/daniel-butler/whoisthat/pkg/errs"
	"github.com/daniel-butler/whoisthat/pkg/extractor"
	"github.com/daniel-butler/whoisthat/pkg/reddit"
	"github.com/daniel-butler/whoisthat/pkg/reference"
	"github.com/daniel-butler/whoisthat/pkg/store"
)

// Lister lists the newest posts of a subreddit.
type Lister interface {
	NewPosts(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error)
}

// Replier publishes a comment under a post or comment full id.
type Replier interface {
	Reply(ctx context.Context, parentFullID, text string) error
}

// Pipeline ties the extractor to the store.
type Pipeline struct {
	store     *store.Store
	extractor *extractor.Extractor
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// New creates a Pipeline.
func New(s *store.Store, e *extractor.Extractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     s,
		extractor: e,
		logger:    slog.Default(),
		now:       time.Now,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IngestReport summarises one Ingest run.
type IngestReport struct {
	Run     string
	Fetched int
	Stored  int
	Skipped int
}

// Ingest stores the newest posts of src that are young enough to work on.
// Sources that are not listening are left alone.
func (p *Pipeline) Ingest(ctx context.Context, src store.Source, lister Lister, limit int) (IngestReport, error) {
	report := IngestReport{Run: p.runID()}
	log := p.logger.With("run", report.Run, "source", src.Name)

	if !src.ShouldListen() {
		log.Info("source not listening, skipping", "status", src.Status.Label(), "listen", src.Listen)
		return report, nil
	}

	posts, err := lister.NewPosts(ctx, src.Name, limit)
	if err != nil {
		return report, err
	}
	report.Fetched = len(posts)

	cutoff := src.Cutoff(p.now())
	for _, rp := range posts {
		if rp.CreatedAt.Before(cutoff) {
			report.Skipped++
			continue
		}
		_, err := p.store.UpsertPost(ctx, src, store.Post{
			ExternalID: rp.ID,
			Title:      rp.Title,
			Permalink:  rp.Permalink,
			CreatedAt:  rp.CreatedAt,
		})
		if errors.Is(err, errs.ErrValidation) {
			log.Warn("post rejected", "post", rp.ID, "error", err)
			report.Skipped++
			continue
		}
		if err != nil {
			return report, err
		}
		report.Stored++
	}

	log.Info("ingested", "fetched", report.Fetched, "stored", report.Stored, "skipped", report.Skipped)
	return report, nil
}

// TokenizeReport summarises one TokenizePending run.
type TokenizeReport struct {
	Run       string
	Posts     int
	Tokenized int
	Failed    int
	People    int
	Others    int
}

// TokenizePending extracts tokens for every pending post of src. A post
// whose extraction fails is logged and left pending for a later run.
func (p *Pipeline) TokenizePending(ctx context.Context, src store.Source) (TokenizeReport, error) {
	report := TokenizeReport{Run: p.runID()}
	log := p.logger.With("run", report.Run, "source", src.Name)

	if !src.IsActive() {
		log.Info("source not active, skipping", "status", src.Status.Label())
		return report, nil
	}

	pending, err := p.store.PendingPosts(ctx, src, p.now())
	if err != nil {
		return report, err
	}
	report.Posts = len(pending)

	for _, post := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		people, others, err := p.TokenizePost(ctx, post)
		if err != nil {
			log.Error("extraction failed", "post", post.ExternalID, "error", err)
			report.Failed++
			continue
		}
		report.Tokenized++
		report.People += people
		report.Others += others
	}

	log.Info("tokenized", "posts", report.Posts, "tokenized", report.Tokenized, "failed", report.Failed,
		"people", report.People, "others", report.Others)
	return report, nil
}

// TokenizePost extracts and records the tokens of one post, then marks it
// tokenized. It returns how many person and other tokens were recorded.
// Parser errors come back unchanged and leave the post pending.
func (p *Pipeline) TokenizePost(ctx context.Context, post store.Post) (people, others int, err error) {
	res, err := p.extractor.Extract(post.Title)
	if err != nil {
		return 0, 0, err
	}

	for _, name := range res.People {
		_, err := p.store.RecordPersonToken(ctx, post.ID, name)
		if errors.Is(err, errs.ErrValidation) {
			p.logger.Warn("person token rejected", "post", post.ExternalID, "error", err)
			continue
		}
		if err != nil {
			return people, others, err
		}
		people++
	}

	for _, tagged := range res.Others {
		pos, ok := reference.LookupPartOfSpeech(tagged.Label)
		if !ok {
			p.logger.Debug("label outside inventory, storing untagged",
				"post", post.ExternalID, "label", tagged.Label, "inventory", reference.PosInventoryVersion)
			pos = reference.PosNone
		}
		_, err := p.store.RecordNonPersonToken(ctx, post.ID, tagged.Text, pos)
		if errors.Is(err, errs.ErrValidation) {
			p.logger.Warn("token rejected", "post", post.ExternalID, "error", err)
			continue
		}
		if err != nil {
			return people, others, err
		}
		others++
	}

	if err := p.store.MarkTokenized(ctx, post.ID); err != nil {
		return people, others, err
	}
	return people, others, nil
}

// Reply publishes text under post if src allows it: the source must be
// active with auto_post set, and a post that still has unconfirmed person
// tokens only takes another reply when src allows multiple replies.
// It reports whether the reply was sent.
func (p *Pipeline) Reply(ctx context.Context, src store.Source, post store.Post, replier Replier, text string) (bool, error) {
	log := p.logger.With("run", p.runID(), "source", src.Name, "post", post.ExternalID)

	if post.SourceID != src.ID {
		return false, errs.Validation("post %s does not belong to source %s", post.ExternalID, src.Name)
	}
	if !src.ShouldPost() {
		log.Info("auto_post disabled, not replying", "status", src.Status.Label())
		return false, nil
	}

	unconfirmed, err := p.store.CountUnconfirmedPersonTokens(ctx, post.ID)
	if err != nil {
		return false, err
	}
	if !src.CanReply(unconfirmed) {
		log.Info("unconfirmed tokens pending, not replying", "unconfirmed", unconfirmed)
		return false, nil
	}

	if err := replier.Reply(ctx, "t3_"+post.ExternalID, text); err != nil {
		return false, err
	}
	log.Info("replied")
	return true, nil
}

func (p *Pipeline) runID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ulid.MustNew(ulid.Now(), p.entropy).String()
}
