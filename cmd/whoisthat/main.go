package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/daniel-butler/whoisthat/pkg/config"
	"github.com/daniel-butler/whoisthat/pkg/extractor"
	"github.com/daniel-butler/whoisthat/pkg/ner"
	"github.com/daniel-butler/whoisthat/pkg/pipeline"
	"github.com/daniel-butler/whoisthat/pkg/reddit"
	"github.com/daniel-butler/whoisthat/pkg/reference"
	"github.com/daniel-butler/whoisthat/pkg/store"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printUsage()
		return nil
	}

	cmd := args[0]
	switch cmd {
	case "version", "-version", "--version":
		fmt.Println(Version)
		return nil
	case "help", "-h", "--help":
		printUsage()
		return nil
	}

	cfg, err := config.Load(Version)
	if err != nil {
		return err
	}
	a := &app{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})),
	}
	slog.SetDefault(a.logger)

	switch cmd {
	case "sources":
		return a.cmdSources(ctx, args[1:])
	case "ingest":
		return a.cmdIngest(ctx, args[1:])
	case "tokenize":
		return a.cmdTokenize(ctx, args[1:])
	case "tokens":
		return a.cmdTokens(ctx, args[1:])
	case "review":
		return a.cmdReview(ctx, args[1:])
	case "find":
		return a.cmdFind(ctx, args[1:])
	case "reply":
		return a.cmdReply(ctx, args[1:])
	case "tags":
		return cmdTags()
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage() {
	fmt.Println(`whoisthat - Find the people named in subreddit posts

Commands:
  sources sync   Load sources from YAML into the database
                   -file <path>  (default: $WHOISTHAT_SOURCES or sources.yaml)
  sources list   Show monitored sources
  ingest [name]  Fetch new posts for one or all listening sources
                   -n <count>    Posts to fetch per source (default 50)
  tokenize [name]
                 Extract tokens from pending posts
  tokens <id>    Show tokens extracted from a reddit post id
  review person <token-id> -confirmed <true|false|unknown> -corrected <...>
  review nonperson <token-id> -pos <TAG> -translation <name>
                 Only the flags given are changed
  find <name>    Show posts where a person token appears
  reply <id> <text>
                 Reply to a post if its source allows it
  tags           Show the part-of-speech inventory
  version        Show version
  help           Show this help

Environment:
  REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET   Reddit app credentials
  REDDIT_USERNAME, REDDIT_PASSWORD         Reddit account (both or neither)
  REDDIT_USER_AGENT                        User agent override
  WHOISTHAT_PARSER_MODEL                   NER model (default: prose/v2)
  WHOISTHAT_DB_DRIVER                      sqlite or postgres
  WHOISTHAT_DB                             Database path or DSN
  WHOISTHAT_LOG_LEVEL                      debug, info, warn, error`)
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	driver := store.Driver(a.cfg.DatabaseDriver)
	if driver == store.SQLite && a.cfg.DatabaseURL != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(a.cfg.DatabaseURL), 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}
	return store.Open(ctx, driver, a.cfg.DatabaseURL)
}

// selectSources returns the named source, or all sources when name is empty.
func selectSources(ctx context.Context, s *store.Store, name string) ([]store.Source, error) {
	if name == "" {
		return s.ListSources(ctx)
	}
	src, err := s.GetSourceByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("source not found: %s", name)
	}
	return []store.Source{*src}, nil
}

func (a *app) cmdSources(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: whoisthat sources <sync|list>")
	}

	fs := flag.NewFlagSet("sources", flag.ContinueOnError)
	file := fs.String("file", a.cfg.SourcesPath, "Sources YAML file")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	switch args[0] {
	case "sync":
		sources, err := config.LoadSources(*file)
		if err != nil {
			return fmt.Errorf("loading sources: %w", err)
		}
		synced, err := s.SyncSources(ctx, sources)
		if err != nil {
			return err
		}
		fmt.Printf("Synced %d sources from %s\n", len(synced), *file)
		return nil
	case "list":
		sources, err := s.ListSources(ctx)
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			fmt.Println("No sources yet. Run 'whoisthat sources sync' first.")
			return nil
		}
		for _, src := range sources {
			fmt.Printf("%-21s %-9s listen=%t auto_post=%t multi_reply=%t max_age=%dd\n",
				src.Name, src.Status.Label(), src.Listen, src.AutoPost, src.AllowMultipleRepliesInPost, src.MaxPostAgeDays)
		}
		return nil
	default:
		return fmt.Errorf("unknown sources command: %s", args[0])
	}
}

func (a *app) cmdIngest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	limit := fs.Int("n", 50, "Posts to fetch per source")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := reddit.BuildClient(a.cfg.Reddit, reddit.Options{})
	if err != nil {
		return err
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	sources, err := selectSources(ctx, s, fs.Arg(0))
	if err != nil {
		return err
	}

	p := pipeline.New(s, nil, pipeline.WithLogger(a.logger))
	var total int
	for _, src := range sources {
		report, err := p.Ingest(ctx, src, client, *limit)
		if err != nil {
			a.logger.Error("ingest failed", "source", src.Name, "error", err)
			continue
		}
		total += report.Stored
		fmt.Printf("  %s: %d fetched, %d stored, %d skipped\n", src.Name, report.Fetched, report.Stored, report.Skipped)
	}
	fmt.Printf("\nTotal: %d posts stored from %d sources\n", total, len(sources))
	return nil
}

func (a *app) cmdTokenize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tokenize", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Without a parser there is nothing to do, so a load failure is fatal.
	parser, err := ner.Load(a.cfg.ParserModel)
	if err != nil {
		return fmt.Errorf("loading parser: %w", err)
	}
	a.logger.Debug("parser loaded", "model", parser.Name(), "inventory", reference.PosInventoryVersion)

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	sources, err := selectSources(ctx, s, fs.Arg(0))
	if err != nil {
		return err
	}

	p := pipeline.New(s, extractor.New(parser), pipeline.WithLogger(a.logger))
	for _, src := range sources {
		report, err := p.TokenizePending(ctx, src)
		if err != nil {
			return fmt.Errorf("tokenizing %s: %w", src.Name, err)
		}
		fmt.Printf("  %s: %d pending, %d tokenized, %d failed (%d people, %d others)\n",
			src.Name, report.Posts, report.Tokenized, report.Failed, report.People, report.Others)
	}
	return nil
}

func (a *app) cmdTokens(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: whoisthat tokens <reddit-post-id>")
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	post, err := s.GetPostByExternalID(ctx, args[0])
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("post not found: %s", args[0])
	}

	people, err := s.PersonTokens(ctx, post.ID)
	if err != nil {
		return err
	}
	others, err := s.NonPersonTokens(ctx, post.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Post %s: %s (tokenized: %s)\n\n", post.ExternalID, post.Title, post.Tokenized)
	fmt.Println("People:")
	for _, t := range people {
		fmt.Printf("  [%d] %s  confirmed=%s corrected=%s\n", t.ID, t.Token, t.Confirmed, t.Corrected)
	}
	fmt.Println("Others:")
	for _, t := range others {
		line := fmt.Sprintf("  [%d] %s  %s", t.ID, t.Token, t.PartOfSpeech.Label())
		if t.PersonTranslation != "" {
			line += " -> " + t.PersonTranslation
		}
		fmt.Println(line)
	}
	return nil
}

func (a *app) cmdReview(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: whoisthat review <person|nonperson> <token-id> [flags]")
	}
	kind := args[0]
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid token id %q", args[1])
	}

	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	confirmed := fs.String("confirmed", "unknown", "true, false or unknown")
	corrected := fs.String("corrected", "unknown", "true, false or unknown")
	pos := fs.String("pos", "", "Corrected part-of-speech tag")
	translation := fs.String("translation", "", "Person the token refers to")
	if err := fs.Parse(args[2:]); err != nil {
		return err
	}

	// Only flags given on the command line change the stored review state.
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	switch kind {
	case "person":
		if !set["confirmed"] && !set["corrected"] {
			return errors.New("review person needs -confirmed or -corrected")
		}
		tok, err := s.GetPersonToken(ctx, id)
		if err != nil {
			return err
		}
		if tok == nil {
			return fmt.Errorf("person token not found: %d", id)
		}
		c, r := tok.Confirmed, tok.Corrected
		if set["confirmed"] {
			if c, err = parseTristate(*confirmed); err != nil {
				return err
			}
		}
		if set["corrected"] {
			if r, err = parseTristate(*corrected); err != nil {
				return err
			}
		}
		if err := s.ReviewPersonToken(ctx, id, c, r); err != nil {
			return err
		}
	case "nonperson":
		if !set["pos"] && !set["translation"] {
			return errors.New("review nonperson needs -pos or -translation")
		}
		tok, err := s.GetNonPersonToken(ctx, id)
		if err != nil {
			return err
		}
		if tok == nil {
			return fmt.Errorf("non-person token not found: %d", id)
		}
		if !set["pos"] {
			if err := s.SetPersonTranslation(ctx, id, *translation); err != nil {
				return err
			}
			break
		}
		tag, ok := reference.LookupPartOfSpeech(*pos)
		if !ok {
			return fmt.Errorf("unknown tag %q; see 'whoisthat tags'", *pos)
		}
		tr := tok.PersonTranslation
		if set["translation"] {
			tr = *translation
		}
		if err := s.CorrectNonPersonToken(ctx, id, tag, tr); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown review kind: %s", kind)
	}

	fmt.Printf("Updated %s token %d\n", kind, id)
	return nil
}

func (a *app) cmdFind(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: whoisthat find <person-name>")
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	tokens, err := s.FindPersonTokens(ctx, args[0])
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		fmt.Printf("No posts mention %s\n", args[0])
		return nil
	}
	for _, t := range tokens {
		post, err := s.GetPost(ctx, t.PostID)
		if err != nil {
			return err
		}
		if post == nil {
			continue
		}
		fmt.Printf("  [%d] %s %s  confirmed=%s\n", t.ID, post.ExternalID, post.Permalink, t.Confirmed)
	}
	return nil
}

func (a *app) cmdReply(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: whoisthat reply <reddit-post-id> <text>")
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	post, err := s.GetPostByExternalID(ctx, args[0])
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("post not found: %s", args[0])
	}
	src, err := s.GetSource(ctx, post.SourceID)
	if err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("source %d not found", post.SourceID)
	}

	client, err := reddit.BuildClient(a.cfg.Reddit, reddit.Options{})
	if err != nil {
		return err
	}

	p := pipeline.New(s, nil, pipeline.WithLogger(a.logger))
	sent, err := p.Reply(ctx, *src, *post, client, args[1])
	if err != nil {
		return err
	}
	if !sent {
		fmt.Printf("Not replying to %s: %s does not allow it\n", post.ExternalID, src)
		return nil
	}
	fmt.Printf("Replied to %s\n", post.ExternalID)
	return nil
}

func cmdTags() error {
	fmt.Printf("Part-of-speech inventory %s:\n", reference.PosInventoryVersion)
	for _, p := range reference.PartsOfSpeech() {
		code := string(p)
		if code == "" {
			code = `""`
		}
		fmt.Printf("  %-12s %s\n", code, p.Label())
	}
	return nil
}

func parseTristate(s string) (reference.Tristate, error) {
	switch s {
	case "true":
		return reference.True, nil
	case "false":
		return reference.False, nil
	case "unknown", "":
		return reference.Unknown, nil
	}
	return reference.Unknown, fmt.Errorf("invalid flag value %q (want true, false or unknown)", s)
}
