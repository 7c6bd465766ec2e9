package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/atvirokodosprendimai/employees/internal/core/ports"
)

const (
	FallbackQuote = "No quote available at this time."
	FallbackJoke  = "No joke available at this time."

	defaultFetchTimeout = 2 * time.Second
)

var (
	errNoSource  = errors.New("no source configured")
	errEmptyText = errors.New("empty text")
)

// Enrichment holds the fields a new employee receives from external services.
type Enrichment struct {
	Quote string
	Joke  string
}

// Enricher fetches the quote and joke for a new employee. Failures never
// propagate: each source is bounded by a timeout and replaced by its fallback.
type Enricher struct {
	quotes  ports.TextSource
	jokes   ports.TextSource
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewEnricher(quotes, jokes ports.TextSource, timeout time.Duration, log logrus.FieldLogger) *Enricher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Enricher{quotes: quotes, jokes: jokes, timeout: timeout, log: log}
}

// Fetch queries both sources concurrently and returns once both resolved.
// A failed source is replaced by its fallback after the group has joined.
func (e *Enricher) Fetch(ctx context.Context) Enrichment {
	var (
		out               Enrichment
		quoteErr, jokeErr error
		g                 errgroup.Group
	)
	g.Go(func() error {
		out.Quote, quoteErr = e.fetchOne(ctx, "quote", e.quotes)
		return quoteErr
	})
	g.Go(func() error {
		out.Joke, jokeErr = e.fetchOne(ctx, "joke", e.jokes)
		return jokeErr
	})
	if err := g.Wait(); err != nil {
		e.log.WithError(err).Debug("enrichment incomplete")
	}

	if quoteErr != nil {
		e.log.WithFields(logrus.Fields{"source": "quote", "error": quoteErr}).Warn("external fetch failed, using fallback")
		out.Quote = FallbackQuote
	}
	if jokeErr != nil {
		e.log.WithFields(logrus.Fields{"source": "joke", "error": jokeErr}).Warn("external fetch failed, using fallback")
		out.Joke = FallbackJoke
	}
	return out
}

func (e *Enricher) fetchOne(ctx context.Context, name string, src ports.TextSource) (string, error) {
	if src == nil {
		return "", fmt.Errorf("%s: %w", name, errNoSource)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	// Sources are expected to honor ctx; the select guards against ones that don't.
	done := make(chan result, 1)
	go func() {
		text, err := src.Fetch(ctx)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", name, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%s: %w", name, res.err)
		}
		if res.text == "" {
			return "", fmt.Errorf("%s: %w", name, errEmptyText)
		}
		return res.text, nil
	}
}
