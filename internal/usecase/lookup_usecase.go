package usecase

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// ExampleProvider fetches one example sentence for a word.
type ExampleProvider interface {
	LookupExample(ctx context.Context, word string) (example string, found bool, err error)
}

// LookupResult is the outcome of one example lookup.
type LookupResult struct {
	Word    string
	Example string
	Found   bool
	Err     error
}

// ExampleLookup runs dictionary lookups for the editor. It never touches the
// entry store; results only feed the draft.
type ExampleLookup interface {
	Lookup(ctx context.Context, word string) LookupResult
	// Start runs the lookup in the background. Starting a new lookup cancels the
	// one in flight, whose channel then yields a result carrying context.Canceled.
	Start(ctx context.Context, word string) <-chan LookupResult
	// Cancel aborts the lookup in flight, if any.
	Cancel()
}

type exampleLookup struct {
	provider ExampleProvider
	logger   logrus.FieldLogger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewExampleLookup wraps provider with superseding background lookups.
func NewExampleLookup(provider ExampleProvider, logger logrus.FieldLogger) ExampleLookup {
	return &exampleLookup{
		provider: provider,
		logger:   logger.WithField("component", "example_lookup"),
	}
}

func (l *exampleLookup) Lookup(ctx context.Context, word string) LookupResult {
	example, found, err := l.provider.LookupExample(ctx, word)
	if err != nil {
		l.logger.WithError(err).WithField("word", word).Warn("example lookup failed")
	}
	return LookupResult{Word: word, Example: example, Found: found, Err: err}
}

func (l *exampleLookup) Start(ctx context.Context, word string) <-chan LookupResult {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	seq := l.seq
	l.cancel = cancel
	l.mu.Unlock()

	out := make(chan LookupResult, 1)
	go func() {
		defer close(out)
		res := l.Lookup(ctx, word)
		if res.Err == nil && ctx.Err() != nil {
			res = LookupResult{Word: word, Err: ctx.Err()}
		}
		out <- res

		l.mu.Lock()
		if l.seq == seq {
			l.cancel = nil
		}
		l.mu.Unlock()
		cancel()
	}()
	return out
}

func (l *exampleLookup) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
