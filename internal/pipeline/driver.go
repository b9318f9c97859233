// Package pipeline drives each tournament code through resolve, fetch,
// extract and write, one code and one match at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"tournament-stats/internal/apierr"
	"tournament-stats/internal/ratelimit"
	"tournament-stats/internal/riot"
	"tournament-stats/internal/stats"
)

// Resolver lists the match ids played under a tournament code.
type Resolver interface {
	ResolveMatchIDs(ctx context.Context, code string) ([]string, error)
}

// Fetcher loads a single match.
type Fetcher interface {
	FetchMatch(ctx context.Context, matchID string) (*riot.MatchResponse, error)
}

// Writer persists the rows of one match.
type Writer interface {
	AppendRows(ctx context.Context, rows []stats.Row) error
}

// Config holds the driver's tunables.
type Config struct {
	// MaxAttempts bounds calls per transient failure (default: 3)
	MaxAttempts int
	// BaseDelay is the first backoff delay, doubled per retry (default: 2s)
	BaseDelay time.Duration
	// Location renders the Date column (default: UTC)
	Location *time.Location
	// Clock is used for backoff sleeps (default: wall clock)
	Clock ratelimit.Clock
	// ExpectedMatches sizes the dedupe filter (default: 10000)
	ExpectedMatches uint
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     3,
		BaseDelay:       2 * time.Second,
		Location:        time.UTC,
		Clock:           ratelimit.SystemClock{},
		ExpectedMatches: 10000,
	}
}

// Driver runs the pipeline.
type Driver struct {
	resolver Resolver
	fetcher  Fetcher
	writer   Writer
	config   Config

	onTransition TransitionFunc

	// match ids written during this run
	written *bloom.BloomFilter
}

// NewDriver wires the three stages together. Zero fields in cfg fall back
// to DefaultConfig.
func NewDriver(resolver Resolver, fetcher Fetcher, writer Writer, cfg Config) *Driver {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.Location == nil {
		cfg.Location = def.Location
	}
	if cfg.Clock == nil {
		cfg.Clock = def.Clock
	}
	if cfg.ExpectedMatches == 0 {
		cfg.ExpectedMatches = def.ExpectedMatches
	}

	return &Driver{
		resolver: resolver,
		fetcher:  fetcher,
		writer:   writer,
		config:   cfg,
		written:  bloom.NewWithEstimates(cfg.ExpectedMatches, 0.0001),
	}
}

// OnTransition registers a progress callback fired on every code state change.
func (d *Driver) OnTransition(fn TransitionFunc) {
	d.onTransition = fn
}

// Run processes codes in order. It stops at the first authentication
// failure or when ctx is cancelled; codes after that stay Pending.
func (d *Driver) Run(ctx context.Context, codes []string) Summary {
	start := d.config.Clock.Now()
	summary := Summary{Codes: make([]CodeResult, 0, len(codes))}

	for i, code := range codes {
		if summary.Fatal != nil {
			summary.Codes = append(summary.Codes, CodeResult{Code: code, State: StatePending})
			continue
		}
		if err := ctx.Err(); err != nil {
			summary.Fatal = err
			summary.Codes = append(summary.Codes, CodeResult{Code: code, State: StatePending})
			continue
		}

		fmt.Printf("\n[%d/%d] Processing tournament code: %s\n", i+1, len(codes), code)
		res := d.processCode(ctx, code)
		summary.add(res)

		if res.State == StateFailed {
			summary.Fatal = res.Err
			log.Printf("[Pipeline] Halting run: %v", res.Err)
		}
	}

	summary.Elapsed = d.config.Clock.Now().Sub(start)
	return summary
}

func (d *Driver) processCode(ctx context.Context, code string) CodeResult {
	res := CodeResult{Code: code}
	sm := NewStateMachine(code)
	if d.onTransition != nil {
		sm.OnTransition(d.onTransition)
	}

	// finish moves the code to a terminal state. Every move made by the
	// driver is legal, so a failure here is a programming error.
	finish := func(to State, err error) CodeResult {
		if terr := sm.TransitionTo(to); terr != nil {
			panic(terr)
		}
		res.State = to
		res.Err = err
		return res
	}
	step := func(to State) {
		if terr := sm.TransitionTo(to); terr != nil {
			panic(terr)
		}
	}

	step(StateResolving)
	var ids []string
	resolve := d.policy(1)
	exhausted, err := resolve.do(ctx, "resolve "+code, func() error {
		var err error
		ids, err = d.resolver.ResolveMatchIDs(ctx, code)
		return err
	})
	if err != nil {
		res.Exhausted = exhausted
		switch {
		case isHalting(err):
			return finish(StateFailed, err)
		case errors.Is(err, apierr.ErrNotFound):
			fmt.Printf("  No matches found for code %s\n", code)
		default:
			log.Printf("[Pipeline] Could not resolve %s: %v", code, err)
		}
		return finish(StateSkipped, err)
	}
	res.MatchIDs = len(ids)
	fmt.Printf("  Found %d match(es)\n", len(ids))

	step(StateFetching)
	var lastErr error
	for _, id := range ids {
		if sm.Current() != StateFetching {
			step(StateFetching)
		}

		if d.written.TestString(id) {
			fmt.Printf("  Match %s already written this run, skipping\n", id)
			res.Duplicates++
			continue
		}

		rows, err := d.processMatch(ctx, sm, code, id, &res)
		if err != nil {
			if isHalting(err) {
				return finish(StateFailed, err)
			}
			lastErr = err
			res.MatchesSkipped++
			continue
		}
		if rows == 0 {
			res.MatchesSkipped++
			continue
		}

		d.written.AddString(id)
		res.MatchesWritten++
		res.RowsWritten += rows
		fmt.Printf("  Wrote %d rows for match %s\n", rows, id)
	}

	if res.MatchesWritten > 0 {
		return finish(StateDone, nil)
	}
	return finish(StateSkipped, lastErr)
}

// processMatch fetches, extracts and writes one match and returns the
// number of rows written.
func (d *Driver) processMatch(ctx context.Context, sm *StateMachine, code, id string, res *CodeResult) (int, error) {
	call := d.policy(-1)

	var match *riot.MatchResponse
	exhausted, err := call.do(ctx, "fetch "+id, func() error {
		var err error
		match, err = d.fetcher.FetchMatch(ctx, id)
		return err
	})
	if err != nil {
		res.Exhausted = res.Exhausted || exhausted
		if !isHalting(err) {
			log.Printf("[Pipeline] Skipping match %s: %v", id, err)
		}
		return 0, err
	}

	if err := sm.TransitionTo(StateExtracting); err != nil {
		return 0, err
	}
	rows := stats.ExtractRows(code, match, d.config.Location)
	if len(rows) == 0 {
		log.Printf("[Pipeline] Match %s has no participants, skipping", id)
		return 0, nil
	}

	if err := sm.TransitionTo(StateWriting); err != nil {
		return 0, err
	}
	exhausted, err = call.do(ctx, "write "+id, func() error {
		return d.writer.AppendRows(ctx, rows)
	})
	if err != nil {
		res.Exhausted = res.Exhausted || exhausted
		if !isHalting(err) {
			log.Printf("[Pipeline] Could not write match %s: %v", id, err)
		}
		return 0, err
	}
	return len(rows), nil
}

func (d *Driver) policy(rateLimitRetries int) retryPolicy {
	return retryPolicy{
		clock:            d.config.Clock,
		baseDelay:        d.config.BaseDelay,
		maxAttempts:      d.config.MaxAttempts,
		rateLimitRetries: rateLimitRetries,
	}
}

// isHalting reports whether err stops the whole run.
func isHalting(err error) bool {
	return apierr.IsFatal(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
