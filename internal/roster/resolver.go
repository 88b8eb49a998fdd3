package roster

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ysy950803/chatroster/internal/errors"
	"github.com/ysy950803/chatroster/internal/model"
)

const (
	DefaultPacingDelay  = 600 * time.Millisecond
	DefaultWindowCap    = 50
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = time.Second
)

// MemberLookup resolves raw member ids, returning records in request order.
type MemberLookup interface {
	ResolveMembers(ctx context.Context, ids []string) ([]*model.Member, error)
}

// FailurePolicy decides what a resolver run does when a window lookup fails.
type FailurePolicy string

const (
	// FailAbort stops the run and returns the error; windows already
	// resolved stay in the list.
	FailAbort FailurePolicy = "abort"
	// FailRetry retries the window with exponential backoff, then aborts.
	FailRetry FailurePolicy = "retry"
	// FailSkip leaves the window's placeholders and moves on.
	FailSkip FailurePolicy = "skip"
)

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return FailAbort, nil
	case FailAbort, FailRetry, FailSkip:
		return p, nil
	}
	return "", errors.InvalidArg(fmt.Sprintf("failure policy %q", s))
}

// WindowReport describes one finished window.
type WindowReport struct {
	Run      string
	Start    int
	End      int
	Resolved int
	Err      error
}

type ResolverConfig struct {
	PacingDelay  time.Duration
	WindowCap    int
	Policy       FailurePolicy
	MaxRetries   int
	RetryBackoff time.Duration
	Clock        Clock
	OnWindow     func(WindowReport)
}

func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		PacingDelay:  DefaultPacingDelay,
		WindowCap:    DefaultWindowCap,
		Policy:       FailAbort,
		MaxRetries:   DefaultMaxRetries,
		RetryBackoff: DefaultRetryBackoff,
		Clock:        RealClock,
	}
}

// Resolver walks a member list in fixed windows and splices looked-up
// records back in place, pausing between windows.
type Resolver struct {
	lookup MemberLookup
	window int
	cfg    ResolverConfig
}

// WindowSize is min(pageSize*2, cap), never below one.
func WindowSize(pageSize, limit int) int {
	if limit <= 0 {
		limit = DefaultWindowCap
	}
	w := pageSize * 2
	if w > limit {
		w = limit
	}
	if w < 1 {
		w = 1
	}
	return w
}

// NewResolver fixes the window size from pageSize for the resolver's lifetime.
func NewResolver(lookup MemberLookup, pageSize int, cfg ResolverConfig) *Resolver {
	if cfg.Clock == nil {
		cfg.Clock = RealClock
	}
	if cfg.Policy == "" {
		cfg.Policy = FailAbort
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Resolver{
		lookup: lookup,
		window: WindowSize(pageSize, cfg.WindowCap),
		cfg:    cfg,
	}
}

func (r *Resolver) Window() int {
	return r.window
}

// Resolve runs one pass over list. The first placeholder found is treated as
// a header and is not looked up; resolution starts right after it. The list
// length never changes. Only one run per list may be active at a time.
func (r *Resolver) Resolve(ctx context.Context, list *MemberList) error {
	return r.ResolveRun(ctx, list, uuid.NewString())
}

// ResolveRun is Resolve with a caller-chosen run id.
func (r *Resolver) ResolveRun(ctx context.Context, list *MemberList, run string) error {
	if !list.resolving.CompareAndSwap(false, true) {
		return errors.ErrResolveInProgress
	}
	defer list.resolving.Store(false)

	offset := list.firstPlaceholder()
	if offset == -1 {
		return nil
	}

	logger := log.With().Str("run", run).Int("window", r.window).Logger()
	logger.Debug().Int("offset", offset).Int("len", list.Len()).Msg("member resolution started")

	var skipped int
	for start := offset + 1; start <= list.Len()-1; start += r.window {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.cfg.Clock.Sleep(ctx, r.cfg.PacingDelay); err != nil {
			return err
		}

		ids := list.ids(start, start+r.window)
		end := start + len(ids)
		members, err := r.fetch(ctx, ids, start)
		if err == nil {
			err = list.splice(start, members)
		}
		resolved := 0
		if err == nil {
			resolved = len(members)
		}
		r.report(WindowReport{Run: run, Start: start, End: end, Resolved: resolved, Err: err})

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if r.cfg.Policy == FailSkip {
				skipped++
				logger.Warn().Err(err).Int("start", start).Int("end", end).Msg("skip member window")
				continue
			}
			logger.Error().Err(err).Int("start", start).Int("end", end).Msg("member resolution aborted")
			return err
		}
	}

	logger.Debug().Int("skipped", skipped).Msg("member resolution finished")
	return nil
}

func (r *Resolver) fetch(ctx context.Context, ids []string, start int) ([]*model.Member, error) {
	attempts := 1
	if r.cfg.Policy == FailRetry {
		attempts += r.cfg.MaxRetries
	}

	backoff := r.cfg.RetryBackoff
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			log.Debug().Err(lastErr).Int("attempt", i+1).Dur("backoff", backoff).Msg("retry member window")
			if err := r.cfg.Clock.Sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
		}

		members, err := r.lookup.ResolveMembers(ctx, ids)
		if err == nil && len(members) != len(ids) {
			err = errors.LookupMismatch(len(ids), len(members))
		}
		if err == nil {
			for j, m := range members {
				if m == nil {
					members[j] = &model.Member{UserName: ids[j]}
				}
			}
			return members, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, errors.LookupFailed(start, start+len(ids), lastErr)
}

func (r *Resolver) report(rep WindowReport) {
	if r.cfg.OnWindow != nil {
		r.cfg.OnWindow(rep)
	}
}
