package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Pager states. Only Idle accepts gesture input; Loading rejects (does not
// queue) input until the fetch resolves or times out; Transitioning covers
// the short settle after a successful move.
type PagerState int32

const (
	PagerIdle PagerState = iota
	PagerLoading
	PagerTransitioning
)

// String implements fmt.Stringer for log output.
func (s PagerState) String() string {
	switch s {
	case PagerIdle:
		return "idle"
	case PagerLoading:
		return "loading"
	case PagerTransitioning:
		return "transitioning"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// NotInList is the cursor sentinel for records opened via deep link rather
// than from the feed list. Prev/next are disallowed in this state.
const NotInList = -1

// DefaultFetchTimeout bounds a single record fetch during navigation.
const DefaultFetchTimeout = 5 * time.Second

// DefaultSwipeThreshold is the minimum gesture distance, in points, that
// commits a page move. Shorter swipes snap back.
const DefaultSwipeThreshold = 80.0

// Pager errors.
var (
	// ErrPagerBusy is returned when input arrives while a fetch or
	// transition is in progress. Input is rejected, never queued.
	ErrPagerBusy = errors.New("navigation in progress")
	// ErrAtBound is returned on an attempt to move before the first or
	// past the last record. The cursor does not change.
	ErrAtBound = errors.New("at list boundary")
	// ErrNotInList is returned for prev/next on a deep-linked record that
	// has no position in the feed list.
	ErrNotInList = errors.New("record not in list")
	// ErrFetchTimeout is returned when the record fetch does not resolve
	// within the configured timeout; the pager resets to idle.
	ErrFetchTimeout = errors.New("fetch timed out")
)

// fetcher is the slice of Client the pager needs; tests substitute it.
type fetcher interface {
	GetPrayer(ctx context.Context, id string) (*PrayerView, error)
}

// Pager drives forward/backward paging over an ordered list of remote record
// IDs, fetching each record's detail on demand and caching it for the rest of
// the session.
//
// Cursor invariant: 0 <= index < len(ids) while in-list, or index == NotInList
// for a deep-linked record. Only navigation mutates the cursor. A cache hit
// short-circuits the network entirely; staleness within one paging session is
// an accepted trade-off.
//
// Safe for concurrent use, though in practice a single UI loop drives it.
type Pager struct {
	api fetcher

	// FetchTimeout bounds each detail fetch; <= 0 means DefaultFetchTimeout.
	FetchTimeout time.Duration
	// SwipeThreshold is the commit distance for Swipe; <= 0 means
	// DefaultSwipeThreshold.
	SwipeThreshold float64
	// Settle, when non-nil, runs during the transitioning phase (the UI
	// animation). It is not cancelable.
	Settle func(from, to int)

	mu      sync.Mutex
	state   PagerState
	index   int
	ids     []string
	current *PrayerView
	cache   map[string]*PrayerView
}

// NewPager returns a pager over ids positioned at startID. If startID does
// not appear in ids (a deep link), the cursor starts at the NotInList
// sentinel and only Open can populate the view.
func NewPager(api fetcher, ids []string, startID string) *Pager {
	idx := NotInList
	for i, id := range ids {
		if id == startID {
			idx = i
			break
		}
	}
	return &Pager{
		api:   api,
		state: PagerIdle,
		index: idx,
		ids:   append([]string(nil), ids...),
		cache: make(map[string]*PrayerView),
	}
}

// State returns the pager's current state.
func (p *Pager) State() PagerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Index returns the cursor position, or NotInList for deep-linked records.
func (p *Pager) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Current returns the last successfully loaded record, or nil before the
// first Open/navigation completes.
func (p *Pager) Current() *PrayerView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// CurrentID returns the ID under the cursor, or "" when not in list.
func (p *Pager) CurrentID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.index == NotInList {
		if p.current != nil {
			return p.current.ID
		}
		return ""
	}
	return p.ids[p.index]
}

// Open loads the record under the cursor (or, for a deep link, the given id)
// without moving it. It is the entry point after construction.
func (p *Pager) Open(ctx context.Context, id string) (*PrayerView, error) {
	p.mu.Lock()
	if p.state != PagerIdle {
		p.mu.Unlock()
		return nil, ErrPagerBusy
	}
	cached, hit := p.cache[id]
	if hit {
		p.current = cached
		p.mu.Unlock()
		return cached, nil
	}
	p.state = PagerLoading
	p.mu.Unlock()

	v, err := p.fetchOne(ctx, id)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = PagerIdle
	if err != nil {
		return nil, err
	}
	p.cache[id] = v
	p.current = v
	return v, nil
}

// Next moves the cursor forward one record.
func (p *Pager) Next(ctx context.Context) (*PrayerView, error) {
	return p.moveTo(ctx, +1)
}

// Prev moves the cursor back one record.
func (p *Pager) Prev(ctx context.Context) (*PrayerView, error) {
	return p.moveTo(ctx, -1)
}

// Swipe interprets a horizontal gesture. Negative distance pages forward
// (content dragged left), positive pages backward. A gesture below the
// threshold snaps back with no cursor change and a nil error; the bool
// reports whether the cursor moved.
func (p *Pager) Swipe(ctx context.Context, distance float64) (*PrayerView, bool, error) {
	threshold := p.SwipeThreshold
	if threshold <= 0 {
		threshold = DefaultSwipeThreshold
	}
	if distance > -threshold && distance < threshold {
		return nil, false, nil // below threshold: snap back
	}
	dir := +1
	if distance > 0 {
		dir = -1
	}
	v, err := p.moveTo(ctx, dir)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// moveTo advances the cursor by delta, fetching the target record when it is
// not cached. On fetch failure or timeout the cursor and state are restored
// so the caller can surface the error and stay put (or close the view).
func (p *Pager) moveTo(ctx context.Context, delta int) (*PrayerView, error) {
	p.mu.Lock()
	if p.state != PagerIdle {
		p.mu.Unlock()
		return nil, ErrPagerBusy
	}
	if p.index == NotInList {
		p.mu.Unlock()
		return nil, ErrNotInList
	}
	target := p.index + delta
	if target < 0 || target >= len(p.ids) {
		p.mu.Unlock()
		return nil, ErrAtBound // resistance-damped bounce; cursor unchanged
	}
	id := p.ids[target]
	if cached, hit := p.cache[id]; hit {
		// Cache hit resolves synchronously.
		from := p.index
		p.index = target
		p.current = cached
		p.settleLocked(from, target)
		p.mu.Unlock()
		return cached, nil
	}
	p.state = PagerLoading
	p.mu.Unlock()

	v, err := p.fetchOne(ctx, id)

	p.mu.Lock()
	if err != nil {
		p.state = PagerIdle
		p.mu.Unlock()
		return nil, err
	}
	p.cache[id] = v
	from := p.index
	p.index = target
	p.current = v
	p.settleLocked(from, target)
	p.mu.Unlock()
	return v, nil
}

// settleLocked runs the non-cancelable transition phase and always leaves the
// pager idle, whether the move came from cache or from a fetch that entered
// loading. Caller holds p.mu.
func (p *Pager) settleLocked(from, to int) {
	if p.Settle != nil {
		p.state = PagerTransitioning
		p.Settle(from, to)
	}
	p.state = PagerIdle
}

// fetchOne fetches a record under the configured timeout. A deadline
// expiration maps to ErrFetchTimeout so callers can distinguish it from a
// hard failure, though both are terminal for the navigation attempt.
func (p *Pager) fetchOne(ctx context.Context, id string) (*PrayerView, error) {
	timeout := p.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := p.api.GetPrayer(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, ErrFetchTimeout
		}
		return nil, err
	}
	return v, nil
}
