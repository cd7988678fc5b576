package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Submission controller errors.
var (
	// ErrSubmitInFlight is returned when a submit is attempted while an
	// earlier attempt for the same logical action is still outstanding.
	ErrSubmitInFlight = errors.New("submission already in flight")
	// ErrContentTooShort is returned before any network call when the
	// content does not meet the minimum length. No idempotency key is
	// generated for a rejected payload.
	ErrContentTooShort = errors.New("content too short")
)

// SubmitResult reports the outcome of one Submit call.
type SubmitResult struct {
	// Prayer is the authoritative server record on success, or the
	// optimistic local record when Pending is true.
	Prayer *PrayerView
	// Pending means the request never reached the server (network-class
	// failure); the record is a local-only optimistic insert that will
	// sync on a later retry under the same key.
	Pending bool
	// Replayed means the server answered from its idempotency store.
	Replayed bool
	// ShowSuccess is true at most once per logical action, so a slow
	// duplicate response cannot trigger a second success notice.
	ShowSuccess bool
	// Key is the idempotency key the attempt was sent under.
	Key string
}

// creator is the slice of Client the controller needs; tests substitute it.
type creator interface {
	CreatePrayer(ctx context.Context, in CreatePrayerInput) (*PrayerView, bool, error)
}

// SubmitController guarantees at-most-one accepted server-side creation per
// logical submit action, under retry, double-tap, and slow networks.
//
// Key lifecycle: generated on the first attempt of a logical action, reused
// verbatim across retries of that action, cleared only on confirmed success.
// The single in-flight slot replaces the scattered boolean "disabled" flags a
// UI would otherwise juggle.
//
// Safe for concurrent use.
type SubmitController struct {
	api creator

	// MinContentRunes rejects short payloads locally, before a key is
	// generated or a request sent. Values <= 0 disable the check.
	MinContentRunes int

	mu           sync.Mutex
	key          string // current non-cleared key; "" means none
	inFlight     bool
	successShown bool

	// seams for tests
	now     func() time.Time
	randInt func() int64
}

// NewSubmitController returns a controller posting through api. The default
// minimum content length is 10 runes.
func NewSubmitController(api creator) *SubmitController {
	return &SubmitController{
		api:             api,
		MinContentRunes: 10,
		now:             time.Now,
		randInt:         func() int64 { return rand.Int63() },
	}
}

// CurrentKey returns the remembered idempotency key, or "" when the last
// action completed (or none has started).
func (s *SubmitController) CurrentKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Submit sends one creation attempt. Outcomes:
//
//   - success: key cleared, ShowSuccess true exactly once per action
//   - server validation/application error: returned verbatim as *APIError;
//     key retained so a corrected resubmission still dedupes
//   - network-class failure: optimistic local record returned with Pending
//     set; key retained so the eventual retry dedupes
//
// A second call while one is outstanding fails fast with ErrSubmitInFlight
// rather than starting a parallel attempt under a different key.
func (s *SubmitController) Submit(ctx context.Context, in CreatePrayerInput) (*SubmitResult, error) {
	content := strings.TrimSpace(in.Content)
	if s.MinContentRunes > 0 && utf8.RuneCountInString(content) < s.MinContentRunes {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrContentTooShort, s.MinContentRunes)
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if s.key == "" {
		s.key = s.newKey()
		s.successShown = false
	}
	key := s.key
	s.inFlight = true
	s.mu.Unlock()

	in.Content = content
	in.IdempotencyKey = key
	p, replayed, err := s.api.CreatePrayer(ctx, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if err != nil {
		if _, ok := IsAPIError(err); ok {
			// Server saw the request and rejected it; the key stays so a
			// corrected form resubmits under the same key.
			return nil, err
		}
		// Transport failure: the request may or may not have arrived.
		// Fall back to a local-only record and keep the key for the retry.
		local := &PrayerView{
			Content:   in.Content,
			Public:    in.Public,
			GroupID:   in.GroupID,
			CreatedAt: s.now(),
		}
		return &SubmitResult{Prayer: local, Pending: true, Key: key}, nil
	}

	s.key = ""
	show := !s.successShown
	s.successShown = true
	return &SubmitResult{Prayer: p, Replayed: replayed, ShowSuccess: show, Key: key}, nil
}

// Reset abandons the current logical action, clearing any remembered key.
// The next Submit starts a distinct action with a fresh key. It does not
// cancel an in-flight request.
func (s *SubmitController) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = ""
	s.successShown = false
}

// newKey builds an opaque per-action token. Caller holds s.mu.
func (s *SubmitController) newKey() string {
	return fmt.Sprintf("request-%d-%d", s.now().UnixMilli(), s.randInt())
}
