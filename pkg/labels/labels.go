// Package labels shortens long hierarchical relation labels for display.
//
// FreeBase relations such as /people/person/nationality or compound ones like
// /award/award_nominee/award_nominations./award/award_nomination/award are hard to read
// in reports. A Shortener keeps the domain as a context prefix and drops it from each part:
// people/nationality and award/nominations.award.
package labels

import (
	"strings"
	"sync"
)

// Shortener shortens relation labels and memoizes the results. It is safe for concurrent use.
type Shortener struct {
	mu    sync.RWMutex
	cache map[string]string
}

// NewShortener returns a Shortener with an empty cache.
func NewShortener() *Shortener {
	return &Shortener{cache: make(map[string]string)}
}

// Shorten returns the display form of rel. Labels without a path are returned unchanged.
func (s *Shortener) Shorten(rel string) string {
	s.mu.RLock()
	short, ok := s.cache[rel]
	s.mu.RUnlock()
	if ok {
		return short
	}

	short = Shorten(rel)
	s.mu.Lock()
	s.cache[rel] = short
	s.mu.Unlock()
	return short
}

// Len returns the number of cached labels.
func (s *Shortener) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// Shorten computes the display form of rel without caching.
//
// The context is the first segment of the first dotted part that differs from that part's
// last segment. Each part is reduced to its last segment with context tokens removed, unless
// that would leave nothing.
func Shorten(rel string) string {
	parts := strings.Split(rel, ".")

	var segments []string
	for _, seg := range strings.Split(parts[0], "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	var ctx string
	hasCtx := false
	if len(segments) > 1 {
		last := segments[len(segments)-1]
		for _, seg := range segments[:len(segments)-1] {
			ctx, hasCtx = seg, true
			if seg != last {
				break
			}
		}
	}

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		lastPart := part[strings.LastIndex(part, "/")+1:]
		var tokens []string
		for _, tok := range strings.Split(lastPart, "_") {
			if !hasCtx || tok != ctx {
				tokens = append(tokens, tok)
			}
		}
		if len(tokens) > 0 {
			out = append(out, strings.Join(tokens, "_"))
		} else {
			out = append(out, lastPart)
		}
	}

	prefix := ""
	if hasCtx {
		prefix = ctx + "/"
	}
	return prefix + strings.Join(out, ".")
}
