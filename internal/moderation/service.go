package moderation

import (
	"github.com/rs/zerolog"

	"workpulse.dev/pulse/internal/db"
)

const (
	// DefaultScanWindowDays bounds how far back the duplicate scanner looks.
	DefaultScanWindowDays = 180
	// DefaultCandidateLimit caps candidates fetched per scan.
	DefaultCandidateLimit = 200
	// MaxRescanLimit caps the manual rescan batch size.
	MaxRescanLimit = 200

	maxStoredOverlapKeywords = 8
)

// Options configures the moderation service. Word lists are resolved once
// at startup; the service treats them as immutable afterwards.
type Options struct {
	WindowDays     int
	CandidateLimit int
	MaxKeywords    int
	BannedPhrases  []string
	ExtraStopwords []string
}

// Service is the moderation and deduplication core: toxicity screening,
// duplicate candidate scanning, the review queue, and the merge engine.
type Service struct {
	pool      *db.Pool
	logger    zerolog.Logger
	screener  *Screener
	extractor *KeywordExtractor
	opts      Options
}

func NewService(pool *db.Pool, logger zerolog.Logger, opts Options) *Service {
	if opts.WindowDays <= 0 {
		opts.WindowDays = DefaultScanWindowDays
	}
	if opts.CandidateLimit <= 0 || opts.CandidateLimit > DefaultCandidateLimit {
		opts.CandidateLimit = DefaultCandidateLimit
	}
	if opts.MaxKeywords <= 0 {
		opts.MaxKeywords = DefaultMaxKeywords
	}

	return &Service{
		pool:      pool,
		logger:    logger,
		screener:  NewScreener(opts.BannedPhrases),
		extractor: NewKeywordExtractor(opts.MaxKeywords, opts.ExtraStopwords),
		opts:      opts,
	}
}

// Screener exposes the configured toxicity screener for intake and display.
func (s *Service) Screener() *Screener {
	return s.screener
}
