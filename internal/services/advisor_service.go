package services

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"gemora/internal/models"
	"gemora/internal/security"
)

// generateOptions is the fixed generation budget for advisor replies:
// short, terse, low randomness, stop at the first newline.
var generateOptions = models.GenerateOptions{
	MaxTokens:   80,
	Temperature: 0.3,
	Stop:        []string{"\n"},
}

// AdvisorService is the generation orchestrator. Per call it runs
// Validate -> ContentGate -> RateLimit -> SessionGate -> Extract -> Match ->
// CacheCheck -> BuildPrompt -> Invoke -> ValidateOutput -> CacheStore.
//
// Matching runs before the cache check by design: the cache key embeds the
// candidate count, which is unknown until the catalog has been queried. The
// cache therefore skips only the upstream generation call, never the match.
type AdvisorService struct {
	quota         QuotaStore
	sessions      *SessionGate
	cache         *ResponseCache
	extractor     *Extractor
	matcher       *CatalogMatcher
	prompts       *PromptBuilder
	generator     Generator
	filter        *security.ContentFilter
	metrics       *Metrics
	maxMessageLen int
	invokeTimeout time.Duration
}

// NewAdvisorService wires the orchestrator. metrics may be nil (tests).
func NewAdvisorService(
	quota QuotaStore,
	sessions *SessionGate,
	cache *ResponseCache,
	extractor *Extractor,
	matcher *CatalogMatcher,
	generator Generator,
	filter *security.ContentFilter,
	metrics *Metrics,
	maxMessageLen int,
	invokeTimeout time.Duration,
) *AdvisorService {
	return &AdvisorService{
		quota:         quota,
		sessions:      sessions,
		cache:         cache,
		extractor:     extractor,
		matcher:       matcher,
		prompts:       NewPromptBuilder(extractor),
		generator:     generator,
		filter:        filter,
		metrics:       metrics,
		maxMessageLen: maxMessageLen,
		invokeTimeout: invokeTimeout,
	}
}

// Chat handles one advisor request for the given client identity.
func (s *AdvisorService) Chat(ctx context.Context, identity string, req models.ChatRequest) (*models.ChatResult, error) {
	if s.metrics != nil {
		s.metrics.ChatRequests.Inc()
	}

	result, err := s.chat(ctx, identity, req)
	if err != nil {
		if advErr, ok := AsAdvisorError(err); ok {
			s.metrics.RecordOutcome(advErr.Code)
		} else {
			s.metrics.RecordOutcome("upstream_error")
		}
		return nil, err
	}

	if result.ServedFromCache {
		s.metrics.RecordOutcome("cache_hit")
	} else {
		s.metrics.RecordOutcome("ok")
	}
	return result, nil
}

func (s *AdvisorService) chat(ctx context.Context, identity string, req models.ChatRequest) (*models.ChatResult, error) {
	// Validate: fail fast, nothing downstream runs.
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, newValidationError("Message text is required.")
	}
	if utf8.RuneCountInString(req.Message) > s.maxMessageLen {
		return nil, newValidationError("Message is too long. Please keep it short.")
	}
	if req.Topic != models.TopicGemstoneRecommendation {
		return nil, newValidationError("Unsupported topic.")
	}

	// Content gate runs before either limiter: a rejected malicious request
	// consumes neither a quota slot nor session state.
	if rejected, pattern := s.filter.Rejects(text); rejected {
		log.Printf("🚫 [ADVISOR] Content rejected for %s (pattern %q)", identity, pattern)
		return nil, newContentRejectedError()
	}

	if err := s.quota.CheckAndConsume(ctx, identity); err != nil {
		return nil, err
	}
	if err := s.sessions.Admit(identity); err != nil {
		return nil, err
	}

	params := s.extractor.Extract(text)
	candidates := s.matcher.FindCandidates(ctx, params)

	if entry, found := s.cache.Get(text, len(candidates)); found {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		log.Printf("⚡ [ADVISOR] Cache hit for %s (%d candidates)", identity, len(entry.Candidates))
		return &models.ChatResult{
			Response:        entry.ResponseText,
			Candidates:      entry.Candidates,
			ServedFromCache: true,
		}, nil
	}

	prompt := s.prompts.Build(text, params, candidates)

	invokeCtx, cancel := context.WithTimeout(ctx, s.invokeTimeout)
	defer cancel()

	started := time.Now()
	response, err := s.generator.Generate(invokeCtx, prompt, generateOptions)
	if s.metrics != nil {
		s.metrics.UpstreamLatency.Observe(time.Since(started).Seconds())
	}
	if err != nil {
		if _, ok := AsAdvisorError(err); ok {
			return nil, err
		}
		if invokeCtx.Err() != nil {
			return nil, newUpstreamTimeoutError()
		}
		log.Printf("❌ [ADVISOR] Upstream generation failed: %v", err)
		return nil, err
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return nil, newUpstreamEmptyError()
	}

	// A caller that cancelled mid-generation never receives this response,
	// so it must not be cached either.
	if ctx.Err() != nil {
		log.Printf("⚠️  [ADVISOR] Request for %s cancelled during generation, skipping cache store", identity)
		return nil, newUpstreamTimeoutError()
	}

	s.cache.Put(text, len(candidates), &CacheEntry{
		ResponseText: response,
		Candidates:   candidates,
		StoredAt:     time.Now(),
	})

	if s.metrics != nil {
		s.metrics.CandidateCount.Observe(float64(len(candidates)))
	}

	return &models.ChatResult{
		Response:        response,
		Candidates:      candidates,
		ServedFromCache: false,
	}, nil
}

// AdvisorStatus is the read-only introspection payload for the status
// endpoint. Computing it has no side effects.
type AdvisorStatus struct {
	QuotaLimit         int `json:"quota_limit"`
	QuotaUsed          int `json:"quota_used"`
	MinIntervalSeconds int `json:"min_interval_seconds"`
	SessionRequests    int `json:"session_requests"`
}

// Status reports quota configuration and the identity's consumed counts.
func (s *AdvisorService) Status(ctx context.Context, identity string) AdvisorStatus {
	used, limit := s.quota.Usage(ctx, identity)
	return AdvisorStatus{
		QuotaLimit:         limit,
		QuotaUsed:          used,
		MinIntervalSeconds: int(s.sessions.minInterval.Seconds()),
		SessionRequests:    s.sessions.RequestCount(identity),
	}
}
