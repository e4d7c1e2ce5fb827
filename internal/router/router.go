// Package router classifies free-text chat messages into persona routes.
//
// Classification is a single pass over an ordered (category, keyword set)
// table. Table order encodes priority: the first category that matches the
// tokenized message selects the persona, but every matching category is
// recorded so guidance composition can cover secondary topics too.
package router

import (
	"fmt"
	"strings"
	"unicode"
)

// Decision is the result of classifying one message. It is ephemeral and
// fully determined by the inputs: no randomness, no external state.
type Decision struct {
	PrimaryPersona    string
	MatchedCategories []string
	Confidence        float64
	Reasoning         string
}

// HasCategory reports whether the decision matched the given category.
func (d Decision) HasCategory(category string) bool {
	for _, c := range d.MatchedCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Category names, in canonical priority order. Health outranks finance,
// finance outranks research, and so on; the order is fixed here rather than
// scattered across call sites.
const (
	CategoryHealth   = "health"
	CategoryFinance  = "finance"
	CategoryResearch = "research"
	CategoryMemory   = "memory"
	CategoryWeather  = "weather"
	CategoryTime     = "time"
)

// rule pairs a category with its keyword set and target persona.
type rule struct {
	category string
	persona  string
	keywords []string
}

// defaultRules is the canonical routing table. Keywords containing a space
// are matched as substrings of the lower-cased message; single words are
// matched against the tokenized message.
func defaultRules() []rule {
	return []rule{
		{
			category: CategoryHealth,
			persona:  "health_analyst",
			keywords: []string{
				"sleep", "slept", "steps", "workout", "exercise", "heart",
				"calories", "weight", "health", "blood pressure", "fitness",
			},
		},
		{
			category: CategoryFinance,
			persona:  "finance_tracker",
			keywords: []string{
				"spend", "spent", "spending", "money", "budget", "expense",
				"expenses", "cost", "paid", "purchase", "bought", "finance",
				"subscription",
			},
		},
		{
			category: CategoryResearch,
			persona:  "research_specialist",
			keywords: []string{
				"research", "analyze", "analysis", "compare", "summarize",
				"investigate", "deep dive", "study",
			},
		},
		{
			category: CategoryMemory,
			persona:  "memory_librarian",
			keywords: []string{
				"remember", "recall", "memory", "memories", "forgot",
				"forget", "contact", "contacts", "who is", "note", "notes",
			},
		},
		{
			category: CategoryWeather,
			persona:  "personal_assistant",
			keywords: []string{
				"weather", "temperature", "rain", "raining", "snow", "sunny",
				"forecast", "umbrella", "cloudy", "windy",
			},
		},
		{
			category: CategoryTime,
			persona:  "personal_assistant",
			keywords: []string{
				"time", "timezone", "clock", "what day", "date today",
			},
		},
	}
}

// Router classifies messages against the routing table.
type Router struct {
	rules              []rule
	defaultPersona     string
	fallbackConfidence float64
	known              func(id string) bool
}

// Options configures a Router.
type Options struct {
	DefaultPersona     string
	FallbackConfidence float64
	// KnownPersona reports whether a persona id is registered. Used to
	// validate explicit persona selectors; nil accepts everything.
	KnownPersona func(id string) bool
}

// New creates a Router with the canonical routing table.
func New(opts Options) *Router {
	if opts.DefaultPersona == "" {
		opts.DefaultPersona = "personal_assistant"
	}
	if opts.FallbackConfidence <= 0 {
		opts.FallbackConfidence = 0.3
	}
	return &Router{
		rules:              defaultRules(),
		defaultPersona:     opts.DefaultPersona,
		fallbackConfidence: opts.FallbackConfidence,
		known:              opts.KnownPersona,
	}
}

// matchConfidence is the confidence reported for a keyword-table match.
// Explicit selection reports 1.0 and fallback reports the configured low
// value, so callers can distinguish the three routing outcomes.
const matchConfidence = 0.9

// Classify routes a message. An explicit persona other than the "auto"
// sentinel short-circuits classification. Classify never fails: unknown
// explicit personas and unmatched messages both degrade to the default.
func (r *Router) Classify(message, explicitPersona string) Decision {
	explicit := strings.TrimSpace(explicitPersona)
	if explicit != "" && explicit != "auto" {
		if r.known == nil || r.known(explicit) {
			return Decision{
				PrimaryPersona: explicit,
				Confidence:     1.0,
				Reasoning:      fmt.Sprintf("explicit persona %q requested", explicit),
			}
		}
		// Unknown explicit persona: fall through to keyword routing.
	}

	lowered := strings.ToLower(message)
	tokens := tokenize(lowered)

	var (
		matched  []string
		primary  string
		firstHit string
	)
	for _, rl := range r.rules {
		hit := matchKeywords(lowered, tokens, rl.keywords)
		if hit == "" {
			continue
		}
		matched = append(matched, rl.category)
		if primary == "" {
			primary = rl.persona
			firstHit = hit
		}
	}

	if primary == "" {
		return Decision{
			PrimaryPersona: r.defaultPersona,
			Confidence:     r.fallbackConfidence,
			Reasoning:      "no category matched; using default",
		}
	}

	return Decision{
		PrimaryPersona:    primary,
		MatchedCategories: matched,
		Confidence:        matchConfidence,
		Reasoning:         fmt.Sprintf("matched category %q on keyword %q", matched[0], firstHit),
	}
}

// matchKeywords returns the first keyword that matches, or "".
func matchKeywords(lowered string, tokens map[string]struct{}, keywords []string) string {
	for _, kw := range keywords {
		if strings.ContainsRune(kw, ' ') {
			if strings.Contains(lowered, kw) {
				return kw
			}
			continue
		}
		if _, ok := tokens[kw]; ok {
			return kw
		}
	}
	return ""
}

// tokenize splits a lower-cased message into a word set.
func tokenize(lowered string) map[string]struct{} {
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return tokens
}
