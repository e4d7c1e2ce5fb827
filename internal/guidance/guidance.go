// Package guidance composes the tool-guidance block that is appended to a
// persona's task description. Composition is pure text assembly: the same
// (categories, persona) input always produces the same string, and no tool
// is ever mentioned unless the persona actually carries it.
package guidance

import (
	"fmt"
	"strings"

	"github.com/RouteClaw/RouteClaw/internal/persona"
	"github.com/RouteClaw/RouteClaw/internal/router"
)

// toolContract describes how a tool reaches its backend endpoint. The
// contract line is surfaced to the LLM so it knows the required parameters
// and their semantic types.
type toolContract struct {
	name     string
	contract string
}

// categoryGuide is one category's guidance block template.
type categoryGuide struct {
	category string
	title    string
	tools    []toolContract
	rules    []string
}

// categoryGuides is evaluated in this fixed order, mirroring the router's
// category priority.
func categoryGuides() []categoryGuide {
	return []categoryGuide{
		{
			category: router.CategoryHealth,
			title:    "Health Data",
			tools: []toolContract{
				{"health_summary", "POST /api/v1/health/summary — metric (string: sleep|steps|heart_rate|weight), period (string: day|week|month)"},
				{"profile_get", "GET /api/v1/profile/self — no parameters"},
			},
			rules: []string{
				"Report aggregates and trends only; never echo raw record identifiers from health data.",
				"Do not give medical advice; describe what the data shows.",
			},
		},
		{
			category: router.CategoryFinance,
			title:    "Finance",
			tools: []toolContract{
				{"finance_spending", "POST /api/v1/finance/spending — category (string, 'all' for breakdown), period (string: week|month|year)"},
			},
			rules: []string{
				"Always state the period a figure covers.",
				"Amounts come from tool results; never estimate a number the tool did not return.",
			},
		},
		{
			category: router.CategoryResearch,
			title:    "Research",
			tools: []toolContract{
				{"memory_search", "POST /api/v1/memory/search — query (string), limit (integer, default 5)"},
			},
			rules: []string{
				"Check personal memory for prior findings before reasoning from scratch.",
				"Separate retrieved facts from your own interpretation.",
			},
		},
		{
			category: router.CategoryMemory,
			title:    "Personal Memory",
			tools: []toolContract{
				{"memory_search", "POST /api/v1/memory/search — query (string), limit (integer, default 5)"},
				{"people_lookup", "POST /api/v1/memory/people — name (string, full or partial)"},
			},
			rules: []string{
				"Only report what a memory tool returned; never fabricate a memory.",
				"When several entries match, summarize them instead of picking one silently.",
			},
		},
		{
			category: router.CategoryWeather,
			title:    "Weather",
			tools: []toolContract{
				{"weather_current", "GET /api/v1/weather/current — location (string, city or place name)"},
			},
			rules: []string{
				"Include the location you queried in the answer so ambiguous city names are visible.",
			},
		},
		{
			category: router.CategoryTime,
			title:    "Time",
			tools: []toolContract{
				{"time_current", "GET /api/v1/time/current — timezone (string, IANA name)"},
			},
			rules: []string{
				"Timezone values must be IANA strings such as 'America/Chicago', never UTC offsets.",
			},
		},
	}
}

// personaFraming maps persona ids to "how to think about tool selection"
// templates. Personas without an entry get the generic framing.
var personaFraming = map[string]string{
	"personal_assistant": "You may combine several tools to answer one question. Plan which tools you need " +
		"before calling any, call them in dependency order, and merge their results into a single answer.",
	"memory_librarian": "Treat every question as a retrieval task: formulate the narrowest search query that " +
		"could answer it, inspect the results, and refine the query once if the first pass misses.",
	"research_specialist": "Decompose the question into sub-questions, answer each from retrieved material where " +
		"possible, and present findings as a structured summary with the open points named.",
	"health_analyst": "Look for patterns across periods rather than single data points. Compare the requested " +
		"period against the previous one before characterizing a trend.",
	"finance_tracker": "Start from the spending breakdown, then drill into specific categories only when the " +
		"totals raise a question worth answering.",
}

const genericFraming = "Decide first whether any tool is needed at all. If the question can be answered " +
	"from the conversation alone, answer directly instead of calling tools."

// Compose builds the guidance block for the matched categories and persona.
// Categories whose tools the persona does not carry are omitted entirely.
// An empty category set produces the generic tool-selection block.
func Compose(categories []string, p persona.Persona) string {
	allowed := make(map[string]struct{}, len(p.ToolNames))
	for _, name := range p.ToolNames {
		allowed[name] = struct{}{}
	}

	requested := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		requested[c] = struct{}{}
	}

	var sb strings.Builder
	sb.WriteString("## Tool Guidance\n")

	blocks := 0
	for _, guide := range categoryGuides() {
		if _, ok := requested[guide.category]; !ok {
			continue
		}
		var usable []toolContract
		for _, tc := range guide.tools {
			if _, ok := allowed[tc.name]; ok {
				usable = append(usable, tc)
			}
		}
		if len(usable) == 0 {
			continue
		}
		blocks++
		fmt.Fprintf(&sb, "\n### %s\n", guide.title)
		sb.WriteString("Available tools:\n")
		for _, tc := range usable {
			fmt.Fprintf(&sb, "- %s: %s\n", tc.name, tc.contract)
		}
		for _, rule := range guide.rules {
			fmt.Fprintf(&sb, "Rule: %s\n", rule)
		}
	}

	if blocks == 0 {
		sb.WriteString("\nNo specific topic was detected. " + genericFraming + "\n")
	}

	framing, ok := personaFraming[p.ID]
	if !ok {
		framing = genericFraming
	}
	sb.WriteString("\n### Approach\n")
	sb.WriteString(framing)
	sb.WriteString("\n")

	return sb.String()
}
