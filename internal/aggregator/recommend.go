// internal/aggregator/recommend.go
package aggregator

import (
	"sort"

	"github.com/mwiater/biasprobe/internal/testcases"
)

// Impact and difficulty levels for a recommendation.
const (
	ImpactLow    = "low"
	ImpactMedium = "medium"
	ImpactHigh   = "high"

	DifficultyEasy     = "easy"
	DifficultyModerate = "moderate"
	DifficultyComplex  = "complex"
)

// Recommendation is one actionable mitigation for a detected bias, ranked
// by priority on a 1-10 scale.
type Recommendation struct {
	Bias        testcases.BiasType `json:"biasType"`
	Priority    int                `json:"priority"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Summary     string             `json:"summary"`
	Impact      string             `json:"impact"`
	Difficulty  string             `json:"difficulty"`
}

// recommendationTemplate is a static mitigation pattern for one bias type.
type recommendationTemplate struct {
	title       string
	description string
	summary     string
	impact      string
	difficulty  string
}

var recommendationTemplates = map[testcases.BiasType][]recommendationTemplate{
	testcases.BiasAnchoring: {
		{
			title:       "Implement multi-perspective prompting",
			description: "Restructure prompts to present multiple baseline values before eliciting a response. Use randomized anchor values across scenarios to reduce single-anchor dependency.",
			summary:     "Present multiple starting points to prevent over-reliance on the first value shown",
			impact:      ImpactHigh,
			difficulty:  DifficultyEasy,
		},
		{
			title:       "Add anchor-blind evaluation phase",
			description: "Run a two-stage evaluation: initial assessment without context, then contextualized refinement. Compare outputs to measure anchor influence.",
			summary:     "Make initial decisions without reference points, then add context separately",
			impact:      ImpactMedium,
			difficulty:  DifficultyModerate,
		},
		{
			title:       "Randomize information presentation order",
			description: "Shuffle the order in which data points are presented to the model and track variance across orderings to identify order-dependency.",
			summary:     "Change the order information is shown to reduce first-impression bias",
			impact:      ImpactMedium,
			difficulty:  DifficultyEasy,
		},
	},
	testcases.BiasLossAversion: {
		{
			title:       "Normalize gain/loss framing",
			description: "Present scenarios in both gain-framed and loss-framed versions and verify equivalent scenarios receive equivalent treatment regardless of framing.",
			summary:     "Ensure positive and negative outcomes are weighted equally",
			impact:      ImpactHigh,
			difficulty:  DifficultyModerate,
		},
		{
			title:       "Implement risk-neutral scoring",
			description: "Apply a risk-neutral transformation to model outputs, using expected-value calculations rather than prospect-theory weightings.",
			summary:     "Focus on actual probability and impact rather than emotional response to risk",
			impact:      ImpactHigh,
			difficulty:  DifficultyComplex,
		},
		{
			title:       "Add loss-aversion detection layer",
			description: "Monitor outputs for asymmetric gain/loss responses and flag decisions showing a large sensitivity differential for reprocessing.",
			summary:     "Automatically detect and correct when the model over-reacts to potential losses",
			impact:      ImpactMedium,
			difficulty:  DifficultyModerate,
		},
	},
	testcases.BiasConfirmation: {
		{
			title:       "Implement adversarial evidence search",
			description: "For each hypothesis, generate and evaluate counter-arguments, requiring the model to engage with the strongest contradictory evidence before finalizing a position.",
			summary:     "Actively search for and consider evidence that contradicts initial thinking",
			impact:      ImpactHigh,
			difficulty:  DifficultyModerate,
		},
		{
			title:       "Add belief revision tracking",
			description: "Track whether the model updates beliefs when presented with contradictory evidence, scoring on Bayesian updating rather than position consistency.",
			summary:     "Track and reward changing opinions when new evidence appears",
			impact:      ImpactMedium,
			difficulty:  DifficultyComplex,
		},
		{
			title:       "Use blind evidence evaluation",
			description: "Present evidence without labels indicating whether it supports the current hypothesis, and measure evidence weighting before revealing relevance.",
			summary:     "Evaluate evidence quality before knowing if it supports the current position",
			impact:      ImpactHigh,
			difficulty:  DifficultyModerate,
		},
	},
	testcases.BiasSunkCost: {
		{
			title:       "Implement forward-looking decision framework",
			description: "Structure prompts to focus exclusively on future costs and benefits, excluding historical investment data from decision-relevant context.",
			summary:     "Make decisions based only on future outcomes, ignoring past investments",
			impact:      ImpactHigh,
			difficulty:  DifficultyEasy,
		},
		{
			title:       "Add sunk-cost filter",
			description: "Detect when historical cost information appears in the reasoning chain and strip or flag sunk-cost references before the final decision.",
			summary:     "Remove information about past investments from the decision-making process",
			impact:      ImpactMedium,
			difficulty:  DifficultyModerate,
		},
		{
			title:       "Use incremental value analysis",
			description: "Evaluate each decision as if starting fresh, comparing continue-current-path against switch-to-alternative using only prospective analysis.",
			summary:     "Evaluate each choice as if it were the first decision being made",
			impact:      ImpactHigh,
			difficulty:  DifficultyModerate,
		},
	},
	testcases.BiasAvailability: {
		{
			title:       "Incorporate base rate priming",
			description: "Provide statistical base rates and frequency data before eliciting probability judgments, weighting base rates above anecdotal examples.",
			summary:     "Start with actual statistics before considering individual examples",
			impact:      ImpactHigh,
			difficulty:  DifficultyEasy,
		},
		{
			title:       "Implement recency weighting correction",
			description: "Apply inverse recency weights to examples, normalizing for vividness and memorability to prevent availability-driven estimates.",
			summary:     "Reduce influence of recent or memorable events in predictions",
			impact:      ImpactMedium,
			difficulty:  DifficultyComplex,
		},
		{
			title:       "Use frequency-based sampling",
			description: "When retrieving examples, sample proportionally to true frequency rather than availability, preferring representative over convenient sampling.",
			summary:     "Choose examples based on how common they actually are, not how easy to recall",
			impact:      ImpactHigh,
			difficulty:  DifficultyModerate,
		},
	},
}

// maxRecommendations bounds the ranked list returned to callers.
const maxRecommendations = 7

// Recommend generates the ranked mitigation list for a set of aggregated
// results. Each bias type with findings contributes its template set, each
// instance prioritized by severity, detection confidence, and estimated
// impact; the top entries are returned in descending priority.
func Recommend(aggregates []AggregatedResults) []Recommendation {
	// One finding per bias type: the worst-scoring case carries the most
	// signal about how urgent mitigation is.
	worst := make(map[testcases.BiasType]AggregatedResults)
	for _, agg := range aggregates {
		if cur, ok := worst[agg.Bias]; !ok || agg.MeanScore > cur.MeanScore {
			worst[agg.Bias] = agg
		}
	}

	var recommendations []Recommendation
	for bias, agg := range worst {
		for _, tmpl := range recommendationTemplates[bias] {
			recommendations = append(recommendations, Recommendation{
				Bias:        bias,
				Priority:    priority(severityScore(agg.MeanScore), agg.DetectionConfidence, tmpl.impact),
				Title:       tmpl.title,
				Description: tmpl.description,
				Summary:     tmpl.summary,
				Impact:      tmpl.impact,
				Difficulty:  tmpl.difficulty,
			})
		}
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		if recommendations[i].Priority != recommendations[j].Priority {
			return recommendations[i].Priority > recommendations[j].Priority
		}
		return recommendations[i].Bias < recommendations[j].Bias
	})

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}

// severityScore rescales a mean bias score onto the 0-100 range the
// priority formula expects. Rubric scales top out near 5.
func severityScore(meanScore float64) float64 {
	s := meanScore * 20
	if s > 100 {
		return 100
	}
	if s < 0 {
		return 0
	}
	return s
}

// priority combines severity, confidence, and impact into a 1-10 rank.
func priority(severity, confidence float64, impact string) int {
	impactScore := 10.0
	switch impact {
	case ImpactLow:
		impactScore = 5
	case ImpactHigh:
		impactScore = 15
	}

	raw := severity*0.6 + confidence*30 + impactScore*0.1
	normalized := int(raw/100*9) + 1
	if normalized < 1 {
		return 1
	}
	if normalized > 10 {
		return 10
	}
	return normalized
}
