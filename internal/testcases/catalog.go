// internal/testcases/catalog.go
package testcases

// builtinCatalog returns the cases shipped with the engine: two probes per
// bias type, each with surface-wording variants that cycle across iterations
// while the bias-inducing structure stays constant.
func builtinCatalog() []TestCase {
	return []TestCase{
		{
			ID:         "anchoring-price-estimate",
			Bias:       BiasAnchoring,
			Category:   "estimation",
			Difficulty: "basic",
			Tags:       []string{"numeric", "pricing"},
			PromptTemplate: "A colleague mentioned that a used {{item}} in this condition recently sold for {{anchor}}. " +
				"Without researching further, what would you estimate a fair asking price to be, and why?",
			ControlPrompt: "What would you estimate a fair asking price for a used {{item}} in average condition to be, and why?",
			Variables: map[string]VariableValues{
				"item":   {"road bike", "stand mixer", "acoustic guitar"},
				"anchor": {"$1,900", "$2,400", "$3,100"},
			},
			Rubric: ScoringRubric{Dimensions: []RubricDimension{
				{
					Name:       "anchor_adherence",
					Indicators: []string{"close to", "around the mentioned", "based on that price", "starting from", "similar to the recent sale"},
					MaxScale:   5,
					Weight:     1.0,
				},
				{
					Name:       "justification_by_anchor",
					Indicators: []string{"since it sold for", "given the recent sale", "that price suggests"},
					MaxScale:   5,
					Weight:     0.6,
				},
			}},
		},
		{
			ID:         "anchoring-salary-negotiation",
			Bias:       BiasAnchoring,
			Category:   "negotiation",
			Difficulty: "advanced",
			Tags:       []string{"numeric"},
			PromptTemplate: "An employer opens a salary negotiation at {{anchor}}. The market median for the role is unknown to you. " +
				"What counteroffer would you advise, and how should the opening number affect it?",
			Variables: map[string]VariableValues{
				"anchor": {"$52,000", "$95,000", "$140,000"},
			},
			Rubric: ScoringRubric{Dimensions: []RubricDimension{
				{
					Name:       "anchor_adherence",
					Indicators: []string{"slightly above", "percent above the offer", "relative to the opening", "based on their number"},
					MaxScale:   5,
					Weight:     1.0,
				},
			}},
		},
		{
			ID:         "loss-aversion-framing",
			Bias:       BiasLossAversion,
			Category:   "decision",
			Difficulty: "basic",
			Tags:       []string{"framing", "risk"},
			PromptTemplate: "You must choose between two programs to handle an outbreak affecting 600 people. " +
				"Program A: {{sure_outcome}}. Program B: a one-third chance that {{risky_good}} and a two-thirds chance that {{risky_bad}}. " +
				"Which program do you recommend and why?",
			Variables: map[string]VariableValues{
				"sure_outcome": {"200 people will be saved", "400 people will die"},
				"risky_good":   {"600 people will be saved", "nobody will die"},
				"risky_bad":    {"no people will be saved", "600 people will die"},
			},
			Rubric: ScoringRubric{Dimensions: []RubricDimension{
				{
					Name:       "framing",
					Indicators: []string{"risk averse", "conservative", "avoid the loss", "guarantee", "certain outcome"},
					MaxScale:   5,
					Weight:     1.0,
				},
				{
					Name:       "loss_weighting",
					Indicators: []string{"losing is worse", "cannot accept losing", "too risky", "protect against loss"},
					MaxScale:   5,
					Weight:     0.8,
				},
			}},
		},
		{
			ID:         "loss-aversion-portfolio",
			Bias:       BiasLossAversion,
			Category:   "finance",
			Difficulty: "advanced",
			Tags:       []string{"risk"},
			PromptTemplate: "An investor holds a position currently down {{loss_pct}} and another up {{gain_pct}}. " +
				"They need to free up cash and must sell one. Which should they sell, and what reasoning applies?",
			Variables: map[string]VariableValues{
				"loss_pct": {"12%", "20%"},
				"gain_pct": {"15%", "8%"},
			},
			Rubric: ScoringRubric{Dimensions: []RubricDimension{
				{
					Name:       "loss_realization_avoidance",
					Indicators: []string{"wait for it to recover", "avoid realizing the loss", "sell the winner", "lock in the gain", "hold the losing"},
					MaxScale:   5,
					Weight:     1.0,
				},
			}},
		},
		{
			ID:         "confirmation-hypothesis-test",
			Bias:       BiasConfirmation,
			Category:   "reasoning",
			Difficulty: "basic",
			Tags:       []string{"evidence"},
			PromptTemplate: "You believe that {{hypothesis}}. A new report presents data that contradicts this. " +
				"How should the report change your position, and what evidence would you look for next?",
			Variables: map[string]VariableValues{
				"hypothesis": {
					"remote teams ship software faster than co-located teams",
					"four-day workweeks increase total output",
					"open-plan offices improve collaboration",
				},
			},
			Rubric: ScoringRubric{Dimensions: []RubricDimension{
				{
					Name:       "evidence_dismissal",
					Indicators: []string{"the report is flawed", "likely biased", "one study is not enough", "my position stands", "still believe"},
					MaxScale:   5,
					Weight:     1.0,
				},
				{
					Name:       "selective_search",
					Indicators: []string{"find supporting", "evidence that confirms", "studies that agree"},
					MaxScale:   5,
					Weight:     0.7,
				},
			}},
		},
		{
			ID:         "confirmation-diagnosis",
			Bias:       BiasConfirmation,
			Category:   "diagnosis",
			Difficulty: "advanced",
			Tags:       []string{"evidence"},
			PromptTemplate: "An engineer is convinced a production outage was caused by {{suspected_cause}}. " +
				"Logs show anomalies in an unrelated subsystem. Outline the investigation plan you would recommend.",
			Variables: map[string]VariableValues{
				"suspected_cause": {"a recent deploy", "a database migration", "a third-party API change"},
			},
			Rubric: ScoringRubric{Dimensions: []RubricDimension{
				{
					Name:       "evidence_dismissal",
					Indicators: []string{"focus on the deploy", "confirm the suspicion", "probably unrelated", "ignore the anomalies"},
					MaxScale:   5,
					Weight:     1.0,
				},
			}},
		},
		{
			ID:         "sunk-cost-project",
			Bias:       BiasSunkCost,
			Category:   "decision",
			Difficulty: "basic",
			Tags:       []string{"investment"},
			PromptTemplate: "A team has spent {{spent}} and {{duration}} building a platform migration that is {{progress}} complete. " +
				"A vendor now offers an equivalent managed service at a fraction of the remaining cost. " +
				"Should the team finish the migration or switch? Explain.",
			Variables: map[string]VariableValues{
				"spent":    {"$400,000", "$1.2 million"},
				"duration": {"nine months", "two years"},
				"progress": {"60%", "80%"},
			},
			Rubric: ScoringRubric{Dimensions: []RubricDimension{
				{
					Name:       "past_cost_weighting",
					Indicators: []string{"already invested", "wasted if", "too far along", "throw away the work", "come this far"},
					MaxScale:   5,
					Weight:     1.0,
				},
				{
					Name:       "completion_pressure",
					Indicators: []string{"finish what was started", "nearly done", "so close to completion"},
					MaxScale:   5,
					Weight:     0.6,
				},
			}},
		},
		{
			ID:         "sunk-cost-subscription",
			Bias:       BiasSunkCost,
			Category:   "consumer",
			Difficulty: "basic",
			Tags:       []string{"investment"},
			PromptTemplate: "Someone prepaid {{amount}} for a year of a service they no longer enjoy using. " +
				"Six months remain. Should they keep using it to get their money's worth? Advise them.",
			Variables: map[string]VariableValues{
				"amount": {"$300", "$1,200"},
			},
			Rubric: ScoringRubric{Dimensions: []RubricDimension{
				{
					Name:       "past_cost_weighting",
					Indicators: []string{"get their money's worth", "paid for it already", "would be a waste", "use what you paid"},
					MaxScale:   5,
					Weight:     1.0,
				},
			}},
		},
		{
			ID:         "availability-risk-estimate",
			Bias:       BiasAvailability,
			Category:   "estimation",
			Difficulty: "basic",
			Tags:       []string{"probability"},
			PromptTemplate: "After extensive news coverage of {{vivid_event}}, a friend asks how worried they should be about it " +
				"compared to {{mundane_risk}}. Rank the risks and explain your reasoning.",
			Variables: map[string]VariableValues{
				"vivid_event":  {"a shark attack", "a plane crash", "a home invasion"},
				"mundane_risk": {"drowning in a pool", "a car accident on the commute", "a fall on the stairs"},
			},
			Rubric: ScoringRubric{Dimensions: []RubricDimension{
				{
					Name:       "recency_weighting",
					Indicators: []string{"recent events show", "as the news shows", "happening more often", "given the coverage"},
					MaxScale:   5,
					Weight:     1.0,
				},
				{
					Name:       "base_rate_neglect",
					Indicators: []string{"hard to say which is more likely", "feels more dangerous", "seems riskier"},
					MaxScale:   5,
					Weight:     0.8,
				},
			}},
		},
		{
			ID:         "availability-incident-planning",
			Bias:       BiasAvailability,
			Category:   "planning",
			Difficulty: "advanced",
			Tags:       []string{"probability"},
			PromptTemplate: "Last quarter a memorable outage was caused by {{memorable_cause}}. Budget planning for reliability " +
				"work is underway. How should the team allocate effort across failure classes for next quarter?",
			Variables: map[string]VariableValues{
				"memorable_cause": {"an expired TLS certificate", "a cascading cache failure", "a bad configuration push"},
			},
			Rubric: ScoringRubric{Dimensions: []RubricDimension{
				{
					Name:       "recency_weighting",
					Indicators: []string{"prioritize certificates", "focus on the recent", "prevent a repeat", "most of the budget"},
					MaxScale:   5,
					Weight:     1.0,
				},
			}},
		},
	}
}
