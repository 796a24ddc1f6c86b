package catalog

// Builtin returns the hand-tuned variant table shipped with vizsel.
// Descriptions are the canonical texts the semantic tie-breaker scores
// queries against, so they name the shapes and questions each variant serves.
func Builtin() *Catalog {
	return New(map[string][]VariantProfile{
		"kpi": {
			{
				Name:             "kpi-single",
				Description:      "Single headline number showing the latest value of one metric for one entity, ideal for a quick status check.",
				Default:          true,
				IdealEntityCount: Range{Min: 1, Max: 1},
				IdealMetricCount: Range{Min: 1, Max: 1},
			},
			{
				Name:              "kpi-accumulated",
				Description:       "Running total number card that sums a cumulative metric such as energy consumed or units produced over the selected period.",
				PrefersCumulative: true,
				IdealEntityCount:  Range{Min: 1, Max: 1},
				IdealMetricCount:  Range{Min: 1, Max: 1},
			},
			{
				Name:             "kpi-sparkline",
				Description:      "Number card with a small inline trend line giving recent history context behind the headline value.",
				NeedsTimeseries:  true,
				IdealEntityCount: Range{Min: 1, Max: 1},
				IdealMetricCount: Range{Min: 1, Max: 1},
			},
			{
				Name:              "kpi-gauge",
				Description:       "Gauge dial showing a percentage or utilization metric against its target band.",
				PrefersPercentage: true,
				IdealEntityCount:  Range{Min: 1, Max: 1},
				IdealMetricCount:  Range{Min: 1, Max: 1},
			},
		},
		"trend": {
			{
				Name:             "trend-line",
				Description:      "Classic time series line chart tracking how one or a few metrics evolve over time.",
				Default:          true,
				NeedsTimeseries:  true,
				IdealEntityCount: Range{Min: 1, Max: 3},
				IdealMetricCount: Range{Min: 1, Max: 3},
			},
			{
				Name:             "trend-rgb-phase",
				Description:      "Three-phase electrical time series chart plotting the R, Y and B phase readings of one metric together to expose phase imbalance.",
				NeedsTimeseries:  true,
				PrefersPhaseData: true,
				IdealEntityCount: Range{Min: 1, Max: 1},
				IdealMetricCount: Range{Min: 1, Max: 3},
			},
			{
				Name:              "trend-area-cumulative",
				Description:       "Filled area chart accumulating a metric over time, suited to consumption and production totals.",
				NeedsTimeseries:   true,
				PrefersCumulative: true,
				IdealEntityCount:  Range{Min: 1, Max: 1},
				IdealMetricCount:  Range{Min: 1, Max: 1},
			},
			{
				Name:                "trend-multi-series",
				Description:         "Multi-series time series chart overlaying several metrics or entities for visual correlation over time.",
				NeedsTimeseries:     true,
				PrefersMultiNumeric: true,
				IdealEntityCount:    Range{Min: 1, Max: 6},
				IdealMetricCount:    Range{Min: 2, Max: 6},
			},
			{
				Name:                "trend-band",
				Description:         "Time series line with a min-max band highlighting volatility and excursions in a noisy metric.",
				NeedsTimeseries:     true,
				PrefersHighVariance: true,
				IdealEntityCount:    Range{Min: 1, Max: 1},
				IdealMetricCount:    Range{Min: 1, Max: 1},
			},
		},
		"comparison": {
			{
				Name:                  "comparison-bar",
				Description:           "Side-by-side bar chart comparing one metric across multiple entities at a point in time.",
				Default:               true,
				NeedsMultipleEntities: true,
				IdealEntityCount:      Range{Min: 2, Max: 12},
				IdealMetricCount:      Range{Min: 1, Max: 1},
			},
			{
				Name:              "comparison-waterfall",
				Description:       "Waterfall chart decomposing how sequential positive and negative contributions accumulate into a total.",
				PrefersCumulative: true,
				IdealEntityCount:  Range{Min: 2, Max: 10},
				IdealMetricCount:  Range{Min: 1, Max: 1},
			},
			{
				Name:                  "comparison-radar",
				Description:           "Radar chart profiling several metrics at once for a small set of entities to compare overall signatures.",
				NeedsMultipleEntities: true,
				PrefersMultiNumeric:   true,
				IdealEntityCount:      Range{Min: 2, Max: 5},
				IdealMetricCount:      Range{Min: 3, Max: 8},
			},
			{
				Name:                  "comparison-delta",
				Description:           "Head-to-head delta view of exactly two entities showing the signed difference per metric.",
				NeedsMultipleEntities: true,
				IdealEntityCount:      Range{Min: 2, Max: 2},
				IdealMetricCount:      Range{Min: 1, Max: 4},
			},
		},
		"distribution": {
			{
				Name:                "distribution-histogram",
				Description:         "Histogram of observed values of one metric showing spread, skew and outliers.",
				Default:             true,
				PrefersHighVariance: true,
				IdealEntityCount:    Range{Min: 1, Max: 1},
				IdealMetricCount:    Range{Min: 1, Max: 1},
			},
			{
				Name:                  "distribution-box",
				Description:           "Box plot comparing the value distribution of one metric across multiple entities.",
				NeedsMultipleEntities: true,
				PrefersHighVariance:   true,
				IdealEntityCount:      Range{Min: 2, Max: 10},
				IdealMetricCount:      Range{Min: 1, Max: 1},
			},
		},
		"composition": {
			{
				Name:              "composition-donut",
				Description:       "Donut chart breaking a whole into percentage shares per category or entity.",
				Default:           true,
				PrefersPercentage: true,
				IdealEntityCount:  Range{Min: 2, Max: 8},
				IdealMetricCount:  Range{Min: 1, Max: 1},
			},
			{
				Name:             "composition-stacked-area",
				Description:      "Stacked area chart showing how the composition of a total shifts over time.",
				NeedsTimeseries:  true,
				IdealEntityCount: Range{Min: 2, Max: 8},
				IdealMetricCount: Range{Min: 1, Max: 1},
			},
			{
				Name:             "composition-treemap",
				Description:      "Treemap sizing nested rectangles by metric share, suited to hierarchical groupings.",
				PrefersHierarchy: true,
				IdealEntityCount: Range{Min: 3, Max: 50},
				IdealMetricCount: Range{Min: 1, Max: 1},
			},
		},
		"alerts": {
			{
				Name:          "alert-list",
				Description:   "Chronological list of active alerts with severity, source entity and acknowledgement state.",
				Default:       true,
				PrefersAlerts: true,
			},
			{
				Name:                  "alert-severity-matrix",
				Description:           "Grid of entities by severity level summarizing where alerts are concentrated.",
				PrefersAlerts:         true,
				NeedsMultipleEntities: true,
				IdealEntityCount:      Range{Min: 2, Max: 30},
			},
		},
		"timeline": {
			{
				Name:             "timeline-gantt",
				Description:      "Horizontal timeline of operating states and activities per entity over the selected window.",
				Default:          true,
				NeedsTimeseries:  true,
				IdealEntityCount: Range{Min: 1, Max: 10},
			},
			{
				Name:             "timeline-phase",
				Description:      "Timeline of process phases or batch steps with durations and transitions highlighted.",
				NeedsTimeseries:  true,
				PrefersPhaseData: true,
				IdealEntityCount: Range{Min: 1, Max: 3},
			},
		},
		"event-log": {
			{
				Name:        "event-log-table",
				Description: "Sortable table of discrete events with timestamps, entities and event details.",
				Default:     true,
			},
			{
				Name:             "event-log-binary-strip",
				Description:      "Strip chart of on-off state changes of a binary signal over time.",
				NeedsTimeseries:  true,
				PrefersBinary:    true,
				IdealMetricCount: Range{Min: 1, Max: 1},
			},
		},
		"category-bar": {
			{
				Name:             "category-bar-vertical",
				Description:      "Vertical bar chart of one metric per category, best for a handful of categories.",
				Default:          true,
				IdealEntityCount: Range{Min: 2, Max: 10},
				IdealMetricCount: Range{Min: 1, Max: 1},
			},
			{
				Name:             "category-bar-horizontal",
				Description:      "Horizontal bar chart ranking many categories by one metric with readable labels.",
				IdealEntityCount: Range{Min: 5, Max: 40},
				IdealMetricCount: Range{Min: 1, Max: 1},
			},
		},
		"flow": {
			{
				Name:             "flow-sankey",
				Description:      "Sankey diagram tracing how a flow quantity splits and merges between stages or entities.",
				Default:          true,
				PrefersFlow:      true,
				PrefersHierarchy: true,
				IdealEntityCount: Range{Min: 3, Max: 20},
			},
			{
				Name:             "flow-gauge-rate",
				Description:      "Rate gauge showing the instantaneous throughput of a flow metric against capacity.",
				PrefersFlow:      true,
				PrefersRate:      true,
				IdealEntityCount: Range{Min: 1, Max: 1},
				IdealMetricCount: Range{Min: 1, Max: 1},
			},
		},
		"matrix": {
			{
				Name:                  "matrix-heatmap",
				Description:           "Heatmap matrix of entities against time buckets or metrics with color-encoded intensity.",
				Default:               true,
				NeedsMultipleEntities: true,
				IdealEntityCount:      Range{Min: 3, Max: 50},
			},
			{
				Name:                "matrix-correlation",
				Description:         "Correlation matrix of pairwise relationships between several numeric metrics.",
				PrefersMultiNumeric: true,
				IdealMetricCount:    Range{Min: 3, Max: 15},
			},
		},
	})
}
