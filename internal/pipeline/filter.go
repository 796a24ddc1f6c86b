package pipeline

import (
	"fmt"

	"vizsel/internal/catalog"
	"vizsel/internal/logging"
	"vizsel/internal/profile"
)

// HardFilter eliminates variants whose structural prerequisites are violated
// by the measured shape. Returns the survivor set plus named elimination
// reasons per dropped variant (observability only).
//
// The survivor set is always a non-empty subset of the candidate set when the
// candidate set is non-empty: if every variant would be eliminated, the full
// candidate set is retained instead of overfiltering.
func HardFilter(candidates []catalog.VariantProfile, shape profile.DataShapeProfile) ([]catalog.VariantProfile, map[string][]string) {
	eliminations := make(map[string][]string)
	survivors := make([]catalog.VariantProfile, 0, len(candidates))

	for _, v := range candidates {
		reasons := prerequisiteViolations(v, shape)
		if len(reasons) == 0 {
			survivors = append(survivors, v)
		} else {
			eliminations[v.Name] = reasons
			logging.Filter("Eliminated %s: %v", v.Name, reasons)
		}
	}

	if len(survivors) == 0 && len(candidates) > 0 {
		// Overfiltered: treat as if no elimination occurred.
		logging.Filter("Hard filter would empty the candidate set; retaining all %d variants", len(candidates))
		survivors = append(survivors, candidates...)
	}

	return survivors, eliminations
}

func prerequisiteViolations(v catalog.VariantProfile, shape profile.DataShapeProfile) []string {
	var reasons []string
	if v.NeedsTimeseries && !shape.HasTimeseries {
		reasons = append(reasons, "needs_timeseries")
	}
	if v.NeedsMultipleEntities && shape.EntityCount < 2 {
		reasons = append(reasons, "needs_multiple_entities")
	}
	if v.IdealEntityCount.Min > 0 && shape.EntityCount < v.IdealEntityCount.Min {
		reasons = append(reasons, fmt.Sprintf("entity_count_below_min:%d", v.IdealEntityCount.Min))
	}
	if v.IdealMetricCount.Min > 0 && shape.MetricCount < v.IdealMetricCount.Min {
		reasons = append(reasons, fmt.Sprintf("metric_count_below_min:%d", v.IdealMetricCount.Min))
	}
	return reasons
}
