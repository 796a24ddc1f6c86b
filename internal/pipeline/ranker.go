package pipeline

import "sort"

// Thresholds and blend factors live in config.PipelineConfig; these are the
// shipped defaults mirrored there.
const (
	defaultAmbiguityGap = 0.10
	defaultMinTopScore  = 0.45
)

// rankComposites orders the given score map descending, breaking exact score
// ties by name so ranking is deterministic across runs.
func rankComposites(scores map[string]float64) []string {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := scores[names[i]], scores[names[j]]
		if si != sj {
			return si > sj
		}
		return names[i] < names[j]
	})
	return names
}

// rank computes the winner, score gap, confidence, and ambiguity verdict from
// the state's composite scores.
//
// Confidence rewards both an absolutely strong top score and a clear margin
// over the runner-up: min(1.0, top*1.5 + gap). A run is ambiguous when the
// margin is thin or the winner is weak in absolute terms, which escalates it
// to the tie-break layers.
func (s *State) rank(gapThreshold, minTop float64) {
	ranked := rankComposites(s.CompositeScores)
	if len(ranked) == 0 {
		s.TopVariant = ""
		s.Confidence = 0
		s.Ambiguous = false
		return
	}

	// A lone survivor has no runner-up; its gap is zero, not its own score.
	top := s.CompositeScores[ranked[0]]
	var gap float64
	if len(ranked) > 1 {
		gap = top - s.CompositeScores[ranked[1]]
	}

	s.TopVariant = ranked[0]
	s.Gap = round4(gap)
	s.Confidence = round4(clamp01(top*1.5 + gap))
	s.Ambiguous = len(ranked) > 1 && (gap < gapThreshold || top < minTop)

	if s.log != nil {
		s.log.Info("Ranked %d survivors: top=%s score=%.4f gap=%.4f conf=%.4f ambiguous=%v",
			len(ranked), s.TopVariant, top, s.Gap, s.Confidence, s.Ambiguous)
	}
}
