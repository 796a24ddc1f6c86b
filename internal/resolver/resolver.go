// Package resolver maps natural-language questions to concrete numeric
// columns of an equipment table. Resolution walks five tiers from exact
// domain-keyword matches down to any-numeric-column desperation, threading a
// used-column set so a batch of dashboard widgets binds diverse columns.
package resolver

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"vizsel/internal/logging"
)

// Column describes one column of the source table.
type Column struct {
	Name      string
	Label     string
	Unit      string
	Numeric   bool
	HasData   bool
	Timestamp bool
}

// Match is a resolved column binding, immutable once returned.
type Match struct {
	Table      string
	Column     string
	Unit       string
	Confidence float64
}

// Qualified returns the "table.column" key used for diversity tracking.
func (m Match) Qualified() string { return m.Table + "." + m.Column }

// Tier confidences.
const (
	confKeyword    = 0.95
	confPreference = 0.80
	confFuzzyCap   = 0.75
	confDefault    = 0.60
	confAnyUnused  = 0.40
	confAnyNumeric = 0.20

	fuzzyFloor     = 0.15
	usedMultiplier = 0.5
)

// Resolve maps a question to a column of table. Returns nil only when the
// table has no numeric column at all. used holds "table.column" keys already
// bound by earlier widgets in the same batch; it is read, never written.
func Resolve(question, table string, columns []Column, equipment, scenario string, used map[string]bool) *Match {
	question = strings.ToLower(question)
	isUsed := func(col string) bool { return used[table+"."+col] }

	// Tier 1: canonical metric keyword from the question text.
	if m := resolveKeyword(question, table, columns, equipment, isUsed); m != nil {
		logging.Resolver("Tier-1 keyword match: %s (%s)", m.Qualified(), m.Unit)
		return m
	}

	// Tier 2: scenario-ordered preference walk over the family's metric map.
	if m := resolvePreference(table, columns, equipment, scenario, isUsed); m != nil {
		logging.Resolver("Tier-2 preference match: %s", m.Qualified())
		return m
	}

	// Tier 3: fuzzy label scoring over every numeric column.
	if m := resolveFuzzy(question, table, columns, equipment, isUsed); m != nil {
		logging.Resolver("Tier-3 fuzzy match: %s (conf=%.2f)", m.Qualified(), m.Confidence)
		return m
	}

	// Tier 4: the family's declared default metric.
	if m := resolveDefault(table, columns, equipment, isUsed); m != nil {
		logging.Resolver("Tier-4 default match: %s", m.Qualified())
		return m
	}

	// Tier 5: any numeric column, preferring unused ones with data.
	if m := resolveAnyNumeric(table, columns, isUsed); m != nil {
		logging.Resolver("Tier-5 fallback match: %s (conf=%.2f)", m.Qualified(), m.Confidence)
		return m
	}

	logging.Resolver("No numeric column resolvable in %s", table)
	return nil
}

// ResolveDiverseColumns resolves one question per widget against the same
// table, threading the used-column set sequentially so no two widgets bind
// the same column unless the table genuinely runs out of candidates.
// scenarios may be nil or shorter than questions; missing entries resolve
// without a scenario preference.
func ResolveDiverseColumns(questions []string, table string, columns []Column, equipment string, scenarios []string) []*Match {
	used := make(map[string]bool)
	out := make([]*Match, len(questions))
	for i, q := range questions {
		scenario := ""
		if i < len(scenarios) {
			scenario = scenarios[i]
		}
		m := Resolve(q, table, columns, equipment, scenario, used)
		out[i] = m
		if m != nil {
			used[m.Qualified()] = true
		}
	}
	return out
}

// =============================================================================
// TIER 1: KEYWORD
// =============================================================================

func resolveKeyword(question, table string, columns []Column, equipment string, isUsed func(string) bool) *Match {
	metrics := equipmentMetrics[equipment]
	if metrics == nil {
		return nil
	}

	tokens := strings.Fields(question)
	for i, token := range tokens {
		token = strings.Trim(token, "?.,!")
		keyword := canonicalMetric(token)
		if keyword == "" {
			continue
		}
		// "current" doubles as a temporal adjective: "current temperature"
		// asks about temperature, not electrical current.
		if keyword == "current" && i+1 < len(tokens) {
			if next := canonicalMetric(strings.Trim(tokens[i+1], "?.,!")); next != "" && next != "current" {
				continue
			}
		}

		entry, ok := metrics[keyword]
		if !ok {
			continue
		}

		column := entry.Column
		if phase := detectPhase(question); phase != "" && entry.PhaseColumns != nil {
			if phased, ok := entry.PhaseColumns[phase]; ok {
				column = phased
			}
		}

		if hasColumn(columns, column) && !isUsed(column) {
			return &Match{Table: table, Column: column, Unit: entry.Unit, Confidence: confKeyword}
		}
	}
	return nil
}

// detectPhase finds an R/Y/B phase reference in the question.
func detectPhase(question string) string {
	for phrase, phase := range map[string]string{
		"r phase": "r", "red phase": "r", "phase r": "r",
		"y phase": "y", "yellow phase": "y", "phase y": "y",
		"b phase": "b", "blue phase": "b", "phase b": "b",
	} {
		if strings.Contains(question, phrase) {
			return phase
		}
	}
	return ""
}

// =============================================================================
// TIER 2: SCENARIO PREFERENCE
// =============================================================================

func resolvePreference(table string, columns []Column, equipment, scenario string, isUsed func(string) bool) *Match {
	metrics := equipmentMetrics[equipment]
	if metrics == nil {
		return nil
	}

	order, ok := scenarioPreference[scenario]
	if !ok {
		order = defaultPreference
	}
	for _, keyword := range order {
		entry, ok := metrics[keyword]
		if !ok {
			continue
		}
		if hasColumn(columns, entry.Column) && !isUsed(entry.Column) {
			return &Match{Table: table, Column: entry.Column, Unit: entry.Unit, Confidence: confPreference}
		}
	}
	return nil
}

// =============================================================================
// TIER 3: FUZZY LABEL SCORING
// =============================================================================

func resolveFuzzy(question, table string, columns []Column, equipment string, isUsed func(string) bool) *Match {
	tokens := contentTokens(question)
	if len(tokens) == 0 {
		return nil
	}

	var best *Column
	var bestScore float64
	for i := range columns {
		col := &columns[i]
		if !col.Numeric || col.Timestamp {
			continue
		}

		score := labelSimilarity(tokens, col.Label, col.Name)
		if col.Unit != "" && containsWord(question, strings.ToLower(col.Unit)) {
			score += 0.20
		}
		if knownColumn(equipment, col.Name) {
			score += 0.15
		}
		if isUsed(col.Name) {
			score *= usedMultiplier
		}

		if score > bestScore {
			bestScore = score
			best = col
		}
	}

	if best == nil || bestScore < fuzzyFloor {
		return nil
	}
	conf := bestScore
	if conf > confFuzzyCap {
		conf = confFuzzyCap
	}
	return &Match{Table: table, Column: best.Name, Unit: best.Unit, Confidence: conf}
}

// labelSimilarity is the fraction of question content tokens fuzzy-matching
// the column's label or name.
func labelSimilarity(tokens []string, label, name string) float64 {
	target := strings.ToLower(label + " " + strings.ReplaceAll(name, "_", " "))
	matched := 0
	for _, token := range tokens {
		if len(fuzzy.Find(token, []string{target})) > 0 {
			matched++
		}
	}
	return 0.6 * float64(matched) / float64(len(tokens))
}

// containsWord reports whether word appears in text at word boundaries, so a
// single-letter unit like "A" cannot match inside an unrelated word.
func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// contentTokens drops short and stopword tokens from the question.
func contentTokens(question string) []string {
	var out []string
	for _, f := range strings.Fields(question) {
		f = strings.Trim(f, "?.,!")
		if len(f) <= 2 || questionStopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

var questionStopwords = map[string]bool{
	"what": true, "show": true, "the": true, "how": true, "is": true,
	"are": true, "for": true, "over": true, "last": true, "this": true,
	"and": true, "with": true, "trend": true, "compare": true,
}

// =============================================================================
// TIERS 4 AND 5: DEFAULTS AND DESPERATION
// =============================================================================

func resolveDefault(table string, columns []Column, equipment string, isUsed func(string) bool) *Match {
	keyword, ok := defaultMetric[equipment]
	if !ok {
		return nil
	}
	entry, ok := equipmentMetrics[equipment][keyword]
	if !ok {
		return nil
	}
	if hasColumn(columns, entry.Column) && !isUsed(entry.Column) {
		return &Match{Table: table, Column: entry.Column, Unit: entry.Unit, Confidence: confDefault}
	}
	return nil
}

func resolveAnyNumeric(table string, columns []Column, isUsed func(string) bool) *Match {
	var anyNumeric *Column
	for i := range columns {
		col := &columns[i]
		if !col.Numeric || col.Timestamp {
			continue
		}
		if anyNumeric == nil {
			anyNumeric = col
		}
		if col.HasData && !isUsed(col.Name) {
			return &Match{Table: table, Column: col.Name, Unit: col.Unit, Confidence: confAnyUnused}
		}
	}
	if anyNumeric != nil {
		return &Match{Table: table, Column: anyNumeric.Name, Unit: anyNumeric.Unit, Confidence: confAnyNumeric}
	}
	return nil
}

func hasColumn(columns []Column, name string) bool {
	for _, c := range columns {
		if c.Name == name {
			return true
		}
	}
	return false
}
