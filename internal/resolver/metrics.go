package resolver

// MetricEntry binds a canonical metric keyword to a concrete column and its
// physical unit for one equipment family. PhaseColumns carries the per-phase
// columns of three-phase electrical metrics, keyed "r", "y", "b".
type MetricEntry struct {
	Column       string
	Unit         string
	PhaseColumns map[string]string
}

// equipmentMetrics maps equipment family -> metric keyword -> entry. Column
// names follow the site historian convention of embedding the unit in the
// column name.
var equipmentMetrics = map[string]map[string]MetricEntry{
	"pump": {
		"vibration":   {Column: "vibration_axial_mm_s", Unit: "mm/s"},
		"flow":        {Column: "flow_rate_m3_h", Unit: "m3/h"},
		"pressure":    {Column: "discharge_pressure_bar", Unit: "bar"},
		"temperature": {Column: "bearing_temp_c", Unit: "°C"},
		"power":       {Column: "motor_power_kw", Unit: "kW"},
		"speed":       {Column: "shaft_speed_rpm", Unit: "rpm"},
		"current":     {Column: "motor_current_a", Unit: "A"},
		"efficiency":  {Column: "pump_efficiency_pct", Unit: "%"},
	},
	"motor": {
		"current": {
			Column: "current_avg_a", Unit: "A",
			PhaseColumns: map[string]string{"r": "current_r_a", "y": "current_y_a", "b": "current_b_a"},
		},
		"voltage": {
			Column: "voltage_avg_v", Unit: "V",
			PhaseColumns: map[string]string{"r": "voltage_r_v", "y": "voltage_y_v", "b": "voltage_b_v"},
		},
		"temperature": {Column: "winding_temp_c", Unit: "°C"},
		"vibration":   {Column: "vibration_rms_mm_s", Unit: "mm/s"},
		"power":       {Column: "active_power_kw", Unit: "kW"},
		"speed":       {Column: "rotor_speed_rpm", Unit: "rpm"},
		"torque":      {Column: "shaft_torque_nm", Unit: "Nm"},
		"frequency":   {Column: "supply_frequency_hz", Unit: "Hz"},
	},
	"transformer": {
		"current": {
			Column: "load_current_a", Unit: "A",
			PhaseColumns: map[string]string{"r": "current_r_a", "y": "current_y_a", "b": "current_b_a"},
		},
		"voltage": {
			Column: "secondary_voltage_v", Unit: "V",
			PhaseColumns: map[string]string{"r": "voltage_r_v", "y": "voltage_y_v", "b": "voltage_b_v"},
		},
		"temperature": {Column: "oil_temp_c", Unit: "°C"},
		"load":        {Column: "load_pct", Unit: "%"},
		"power":       {Column: "apparent_power_kva", Unit: "kVA"},
		"frequency":   {Column: "frequency_hz", Unit: "Hz"},
	},
	"generator": {
		"power":       {Column: "output_power_kw", Unit: "kW"},
		"voltage":     {Column: "terminal_voltage_v", Unit: "V"},
		"current":     {Column: "stator_current_a", Unit: "A"},
		"frequency":   {Column: "frequency_hz", Unit: "Hz"},
		"fuel":        {Column: "fuel_level_pct", Unit: "%"},
		"speed":       {Column: "engine_speed_rpm", Unit: "rpm"},
		"temperature": {Column: "coolant_temp_c", Unit: "°C"},
		"runtime":     {Column: "run_hours_h", Unit: "h"},
	},
	"compressor": {
		"pressure":    {Column: "discharge_pressure_bar", Unit: "bar"},
		"temperature": {Column: "discharge_temp_c", Unit: "°C"},
		"flow":        {Column: "air_flow_m3_min", Unit: "m3/min"},
		"power":       {Column: "motor_power_kw", Unit: "kW"},
		"vibration":   {Column: "vibration_rms_mm_s", Unit: "mm/s"},
		"current":     {Column: "motor_current_a", Unit: "A"},
		"runtime":     {Column: "loaded_hours_h", Unit: "h"},
	},
}

// defaultMetric names each family's fallback metric for tier-4 resolution.
var defaultMetric = map[string]string{
	"pump":        "flow",
	"motor":       "current",
	"transformer": "load",
	"generator":   "power",
	"compressor":  "pressure",
}

// scenarioPreference orders metric keywords per scenario family for tier-2
// resolution. KPI widgets lead with headline operating figures, trend widgets
// with slowly drifting condition metrics, comparison widgets with metrics that
// are meaningful across sibling equipment.
var scenarioPreference = map[string][]string{
	"kpi":        {"power", "load", "efficiency", "flow", "pressure", "runtime"},
	"trend":      {"temperature", "vibration", "current", "pressure", "power", "flow"},
	"comparison": {"power", "efficiency", "load", "current", "temperature", "runtime"},
}

// defaultPreference is the tier-2 order when the scenario has no specific list.
var defaultPreference = []string{"power", "temperature", "current", "flow", "pressure", "vibration"}

// metricSynonyms folds question vocabulary onto canonical metric keywords.
var metricSynonyms = map[string]string{
	"vibrations":  "vibration",
	"vibrating":   "vibration",
	"temp":        "temperature",
	"heat":        "temperature",
	"amps":        "current",
	"amperage":    "current",
	"volts":       "voltage",
	"volt":        "voltage",
	"kw":          "power",
	"wattage":     "power",
	"consumption": "power",
	"rpm":         "speed",
	"throughput":  "flow",
	"discharge":   "pressure",
	"hours":       "runtime",
	"uptime":      "runtime",
	"hz":          "frequency",
	"loading":     "load",
}

// canonicalMetric reduces a question token to its metric keyword, or "".
func canonicalMetric(token string) string {
	if syn, ok := metricSynonyms[token]; ok {
		return syn
	}
	for _, metrics := range equipmentMetrics {
		if _, ok := metrics[token]; ok {
			return token
		}
	}
	return ""
}

// knownColumn reports whether name is a mapped metric column for the family.
func knownColumn(family, name string) bool {
	for _, entry := range equipmentMetrics[family] {
		if entry.Column == name {
			return true
		}
		for _, phased := range entry.PhaseColumns {
			if phased == name {
				return true
			}
		}
	}
	return false
}
