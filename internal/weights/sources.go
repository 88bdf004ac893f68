package weights

// DefaultSourceTable maps known outlet domains to credibility weights.
// Higher values indicate more credible sources.
var DefaultSourceTable = map[string]float64{
	// Tier 1: premium wire services and financial press.
	"reuters.com":   1.00,
	"bloomberg.com": 0.97,
	"wsj.com":       0.95,
	"ft.com":        0.95,

	// Tier 2: major financial news.
	"cnbc.com":         0.92,
	"seekingalpha.com": 0.85,
	"marketwatch.com":  0.85,
	"barrons.com":      0.85,

	// Tier 3: general financial news.
	"yahoo.com":           0.80,
	"finance.yahoo.com":   0.85,
	"investopedia.com":    0.80,
	"benzinga.com":        0.75,
	"fool.com":            0.70,
	"businessinsider.com": 0.75,
	"simplywall.st":       0.70,

	// Tier 4: aggregators and lower-credibility outlets.
	"msn.com":         0.60,
	"marketbeat.com":  0.60,
	"coincentral.com": 0.60,
}

// SourceTableWithOverrides returns a copy of the default table with the given
// overrides applied on top. The default table itself is never mutated.
func SourceTableWithOverrides(overrides map[string]float64) map[string]float64 {
	table := make(map[string]float64, len(DefaultSourceTable)+len(overrides))

	for k, v := range DefaultSourceTable {
		table[k] = v
	}

	for k, v := range overrides {
		table[k] = v
	}

	return table
}
