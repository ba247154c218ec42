package repository

// Market identifies the ticker universe to screen.
type Market string

const (
	MarketUS  Market = "US"
	MarketKR  Market = "KR"
	MarketAll Market = "ALL"
)

// IsValidMarket returns true if m is a supported market.
func IsValidMarket(m Market) bool {
	switch m {
	case MarketUS, MarketKR, MarketAll:
		return true
	default:
		return false
	}
}

// DefaultMarket returns the default market selection.
func DefaultMarket() Market { return MarketAll }

// NormalizeMarket converts raw string to a valid market (or default).
func NormalizeMarket(s string) Market {
	if s == "" {
		return DefaultMarket()
	}
	m := Market(s)
	if IsValidMarket(m) {
		return m
	}
	return DefaultMarket()
}

// CombineMode controls how per-strategy pass/fail folds into one predicate.
type CombineMode string

const (
	// CombineAny keeps a ticker when at least one requested strategy is met.
	CombineAny CombineMode = "any"
	// CombineAll keeps a ticker only when every requested strategy is met.
	CombineAll CombineMode = "all"
)

// IsValidCombineMode returns true if m is a supported combine mode.
func IsValidCombineMode(m CombineMode) bool {
	return m == CombineAny || m == CombineAll
}
