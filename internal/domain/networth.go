package domain

// AssetValue is the valuation of a single balance in the requested currency
type AssetValue struct {
	Amount       float64 `json:"amount"`         // Amount held
	PricePerUnit float64 `json:"price_per_unit"` // Price of one unit
	TotalValue   float64 `json:"total_value"`    // Amount times price
}

// NetWorth is the computed net worth of a user in one currency
type NetWorth struct {
	NetWorth float64               `json:"net_worth"` // Sum of all total values
	Currency string                `json:"currency"`  // Target fiat currency
	Details  map[string]AssetValue `json:"details"`   // Per-symbol breakdown keyed by uppercase symbol
}

// EmptyNetWorth returns a zero net worth with no details
func EmptyNetWorth(currency string) *NetWorth {
	return &NetWorth{Currency: currency, Details: map[string]AssetValue{}}
}
