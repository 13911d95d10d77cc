package models

// Requests for engine HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Symbol string  `query:"symbol" json:"symbol" validate:"required"`
	Price  float64 `query:"price" json:"price" validate:"gte=0"`
}

type PhaseRequest struct {
	Symbol   string  `query:"symbol" json:"symbol" validate:"required"`
	PriceBTC float64 `query:"price_btc" json:"price_btc" validate:"gte=0"`
}

type AdvanceRequest struct {
	Symbol string `json:"symbol"` // empty = all configured symbols
}

type HistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"90" validate:"gte=1,lte=3650"`
}
