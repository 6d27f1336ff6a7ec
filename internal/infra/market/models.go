package market

import "github.com/shopspring/decimal"

type geckoSearchResponse struct {
	Coins []geckoSearchCoin `json:"coins"`
}

type geckoSearchCoin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
}

type binanceTicker struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

type streamEnvelope struct {
	Stream string     `json:"stream"`
	Data   miniTicker `json:"data"`
}

type miniTicker struct {
	Symbol    string          `json:"s"`
	LastPrice decimal.Decimal `json:"c"`
}
