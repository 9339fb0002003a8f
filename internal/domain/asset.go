package domain

// MarketID maps internal symbols to CoinGecko API identifiers.
var MarketID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
}

// MarketIDToSymbol is the reverse mapping.
var MarketIDToSymbol map[string]string

func init() {
	MarketIDToSymbol = make(map[string]string, len(MarketID))
	for sym, id := range MarketID {
		MarketIDToSymbol[id] = sym
	}
}

// SupportedSymbols lists all tracked crypto symbols.
var SupportedSymbols = []string{
	"BTC", "ETH", "SOL", "XRP", "ADA",
	"DOGE", "DOT", "AVAX", "LINK", "MATIC",
}

// TokenContract describes where an asset's ERC-20 representation lives
// and how to scale its raw integer supply into a human unit. Assets
// without an entry have no on-chain proxy source; that is a per-source
// configuration gap, not a collection failure for the other sources.
type TokenContract struct {
	Address  string
	Decimals int
}

// TokenContracts maps symbols to the contract the on-chain provider
// watches for transfer activity and total supply.
var TokenContracts = map[string]TokenContract{
	"LINK":  {Address: "0x514910771af9ca656af840dff83e8264ecf986ca", Decimals: 18},
	"MATIC": {Address: "0x7d1afa7b718fb893db30a3abc0cfc608aacfebb0", Decimals: 18},
	"AVAX":  {Address: "0x85f138bfee4ef8e540890cfb48f620571d67eda3", Decimals: 18},
}
