package interfaces

import (
	"context"

	"github.com/sudip490/goldsilver-sub000/src/models"
)

// -----------------------------------------------------------------------------
// Source contracts. The spot source is the primary: its failure aborts the
// aggregation cycle. The other two degrade to fallbacks or empty results.
// -----------------------------------------------------------------------------

type ISpotSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Fetch retrieves the current USD spot quote for gold and silver.
	Fetch(ctx context.Context) (*models.MSpotQuote, error)
}

// -----------------------------------------------------------------------------

type IForexSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Fetch resolves the exchange-rate table. Implementations fall back to a
	// secondary provider and finally to a static table; Fetch itself never
	// fails, the table's Source field records which path produced it.
	Fetch(ctx context.Context) *models.MExchangeRates
}

// -----------------------------------------------------------------------------

type ILocalMarketSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Fetch retrieves the local-market quote set and daily histories.
	// A provider failure yields a nil result, never an aborted cycle.
	Fetch(ctx context.Context) (*models.MLocalMarket, error)
}
