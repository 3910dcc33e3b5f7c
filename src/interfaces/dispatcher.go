package interfaces

import "github.com/sudip490/goldsilver-sub000/src/models"

// -----------------------------------------------------------------------------
// IDispatcher fans one price payload out to every subscriber.
// -----------------------------------------------------------------------------

type IDispatcher interface {

	// DispatchAll sends the payload to all subscribers sequentially and
	// returns the aggregate result. Per-recipient failures are recorded,
	// never propagated.
	DispatchAll(payload models.MPricePayload) *models.MDispatchResult
}
