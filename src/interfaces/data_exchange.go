package interfaces

import "github.com/sudip490/goldsilver-sub000/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger is the outward-facing server surface: REST plus the
// websocket hub that pushes the latest market state.
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// Start runs the HTTP server (blocking).
	Start() error

	// -----------------------------------------------------------------------------

	// Stop shuts the hub down.
	Stop() error

	// -----------------------------------------------------------------------------

	// UpdateLatest replaces the cached state served to new clients.
	UpdateLatest(data *models.MLatestData)

	// -----------------------------------------------------------------------------

	// Broadcast pushes the state to all connected websocket clients.
	Broadcast(data *models.MLatestData)
}
