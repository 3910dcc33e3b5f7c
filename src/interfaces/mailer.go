package interfaces

import "github.com/sudip490/goldsilver-sub000/src/models"

// -----------------------------------------------------------------------------
// IMailer is the opaque message-send capability. One call, one recipient,
// success or failure; delivery guarantees beyond that are the provider's.
// -----------------------------------------------------------------------------

type IMailer interface {

	// Send delivers one message. portfolio is nil for price-only payloads.
	// Returns the provider's message id on success.
	Send(to, name string, price models.MPricePayload, portfolio *models.MPortfolioSummary) (string, error)
}
