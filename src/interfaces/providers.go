package interfaces

import "github.com/sudip490/goldsilver-sub000/src/models"

// -----------------------------------------------------------------------------
// Read-only collaborator data. Subscriber and transaction lifecycles are
// owned by the user-management side; this core only lists them.
// -----------------------------------------------------------------------------

type ISubscriberProvider interface {

	// ListSubscribers returns every subscriber, including ones with no email.
	ListSubscribers() ([]models.MSubscriber, error)
}

// -----------------------------------------------------------------------------

type ITransactionProvider interface {

	// TransactionsFor returns the buy/sell transactions of one subscriber.
	TransactionsFor(userID int64) ([]models.MPortfolioTransaction, error)
}
