package notify

import (
	"fmt"
	"time"

	"github.com/sudip490/goldsilver-sub000/src/interfaces"
	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"
	"github.com/sudip490/goldsilver-sub000/src/valuator"
)

// -----------------------------------------------------------------------------
// Dispatcher
//
// Fans one price payload out to every subscriber, strictly sequentially: the
// mail provider rate-limits, so an inter-send delay follows every send no
// matter the outcome. One bad recipient never stops the loop.
// -----------------------------------------------------------------------------

type Dispatcher struct {
	Subscribers  interfaces.ISubscriberProvider
	Transactions interfaces.ITransactionProvider
	Mailer       interfaces.IMailer
	Logger       *logger.Logger
	SendDelay    time.Duration
}

// -----------------------------------------------------------------------------

func NewDispatcher(
	subs interfaces.ISubscriberProvider,
	txs interfaces.ITransactionProvider,
	mailer interfaces.IMailer,
	log *logger.Logger,
	sendDelay time.Duration,
) *Dispatcher {
	return &Dispatcher{
		Subscribers:  subs,
		Transactions: txs,
		Mailer:       mailer,
		Logger:       log,
		SendDelay:    sendDelay,
	}
}

// -----------------------------------------------------------------------------

// DispatchAll sends the payload to all subscribers with a non-empty email.
func (d *Dispatcher) DispatchAll(payload models.MPricePayload) *models.MDispatchResult {
	result := &models.MDispatchResult{Results: []models.MRecipientResult{}}

	subs, err := d.Subscribers.ListSubscribers()
	if err != nil {
		d.Logger.Error("Failed to list subscribers: %v", err)
		return result
	}

	for _, sub := range subs {
		if sub.Email == "" {
			continue
		}
		result.TotalUsers++

		outcome := d.sendOne(sub, payload)
		result.Results = append(result.Results, outcome)

		switch outcome.Status {
		case models.StatusSent:
			result.SuccessCount++
		case models.StatusSentPriceOnly:
			result.SuccessCount++
			result.PriceOnlyCount++
		default:
			result.FailCount++
		}

		// Provider rate limit: pause after every send, success or not.
		if d.SendDelay > 0 {
			time.Sleep(d.SendDelay)
		}
	}

	result.Success = result.FailCount == 0
	d.Logger.Info("Dispatch done: %d total, %d sent (%d price-only), %d failed",
		result.TotalUsers, result.SuccessCount, result.PriceOnlyCount, result.FailCount)

	return result
}

// -----------------------------------------------------------------------------

// sendOne computes the per-recipient payload and invokes the send capability.
// A panic anywhere inside is captured as an "error" outcome so the batch
// keeps going.
func (d *Dispatcher) sendOne(sub models.MSubscriber, payload models.MPricePayload) (outcome models.MRecipientResult) {
	outcome = models.MRecipientResult{Email: sub.Email}

	defer func() {
		if r := recover(); r != nil {
			d.Logger.Error("Recovered from panic while notifying %s: %v", sub.Email, r)
			outcome.Status = models.StatusError
			outcome.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	txs, err := d.Transactions.TransactionsFor(sub.ID)
	if err != nil {
		// Degrade to a price-only message rather than dropping the recipient.
		d.Logger.Warning("Transaction lookup failed for user %d: %v", sub.ID, err)
		txs = nil
	}

	var portfolio *models.MPortfolioSummary
	if len(txs) > 0 {
		portfolio = valuator.Evaluate(txs, payload.GoldPrice, payload.SilverPrice,
			payload.GoldChange, payload.SilverChange)
	}

	messageID, err := d.Mailer.Send(sub.Email, sub.Name, payload, portfolio)
	if err != nil {
		d.Logger.Warning("Send to %s failed: %v", sub.Email, err)
		outcome.Status = models.StatusFailed
		outcome.Error = err.Error()
		return outcome
	}

	outcome.MessageID = messageID
	if portfolio != nil {
		outcome.Status = models.StatusSent
	} else {
		outcome.Status = models.StatusSentPriceOnly
	}
	return outcome
}
