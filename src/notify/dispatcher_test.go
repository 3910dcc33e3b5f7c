package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"
)

// MockSubscriberProvider is a mock implementation of ISubscriberProvider for testing
type MockSubscriberProvider struct {
	mock.Mock
}

func (m *MockSubscriberProvider) ListSubscribers() ([]models.MSubscriber, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MSubscriber), args.Error(1)
}

// MockTransactionProvider is a mock implementation of ITransactionProvider for testing
type MockTransactionProvider struct {
	mock.Mock
}

func (m *MockTransactionProvider) TransactionsFor(userID int64) ([]models.MPortfolioTransaction, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MPortfolioTransaction), args.Error(1)
}

// MockMailer is a mock implementation of IMailer for testing
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, name string, price models.MPricePayload, portfolio *models.MPortfolioSummary) (string, error) {
	args := m.Called(to, name, price, portfolio)
	return args.String(0), args.Error(1)
}

// panicMailer panics on a chosen recipient to exercise batch isolation.
type panicMailer struct {
	panicOn string
}

func (m *panicMailer) Send(to, name string, price models.MPricePayload, portfolio *models.MPortfolioSummary) (string, error) {
	if to == m.panicOn {
		panic("mail template exploded")
	}
	return "msg-ok", nil
}

// -----------------------------------------------------------------------------

func testPayload() models.MPricePayload {
	return models.MPricePayload{
		Date:      "2026-09-01",
		GoldPrice: 193000, SilverPrice: 2400,
		GoldChange: 1200, SilverChange: 30,
	}
}

func newTestDispatcher(subs *MockSubscriberProvider, txs *MockTransactionProvider, mailer interface {
	Send(string, string, models.MPricePayload, *models.MPortfolioSummary) (string, error)
}) *Dispatcher {
	return NewDispatcher(subs, txs, mailer, logger.NewLogger("ERROR", "DispatcherTest"), 0)
}

// -----------------------------------------------------------------------------

func TestDispatchAll_PartialFailureIsolation(t *testing.T) {
	subs := new(MockSubscriberProvider)
	txs := new(MockTransactionProvider)
	mailer := new(MockMailer)

	subs.On("ListSubscribers").Return([]models.MSubscriber{
		{ID: 1, Email: "a@example.com", Name: "A"},
		{ID: 2, Email: "b@example.com", Name: "B"},
		{ID: 3, Email: "c@example.com", Name: "C"},
	}, nil)
	txs.On("TransactionsFor", mock.Anything).Return([]models.MPortfolioTransaction{}, nil)

	mailer.On("Send", "a@example.com", "A", mock.Anything, mock.Anything).Return("id-1", nil)
	mailer.On("Send", "b@example.com", "B", mock.Anything, mock.Anything).Return("", errors.New("smtp 550"))
	mailer.On("Send", "c@example.com", "C", mock.Anything, mock.Anything).Return("id-3", nil)

	result := newTestDispatcher(subs, txs, mailer).DispatchAll(testPayload())

	assert.Equal(t, 3, result.TotalUsers)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailCount)
	assert.Len(t, result.Results, 3)
	assert.False(t, result.Success)
	assert.Equal(t, models.StatusFailed, result.Results[1].Status)
	assert.Contains(t, result.Results[1].Error, "smtp 550")
}

func TestDispatchAll_PanicDoesNotAbortLoop(t *testing.T) {
	subs := new(MockSubscriberProvider)
	txs := new(MockTransactionProvider)

	subs.On("ListSubscribers").Return([]models.MSubscriber{
		{ID: 1, Email: "a@example.com"},
		{ID: 2, Email: "boom@example.com"},
		{ID: 3, Email: "c@example.com"},
	}, nil)
	txs.On("TransactionsFor", mock.Anything).Return([]models.MPortfolioTransaction{}, nil)

	result := newTestDispatcher(subs, txs, &panicMailer{panicOn: "boom@example.com"}).DispatchAll(testPayload())

	assert.Len(t, result.Results, 3)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailCount)
	assert.Equal(t, models.StatusError, result.Results[1].Status)
	assert.Contains(t, result.Results[1].Error, "panic")
}

func TestDispatchAll_PortfolioVsPriceOnly(t *testing.T) {
	subs := new(MockSubscriberProvider)
	txs := new(MockTransactionProvider)
	mailer := new(MockMailer)

	subs.On("ListSubscribers").Return([]models.MSubscriber{
		{ID: 1, Email: "holder@example.com", Name: "Holder"},
		{ID: 2, Email: "watcher@example.com", Name: "Watcher"},
	}, nil)

	txs.On("TransactionsFor", int64(1)).Return([]models.MPortfolioTransaction{
		{Type: models.TxBuy, Metal: models.MetalGold, Unit: models.TxUnitTola, Quantity: 1, Price: 180000},
	}, nil)
	txs.On("TransactionsFor", int64(2)).Return([]models.MPortfolioTransaction{}, nil)

	mailer.On("Send", "holder@example.com", "Holder", mock.Anything,
		mock.MatchedBy(func(p *models.MPortfolioSummary) bool { return p != nil })).Return("id-1", nil)
	mailer.On("Send", "watcher@example.com", "Watcher", mock.Anything,
		mock.MatchedBy(func(p *models.MPortfolioSummary) bool { return p == nil })).Return("id-2", nil)

	result := newTestDispatcher(subs, txs, mailer).DispatchAll(testPayload())

	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.PriceOnlyCount)
	assert.Equal(t, models.StatusSent, result.Results[0].Status)
	assert.Equal(t, models.StatusSentPriceOnly, result.Results[1].Status)
	mailer.AssertExpectations(t)
}

func TestDispatchAll_SkipsEmptyEmail(t *testing.T) {
	subs := new(MockSubscriberProvider)
	txs := new(MockTransactionProvider)
	mailer := new(MockMailer)

	subs.On("ListSubscribers").Return([]models.MSubscriber{
		{ID: 1, Email: ""},
		{ID: 2, Email: "real@example.com"},
	}, nil)
	txs.On("TransactionsFor", int64(2)).Return([]models.MPortfolioTransaction{}, nil)
	mailer.On("Send", "real@example.com", mock.Anything, mock.Anything, mock.Anything).Return("id", nil)

	result := newTestDispatcher(subs, txs, mailer).DispatchAll(testPayload())

	assert.Equal(t, 1, result.TotalUsers)
	assert.Len(t, result.Results, 1)
}

func TestDispatchAll_TransactionLookupFailureDegradesToPriceOnly(t *testing.T) {
	subs := new(MockSubscriberProvider)
	txs := new(MockTransactionProvider)
	mailer := new(MockMailer)

	subs.On("ListSubscribers").Return([]models.MSubscriber{
		{ID: 1, Email: "a@example.com"},
	}, nil)
	txs.On("TransactionsFor", int64(1)).Return(nil, errors.New("db locked"))
	mailer.On("Send", "a@example.com", mock.Anything, mock.Anything,
		mock.MatchedBy(func(p *models.MPortfolioSummary) bool { return p == nil })).Return("id", nil)

	result := newTestDispatcher(subs, txs, mailer).DispatchAll(testPayload())

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.PriceOnlyCount)
	mailer.AssertExpectations(t)
}
