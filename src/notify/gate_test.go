package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"
	"github.com/sudip490/goldsilver-sub000/src/utils"
)

// MockHistoryStore is a mock implementation of IHistoryStore for testing
type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) Initialize() error { return m.Called().Error(0) }

func (m *MockHistoryStore) HasDay(date string) (bool, error) {
	args := m.Called(date)
	return args.Bool(0), args.Error(1)
}

func (m *MockHistoryStore) GetDay(date string) ([]models.MDailyRateRecord, error) {
	args := m.Called(date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MDailyRateRecord), args.Error(1)
}

func (m *MockHistoryStore) SaveDay(quotes []models.MQuote) error {
	return m.Called(quotes).Error(0)
}

func (m *MockHistoryStore) ReplaceDay(date string, quotes []models.MQuote) error {
	return m.Called(date, quotes).Error(0)
}

func (m *MockHistoryStore) GetLastBefore(metric, unit, date string) (*models.MDailyRateRecord, error) {
	args := m.Called(metric, unit, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MDailyRateRecord), args.Error(1)
}

func (m *MockHistoryStore) LastNotificationFor(date string) (*models.MNotificationLogEntry, error) {
	args := m.Called(date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MNotificationLogEntry), args.Error(1)
}

func (m *MockHistoryStore) SaveNotification(entry *models.MNotificationLogEntry) error {
	return m.Called(entry).Error(0)
}

func (m *MockHistoryStore) LoadSnapshot() (*models.MPriceSnapshot, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MPriceSnapshot), args.Error(1)
}

func (m *MockHistoryStore) SaveSnapshot(snap *models.MPriceSnapshot) error {
	return m.Called(snap).Error(0)
}

func (m *MockHistoryStore) Close() error { return m.Called().Error(0) }

// MockDispatcher is a mock implementation of IDispatcher for testing
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) DispatchAll(payload models.MPricePayload) *models.MDispatchResult {
	args := m.Called(payload)
	return args.Get(0).(*models.MDispatchResult)
}

// -----------------------------------------------------------------------------

const testDate = "2026-09-01"

func goldQuote(price float64) models.MQuote {
	return models.MQuote{Metric: utils.MetricGold, Unit: utils.UnitTola, Price: price, Date: testDate}
}

func silverQuote(price float64) models.MQuote {
	return models.MQuote{Metric: utils.MetricSilver, Unit: utils.UnitTola, Price: price, Date: testDate}
}

func newTestGate(store *MockHistoryStore, dispatcher *MockDispatcher) *Gate {
	return NewGate(store, dispatcher, logger.NewLogger("ERROR", "GateTest"), 0.01, "")
}

// -----------------------------------------------------------------------------

func TestGate_FirstSendForDate(t *testing.T) {
	store := new(MockHistoryStore)
	dispatcher := new(MockDispatcher)

	store.On("LastNotificationFor", testDate).Return(nil, nil)
	store.On("GetLastBefore", utils.MetricGold, utils.UnitTola, testDate).
		Return(&models.MDailyRateRecord{Price: 190000}, nil)
	store.On("GetLastBefore", utils.MetricSilver, utils.UnitTola, testDate).
		Return(&models.MDailyRateRecord{Price: 2300}, nil)
	store.On("SaveNotification", mock.Anything).Return(nil)
	store.On("SaveSnapshot", mock.Anything).Return(nil)

	dispatcher.On("DispatchAll", mock.Anything).Return(&models.MDispatchResult{
		Success: true, TotalUsers: 5, SuccessCount: 5,
	})

	result, err := newTestGate(store, dispatcher).Evaluate(goldQuote(193000), silverQuote(2400))

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, 5, result.SuccessCount)

	payload := dispatcher.Calls[0].Arguments.Get(0).(models.MPricePayload)
	assert.InDelta(t, 3000, payload.GoldChange, 0.001)
	assert.InDelta(t, 3000.0/190000.0*100, payload.GoldChangePercent, 0.001)
	assert.InDelta(t, 100, payload.SilverChange, 0.001)

	store.AssertCalled(t, "SaveNotification", mock.MatchedBy(func(e *models.MNotificationLogEntry) bool {
		return e.Date == testDate && e.GoldPrice == 193000 && e.UsersNotified == 5
	}))
	store.AssertCalled(t, "SaveSnapshot", mock.MatchedBy(func(s *models.MPriceSnapshot) bool {
		return s.Gold == 193000 && s.Silver == 2400 && s.LastUpdate == testDate
	}))
}

func TestGate_IdenticalPricesNoResend(t *testing.T) {
	store := new(MockHistoryStore)
	dispatcher := new(MockDispatcher)

	store.On("LastNotificationFor", testDate).Return(&models.MNotificationLogEntry{
		Date: testDate, GoldPrice: 193000, SilverPrice: 2400,
	}, nil)

	result, err := newTestGate(store, dispatcher).Evaluate(goldQuote(193000), silverQuote(2400))

	assert.NoError(t, err)
	assert.Nil(t, result)
	dispatcher.AssertNotCalled(t, "DispatchAll", mock.Anything)
	store.AssertNotCalled(t, "SaveNotification", mock.Anything)
}

func TestGate_SubDeltaDifferenceIsNotACorrection(t *testing.T) {
	store := new(MockHistoryStore)
	dispatcher := new(MockDispatcher)

	store.On("LastNotificationFor", testDate).Return(&models.MNotificationLogEntry{
		Date: testDate, GoldPrice: 193000, SilverPrice: 2400,
	}, nil)

	// A 0.001 wobble is float noise, not an upstream correction.
	result, err := newTestGate(store, dispatcher).Evaluate(goldQuote(193000.001), silverQuote(2400))

	assert.NoError(t, err)
	assert.Nil(t, result)
	dispatcher.AssertNotCalled(t, "DispatchAll", mock.Anything)
}

func TestGate_CorrectionTriggersResend(t *testing.T) {
	store := new(MockHistoryStore)
	dispatcher := new(MockDispatcher)

	store.On("LastNotificationFor", testDate).Return(&models.MNotificationLogEntry{
		Date: testDate, GoldPrice: 100, SilverPrice: 2400,
	}, nil)
	store.On("GetLastBefore", mock.Anything, mock.Anything, testDate).Return(nil, nil)
	store.On("LoadSnapshot").Return(nil, nil)
	store.On("SaveNotification", mock.Anything).Return(nil)
	store.On("SaveSnapshot", mock.Anything).Return(nil)

	dispatcher.On("DispatchAll", mock.Anything).Return(&models.MDispatchResult{Success: true, SuccessCount: 3})

	result, err := newTestGate(store, dispatcher).Evaluate(goldQuote(105), silverQuote(2400))

	assert.NoError(t, err)
	assert.NotNil(t, result)
	dispatcher.AssertNumberOfCalls(t, "DispatchAll", 1)
	store.AssertCalled(t, "SaveNotification", mock.MatchedBy(func(e *models.MNotificationLogEntry) bool {
		return e.GoldPrice == 105
	}))
}

func TestGate_IncompleteDataNoOps(t *testing.T) {
	store := new(MockHistoryStore)
	dispatcher := new(MockDispatcher)
	gate := newTestGate(store, dispatcher)

	cases := []struct {
		name         string
		gold, silver models.MQuote
	}{
		{"missing date", models.MQuote{Metric: utils.MetricGold, Unit: utils.UnitTola, Price: 193000}, silverQuote(2400)},
		{"zero gold", goldQuote(0), silverQuote(2400)},
		{"negative silver", goldQuote(193000), silverQuote(-1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := gate.Evaluate(tc.gold, tc.silver)
			assert.NoError(t, err)
			assert.Nil(t, result)
		})
	}

	store.AssertNotCalled(t, "LastNotificationFor", mock.Anything)
	dispatcher.AssertNotCalled(t, "DispatchAll", mock.Anything)
}

func TestGate_ZeroPreviousPriceSuppressesPercent(t *testing.T) {
	store := new(MockHistoryStore)
	dispatcher := new(MockDispatcher)

	// No history, no snapshot: the previous baseline resolves to zero.
	store.On("LastNotificationFor", testDate).Return(nil, nil)
	store.On("GetLastBefore", mock.Anything, mock.Anything, testDate).Return(nil, nil)
	store.On("LoadSnapshot").Return(nil, nil)
	store.On("SaveNotification", mock.Anything).Return(nil)
	store.On("SaveSnapshot", mock.Anything).Return(nil)

	dispatcher.On("DispatchAll", mock.Anything).Return(&models.MDispatchResult{Success: true})

	_, err := newTestGate(store, dispatcher).Evaluate(goldQuote(193000), silverQuote(2400))
	assert.NoError(t, err)

	payload := dispatcher.Calls[0].Arguments.Get(0).(models.MPricePayload)
	assert.Equal(t, 0.0, payload.GoldChangePercent)
	assert.Equal(t, 0.0, payload.SilverChangePercent)
	assert.Equal(t, 0.0, payload.GoldChange)
	assert.False(t, payload.GoldChangePercent != payload.GoldChangePercent, "percent must not be NaN")
}

func TestGate_SnapshotFallbackWhenHistoryEmpty(t *testing.T) {
	store := new(MockHistoryStore)
	dispatcher := new(MockDispatcher)

	store.On("LastNotificationFor", testDate).Return(nil, nil)
	store.On("GetLastBefore", mock.Anything, mock.Anything, testDate).Return(nil, nil)
	store.On("LoadSnapshot").Return(&models.MPriceSnapshot{Gold: 190000, Silver: 2300, LastUpdate: "2026-08-31"}, nil)
	store.On("SaveNotification", mock.Anything).Return(nil)
	store.On("SaveSnapshot", mock.Anything).Return(nil)

	dispatcher.On("DispatchAll", mock.Anything).Return(&models.MDispatchResult{Success: true})

	_, err := newTestGate(store, dispatcher).Evaluate(goldQuote(193000), silverQuote(2400))
	assert.NoError(t, err)

	payload := dispatcher.Calls[0].Arguments.Get(0).(models.MPricePayload)
	assert.InDelta(t, 3000, payload.GoldChange, 0.001)
	assert.InDelta(t, 100, payload.SilverChange, 0.001)
}
