package spot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudip490/goldsilver-sub000/src/helpers"
	"github.com/sudip490/goldsilver-sub000/src/models"
)

type stubNetwork struct {
	body []byte
	err  error
}

func (s *stubNetwork) Get(url string, params map[string]string) ([]byte, error) {
	return s.body, s.err
}

func (s *stubNetwork) PostJSON(url string, headers map[string]string, body interface{}) ([]byte, error) {
	return nil, errors.New("not used")
}

func newTestSource(net *stubNetwork) *SpotSource {
	cfg := &models.MConfig{LogLevel: "ERROR"}
	cfg.Sources.SpotURL = "https://data-asg.goldprice.org/dbXRates/USD"
	return NewSpotSource(cfg, net)
}

// -----------------------------------------------------------------------------

func TestSpotSource_ParsesDbXRatesShape(t *testing.T) {
	body := `{
		"ts": 1756684800000,
		"items": [{
			"curr": "USD",
			"xauPrice": 2512.35,
			"xagPrice": 29.41,
			"chgXau": 12.5,
			"chgXag": -0.3,
			"pcXau": 0.5,
			"pcXag": -1.01
		}]
	}`

	quote, err := newTestSource(&stubNetwork{body: []byte(body)}).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2512.35, quote.GoldUSD)
	assert.Equal(t, 29.41, quote.SilverUSD)
	assert.Equal(t, 12.5, quote.GoldChange)
	assert.Equal(t, -0.3, quote.SilverChange)
	assert.Equal(t, 0.5, quote.GoldChangePercent)
	assert.Equal(t, -1.01, quote.SilverChangePercent)
	assert.Equal(t, int64(1756684800000), quote.Timestamp)
}

func TestSpotSource_NetworkFailureIsPrimarySourceError(t *testing.T) {
	_, err := newTestSource(&stubNetwork{err: errors.New("timeout")}).Fetch(context.Background())
	require.Error(t, err)

	var srcErr *helpers.PrimarySourceError
	assert.True(t, errors.As(err, &srcErr))
}

func TestSpotSource_EmptyItemsRejected(t *testing.T) {
	_, err := newTestSource(&stubNetwork{body: []byte(`{"ts": 1, "items": []}`)}).Fetch(context.Background())
	assert.Error(t, err)
}

func TestSpotSource_NonPositivePricesRejected(t *testing.T) {
	body := `{"items": [{"xauPrice": 0, "xagPrice": 29.41}]}`
	_, err := newTestSource(&stubNetwork{body: []byte(body)}).Fetch(context.Background())
	assert.Error(t, err)
}

func TestSpotSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSource(&stubNetwork{body: []byte(`{}`)}).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
