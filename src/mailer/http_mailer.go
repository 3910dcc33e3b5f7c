package mailer

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/sudip490/goldsilver-sub000/src/helpers"
	"github.com/sudip490/goldsilver-sub000/src/interfaces"
	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/models"
)

// -----------------------------------------------------------------------------
// HTTPMailer
//
// Message-send capability backed by a transactional mail API: one POST per
// recipient, API key in the Authorization header. Everything past this call
// (templating, actual SMTP) belongs to the provider.
// -----------------------------------------------------------------------------

type HTTPMailer struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewHTTPMailer(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *HTTPMailer {
	return &HTTPMailer{
		Config:  cfg,
		Network: netMgr,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

type sendRequest struct {
	From      string                    `json:"from"`
	To        string                    `json:"to"`
	Name      string                    `json:"name"`
	Subject   string                    `json:"subject"`
	Price     models.MPricePayload      `json:"price"`
	Portfolio *models.MPortfolioSummary `json:"portfolio,omitempty"`
}

type sendResponse struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// -----------------------------------------------------------------------------

// Send delivers one message and returns the provider's message id.
func (m *HTTPMailer) Send(to, name string, price models.MPricePayload, portfolio *models.MPortfolioSummary) (string, error) {
	req := sendRequest{
		From:      m.Config.Notify.MailFrom,
		To:        to,
		Name:      name,
		Subject:   fmt.Sprintf("Gold/Silver rates for %s", price.Date),
		Price:     price,
		Portfolio: portfolio,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + m.Config.Notify.MailAPIKey,
	}

	respBytes, err := m.Network.PostJSON(m.Config.Notify.MailEndpoint, headers, req)
	if err != nil {
		return "", err
	}

	var resp sendResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return "", helpers.NewDispatchError("unexpected mail provider response", err)
	}
	if resp.Error != "" {
		return "", helpers.NewDispatchError("mail provider rejected message: "+resp.Error, nil)
	}

	// Some providers omit the id on success; keep outcomes traceable anyway.
	if resp.ID == "" {
		resp.ID = uuid.New().String()
	}
	return resp.ID, nil
}
