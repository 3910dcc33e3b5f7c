package models

// MLatestData is the state pushed to websocket clients and cached by the
// server. Type is "INITIAL" on connect and "UPDATE" on each completed cycle.
type MLatestData struct {
	Type      string           `json:"type"`
	Snapshot  *MMarketSnapshot `json:"snapshot"`
	Timestamp int64            `json:"timestamp"`
}
