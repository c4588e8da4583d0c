package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of visitor action a tracking event records.
type EventType string

const (
	EventPageview EventType = "pageview"
	EventClick    EventType = "click"
	EventExit     EventType = "exit"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventPageview, EventClick, EventExit:
		return true
	}
	return false
}

// Click types recognized by the snippet and tallied by the aggregator.
const (
	ClickPhone     = "phone"
	ClickZalo      = "zalo"
	ClickMessenger = "messenger"
)

// TrackingEvent is one observed visitor action. Rows are written once by the
// collector and never mutated or deleted afterwards.
type TrackingEvent struct {
	ID        uuid.UUID       `json:"id"`
	SiteID    uuid.UUID       `json:"site_id"`
	Type      EventType       `json:"event_type"`
	Payload   json.RawMessage `json:"event_data"`
	IPAddress string          `json:"ip_address"`
	UserAgent string          `json:"user_agent"`
	URL       string          `json:"url,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Envelope is the wire structure posted by the snippet: {eventType, data}.
type Envelope struct {
	EventType EventType       `json:"eventType"`
	Data      json.RawMessage `json:"data"`
}

// PageviewPayload is the decoded view of a pageview event's payload. Fields
// are present only when the corresponding tracking option was enabled;
// decoding tolerates anything extra.
type PageviewPayload struct {
	SiteID                 string  `json:"siteId"`
	Timestamp              string  `json:"timestamp"`
	URL                    string  `json:"url"`
	Referrer               string  `json:"referrer"`
	UserAgent              string  `json:"userAgent"`
	Language               string  `json:"language"`
	IP                     string  `json:"ip"`
	CollectNetworkProvider bool    `json:"collectNetworkProvider"`
	Provider               string  `json:"provider"`
	ConnectionType         string  `json:"connectionType"`
	OS                     string  `json:"os"`
	OSVersion              string  `json:"osVersion"`
	ScreenWidth            int     `json:"screenWidth"`
	ScreenHeight           int     `json:"screenHeight"`
	ScreenColorDepth       int     `json:"screenColorDepth"`
	DevicePixelRatio       float64 `json:"devicePixelRatio"`
}

// ClickPayload is the decoded view of a click event's payload.
type ClickPayload struct {
	SiteID    string `json:"siteId"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	URL       string `json:"url"`
	TargetURL string `json:"targetUrl"`
}

// ExitPayload is the decoded view of an exit event's payload.
type ExitPayload struct {
	SiteID     string `json:"siteId"`
	Timestamp  string `json:"timestamp"`
	TimeOnPage int    `json:"timeOnPage"`
	URL        string `json:"url"`
}
