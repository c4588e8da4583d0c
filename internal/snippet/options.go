// Package snippet holds the server-side half of the tracking snippet: the
// option set that gates what the browser collects, the click-target
// classifier, and the embed-code generator shown in the dashboard.
package snippet

import (
	"encoding/json"
	"net/url"
)

// The eight named tracking options, in canonical order. Each independently
// turns on collection of one attribute group or one click-type listener.
const (
	OptVisitorMetrics   = "visitor_metrics"
	OptNetworkProvider  = "network_provider"
	OptConnectionType   = "connection_type"
	OptOSVersion        = "os_version"
	OptScreenDimensions = "screen_dimensions"
	OptPhoneClicks      = "phone_clicks"
	OptZaloClicks       = "zalo_clicks"
	OptMessengerClicks  = "messenger_clicks"
)

// DefaultOptions returns all eight options in canonical order.
func DefaultOptions() []string {
	return []string{
		OptVisitorMetrics,
		OptNetworkProvider,
		OptConnectionType,
		OptOSVersion,
		OptScreenDimensions,
		OptPhoneClicks,
		OptZaloClicks,
		OptMessengerClicks,
	}
}

// Options is an enabled set of tracking options.
type Options map[string]bool

// NewOptions builds an Options set from a list of option names. Names that
// are not part of the known set are ignored.
func NewOptions(names []string) Options {
	known := make(map[string]bool, 8)
	for _, n := range DefaultOptions() {
		known[n] = true
	}
	opts := make(Options, len(names))
	for _, n := range names {
		if known[n] {
			opts[n] = true
		}
	}
	return opts
}

// Enabled reports whether the named option is on.
func (o Options) Enabled(name string) bool {
	return o[name]
}

// List returns the enabled options in canonical order.
func (o Options) List() []string {
	out := make([]string, 0, len(o))
	for _, n := range DefaultOptions() {
		if o[n] {
			out = append(out, n)
		}
	}
	return out
}

// ParseOptionsParam decodes the snippet URL's options query value: a
// URL-encoded JSON array of option names. An empty or undecodable value
// yields the default set, matching the browser snippet's behavior.
func ParseOptionsParam(param string) Options {
	if param == "" {
		return NewOptions(DefaultOptions())
	}
	decoded, err := url.QueryUnescape(param)
	if err != nil {
		return NewOptions(DefaultOptions())
	}
	var names []string
	if err := json.Unmarshal([]byte(decoded), &names); err != nil {
		return NewOptions(DefaultOptions())
	}
	return NewOptions(names)
}
