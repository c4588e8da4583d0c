// Package web holds the static assets the collector serves.
package web

import _ "embed"

// TrackerJS is the browser tracking snippet served at /tracker.js.
//
//go:embed tracker.js
var TrackerJS []byte
