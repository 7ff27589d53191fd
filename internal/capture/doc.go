// Package capture acquires the page screenshot and environment metadata attached to a
// feedback report.
//
// RodCapturer drives a Chromium instance over the DevTools protocol: it either launches
// a local browser or attaches to an existing one through Options.ControlURL, sizes the
// viewport, loads the page, evaluates a small script that reports the browser
// environment, and takes a PNG screenshot.
package capture
