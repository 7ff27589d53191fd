package capture

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Metadata describes the browser environment a screenshot was taken in.
type Metadata struct {
	URL              string    `json:"url"`
	Title            string    `json:"title"`
	UserAgent        string    `json:"userAgent"`
	Language         string    `json:"language"`
	Platform         string    `json:"platform"`
	ViewportWidth    int       `json:"viewportWidth"`
	ViewportHeight   int       `json:"viewportHeight"`
	ScreenWidth      int       `json:"screenWidth"`
	ScreenHeight     int       `json:"screenHeight"`
	DevicePixelRatio float64   `json:"devicePixelRatio"`
	Referrer         string    `json:"referrer"`
	Timezone         string    `json:"timezone"`
	CapturedAt       time.Time `json:"capturedAt"`
}

// Pair is one labelled metadata value.
type Pair struct {
	Label string
	Value string
}

// metadataScript is evaluated in the page; its keys match the Metadata JSON tags.
const metadataScript = `() => ({
	url: location.href,
	title: document.title,
	userAgent: navigator.userAgent,
	language: navigator.language,
	platform: navigator.platform,
	viewportWidth: window.innerWidth,
	viewportHeight: window.innerHeight,
	screenWidth: screen.width,
	screenHeight: screen.height,
	devicePixelRatio: window.devicePixelRatio,
	referrer: document.referrer,
	timezone: Intl.DateTimeFormat().resolvedOptions().timeZone
})`

// ParseMetadata decodes the JSON produced by the metadata script.
func ParseMetadata(data []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return m, nil
}

// Pairs returns the non-empty metadata values in display order.
func (m Metadata) Pairs() []Pair {
	var pairs []Pair
	add := func(label, value string) {
		if value != "" {
			pairs = append(pairs, Pair{Label: label, Value: value})
		}
	}
	size := func(w, h int) string {
		if w <= 0 || h <= 0 {
			return ""
		}
		return fmt.Sprintf("%dx%d", w, h)
	}

	add("URL", m.URL)
	add("Page title", m.Title)
	add("User agent", m.UserAgent)
	add("Language", m.Language)
	add("Platform", m.Platform)
	add("Viewport", size(m.ViewportWidth, m.ViewportHeight))
	add("Screen", size(m.ScreenWidth, m.ScreenHeight))
	if m.DevicePixelRatio > 0 {
		add("Device pixel ratio", strconv.FormatFloat(m.DevicePixelRatio, 'g', -1, 64))
	}
	add("Referrer", m.Referrer)
	add("Timezone", m.Timezone)
	if !m.CapturedAt.IsZero() {
		add("Captured at", m.CapturedAt.UTC().Format(time.RFC3339))
	}
	return pairs
}
