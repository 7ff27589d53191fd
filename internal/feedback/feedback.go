// Package feedback defines the report bundle sent to an issue tracker: a title and
// description, the annotated screenshot, and the environment it was captured in.
package feedback

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/feedback-tools-mcp/internal/capture"
)

// ErrTitleRequired is returned by Validate when the title is blank.
var ErrTitleRequired = errors.New("feedback: title is required")

// Feedback is one user report.
type Feedback struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Labels        []string         `json:"labels,omitempty"`
	Screenshot    []byte           `json:"-"`
	ScreenshotURL string           `json:"screenshot_url,omitempty"`
	Metadata      capture.Metadata `json:"metadata"`
	CreatedAt     time.Time        `json:"created_at"`
}

// New creates a report with a fresh id.
func New(title, description string) *Feedback {
	return &Feedback{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}
}

// Validate checks that the report can be submitted.
func (f *Feedback) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// HasScreenshot reports whether an annotated image is attached.
func (f *Feedback) HasScreenshot() bool {
	return len(f.Screenshot) > 0
}

// Body renders the markdown issue body. The screenshot is linked only once it has been
// uploaded and ScreenshotURL is set.
func (f *Feedback) Body() string {
	var b strings.Builder

	if f.Description != "" {
		b.WriteString(f.Description)
		b.WriteString("\n\n")
	}

	if f.ScreenshotURL != "" {
		fmt.Fprintf(&b, "![Screenshot](%s)\n\n", f.ScreenshotURL)
	}

	if pairs := f.Metadata.Pairs(); len(pairs) > 0 {
		b.WriteString("### Environment\n\n")
		b.WriteString("| | |\n|---|---|\n")
		for _, p := range pairs {
			fmt.Fprintf(&b, "| %s | %s |\n", p.Label, escapeCell(p.Value))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n_Feedback %s_\n", f.ID)
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
