package ui

import (
	"bytes"
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/ironsheep/feedback-tools-mcp/internal/annotate"
	"github.com/ironsheep/feedback-tools-mcp/internal/capture"
	"github.com/ironsheep/feedback-tools-mcp/internal/config"
	"github.com/ironsheep/feedback-tools-mcp/internal/feedback"
	"github.com/ironsheep/feedback-tools-mcp/internal/report"
	"github.com/ironsheep/feedback-tools-mcp/internal/tracker"
)

// FeedbackWindow is the desktop flow: annotate a screenshot, describe it, then file it
// with the configured tracker or save it as a PDF report.
type FeedbackWindow struct {
	win     fyne.Window
	editor  *EditorWidget
	toolbar *Toolbar

	title       *widget.Entry
	description *widget.Entry
	submitBtn   *widget.Button

	metadata capture.Metadata
	artifact *annotate.Artifact

	cfg     *config.Config
	adapter tracker.Adapter
	logger  *zap.Logger
}

// WindowOption configures a FeedbackWindow.
type WindowOption func(*FeedbackWindow)

// WithMetadata attaches the page environment shown in the issue body.
func WithMetadata(m capture.Metadata) WindowOption {
	return func(fw *FeedbackWindow) { fw.metadata = m }
}

// WithTracker sets the adapter used by Submit. Without one only the PDF report is offered.
func WithTracker(a tracker.Adapter) WindowOption {
	return func(fw *FeedbackWindow) { fw.adapter = a }
}

// WithWindowLogger sets the logger for the window and its editor.
func WithWindowLogger(l *zap.Logger) WindowOption {
	return func(fw *FeedbackWindow) { fw.logger = l }
}

// NewFeedbackWindow opens screenshot in a new window of app. A nil cfg uses the defaults.
func NewFeedbackWindow(app fyne.App, screenshot []byte, cfg *config.Config, opts ...WindowOption) (*FeedbackWindow, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	fw := &FeedbackWindow{cfg: cfg}
	for _, opt := range opts {
		opt(fw)
	}
	if fw.logger == nil {
		fw.logger = zap.NewNop()
	}

	edOpts := append(cfg.EditorOptions(),
		annotate.WithLogger(fw.logger),
		annotate.WithOnSave(func(a annotate.Artifact) { fw.artifact = &a }),
		annotate.WithOnCancel(func() { fw.artifact = nil }),
	)
	ed := annotate.New(edOpts...)
	if err := ed.Load(bytes.NewReader(screenshot)); err != nil {
		return nil, err
	}

	fw.win = app.NewWindow("Send feedback")
	fw.editor = NewEditorWidget(ed)
	fw.toolbar = NewToolbar(fw.editor)

	fw.title = widget.NewEntry()
	fw.title.SetPlaceHolder("What went wrong?")
	fw.description = widget.NewMultiLineEntry()
	fw.description.SetPlaceHolder("Steps, expected and actual behaviour")
	fw.description.SetMinRowsVisible(4)

	form := widget.NewForm(
		widget.NewFormItem("Title", fw.title),
		widget.NewFormItem("Description", fw.description),
	)

	fw.submitBtn = widget.NewButtonWithIcon("Save & Submit", theme.MailSendIcon(), fw.submit)
	fw.submitBtn.Importance = widget.HighImportance
	if fw.adapter == nil {
		fw.submitBtn.Disable()
	}
	reportBtn := widget.NewButtonWithIcon("Save report", theme.DocumentSaveIcon(), fw.saveReport)
	cancelBtn := widget.NewButtonWithIcon("Cancel", theme.CancelIcon(), fw.cancel)

	buttons := container.NewHBox(cancelBtn, reportBtn, fw.submitBtn)
	bottom := container.NewVBox(form, container.NewBorder(nil, nil, nil, buttons))

	fw.win.SetContent(container.NewBorder(fw.toolbar.Object(), bottom, nil, nil, fw.editor))
	b := ed.Bounds()
	fw.win.Resize(fyne.NewSize(float32(min(b.Dx(), 1280)), float32(min(b.Dy(), 800))+200))
	return fw, nil
}

// Window returns the underlying fyne window.
func (fw *FeedbackWindow) Window() fyne.Window { return fw.win }

// Show displays the window.
func (fw *FeedbackWindow) Show() { fw.win.Show() }

// buildFeedback saves the canvas and assembles the report from the form.
func (fw *FeedbackWindow) buildFeedback() (*feedback.Feedback, error) {
	fb := feedback.New(fw.title.Text, fw.description.Text)
	if err := fb.Validate(); err != nil {
		return nil, err
	}
	fb.Labels = fw.cfg.Tracker.Labels
	fb.Metadata = fw.metadata

	if _, err := fw.editor.Editor().Save(); err != nil {
		return nil, err
	}
	fb.Screenshot = fw.artifact.PNG
	return fb, nil
}

func (fw *FeedbackWindow) submit() {
	fb, err := fw.buildFeedback()
	if err != nil {
		dialog.ShowError(err, fw.win)
		return
	}

	fw.submitBtn.Disable()
	adapter := fw.adapter
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fw.cfg.GetTrackerTimeout())
		defer cancel()

		resp, err := tracker.Submit(ctx, adapter, fb,
			tracker.WithLogger(fw.logger),
			tracker.WithMaxSize(fw.cfg.Upload.MaxWidth, fw.cfg.Upload.MaxHeight))

		fyne.Do(func() {
			fw.submitBtn.Enable()
			if err != nil {
				fw.logger.Warn("feedback submit failed", zap.Error(err))
				dialog.ShowError(err, fw.win)
				return
			}
			dialog.ShowInformation("Feedback sent",
				fmt.Sprintf("Created %s issue:\n%s", resp.Tracker, resp.URL), fw.win)
		})
	}()
}

func (fw *FeedbackWindow) saveReport() {
	fb, err := fw.buildFeedback()
	if err != nil {
		dialog.ShowError(err, fw.win)
		return
	}

	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, fw.win)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if err := report.Write(writer, fb); err != nil {
			fw.logger.Warn("report write failed", zap.Error(err))
			dialog.ShowError(err, fw.win)
			return
		}
		fw.logger.Info("report saved", zap.String("uri", writer.URI().String()))
	}, fw.win)
	save.SetFileName("feedback-" + fb.ID[:8] + ".pdf")
	save.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	save.Show()
}

func (fw *FeedbackWindow) cancel() {
	fw.editor.Editor().Cancel()
	fw.win.Close()
}
