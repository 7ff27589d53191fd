package server

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/feedback-tools-mcp/internal/annotate"
	"github.com/ironsheep/feedback-tools-mcp/internal/capture"
)

// session is one annotation editor plus the environment of the image it holds.
// Every access to the editor goes through mu.
type session struct {
	mu        sync.Mutex
	id        string
	editor    *annotate.Editor
	metadata  capture.Metadata
	artifact  *annotate.Artifact
	createdAt time.Time
}

type sessionStatus struct {
	Session string `json:"session"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Tool    string `json:"tool"`
	Color   string `json:"color"`
	State   string `json:"state"`
	Saved   bool   `json:"saved"`
}

// status must be called with mu held.
func (sess *session) status() sessionStatus {
	b := sess.editor.Bounds()
	return sessionStatus{
		Session: sess.id,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Tool:    sess.editor.Tool().String(),
		Color:   sess.editor.Color().String(),
		State:   sess.editor.State().String(),
		Saved:   sess.artifact != nil,
	}
}

// openSession decodes r into a new editor session.
func (s *Server) openSession(r io.Reader, meta capture.Metadata) (*session, error) {
	sess := &session{
		id:        uuid.New().String(),
		metadata:  meta,
		createdAt: time.Now().UTC(),
	}
	logger := s.logger.With(zap.String("session", sess.id))

	opts := append(s.cfg.EditorOptions(),
		annotate.WithLogger(logger),
		annotate.WithOnSave(func(a annotate.Artifact) { sess.artifact = &a }),
		annotate.WithOnCancel(func() {
			sess.artifact = nil
			s.sessions.Delete(sess.id)
		}),
	)
	sess.editor = annotate.New(opts...)
	if err := sess.editor.Load(r); err != nil {
		return nil, err
	}

	s.sessions.Put(sess.id, sess)
	b := sess.editor.Bounds()
	logger.Info("session opened", zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
	return sess, nil
}

// session looks up an open session.
func (s *Server) session(id string) (*session, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: session is required", errInvalidArgs)
	}
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", id)
	}
	return sess, nil
}
