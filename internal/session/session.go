// Package session keeps per-user editing sessions in memory.
//
// A session walks idle -> extracting -> ready|failed. Every upload bumps the
// session's generation and cancels the task that came before it; a finished
// task only applies its result if its generation is still the current one,
// so a slow, superseded extraction can never overwrite a newer buffer.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/models"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/buffer"
)

// State is where a session is in its lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateExtracting State = "extracting"
	StateReady      State = "ready"
	StateFailed     State = "failed"
)

// Failure reasons that do not come from the document layer.
const (
	ReasonQueueFull   = "queue-full"
	ReasonTimeout     = "timeout"
	ReasonCancelled   = "cancelled"
	ReasonUnavailable = "unavailable"
)

// Session is one user's in-progress resume edit.
// All fields are guarded by mu; handlers go through Manager methods.
type Session struct {
	ID     string
	UserID string

	mu         sync.Mutex
	saveMu     sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
	buf        *buffer.Buffer

	fileName  string
	fileData  []byte
	pagesDone int
	pageCount int
	reason    string

	resumeID string
	fileURL  *string

	createdAt  time.Time
	updatedAt  time.Time
	lastAccess time.Time
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generation returns the number of uploads the session has seen.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// File returns the name and bytes of the most recent upload.
func (s *Session) File() (string, []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileName, s.fileData
}

// Saved returns the resume this session was saved to and the stored file
// URL for the current upload, if any.
func (s *Session) Saved() (resumeID string, fileURL *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumeID, s.fileURL
}

// LockSave serializes saves of this session. Hold the returned unlock from
// reading Saved until MarkSaved so two saves cannot both create a resume.
func (s *Session) LockSave() (unlock func()) {
	s.saveMu.Lock()
	return s.saveMu.Unlock
}

// MarkSaved records the resume the session was saved to. A non-nil fileURL
// means the current upload is stored and need not be stored again.
func (s *Session) MarkSaved(resumeID string, fileURL *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumeID = resumeID
	if fileURL != nil {
		s.fileURL = fileURL
	}
}

// Response builds the API view. Content is included only when asked for
// and a buffer exists.
func (s *Session) Response(withContent bool) models.SessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := models.SessionResponse{
		ID:         s.ID,
		State:      string(s.state),
		Generation: s.generation,
		FileName:   s.fileName,
		PagesDone:  s.pagesDone,
		PageCount:  s.pageCount,
		Reason:     s.reason,
		ResumeID:   s.resumeID,
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.updatedAt,
	}
	if s.buf != nil {
		resp.Dirty = s.buf.IsDirty()
		if withContent {
			content := s.buf.Current()
			resp.Content = &content
		}
	}
	return resp
}

// begin starts a new generation for an upload. Caller must not hold mu.
func (s *Session) begin(now time.Time, fileName string, data []byte) (uint64, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())

	s.generation++
	s.cancel = cancel
	s.buf = nil
	s.state = StateExtracting
	s.reason = ""
	s.fileName = fileName
	s.fileData = data
	s.fileURL = nil
	s.pagesDone = 0
	s.pageCount = 0
	s.updatedAt = now
	s.lastAccess = now
	return s.generation, ctx
}

// progress records page progress if gen is still current.
func (s *Session) progress(gen uint64, done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	s.pagesDone = done
	s.pageCount = total
}

// complete applies a finished extraction. It reports false when the result
// belonged to a superseded generation and was dropped.
func (s *Session) complete(now time.Time, gen uint64, text string, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if reason != "" {
		s.state = StateFailed
		s.reason = reason
		s.buf = nil
	} else {
		s.state = StateReady
		s.reason = ""
		s.buf = buffer.New(text)
	}
	s.updatedAt = now
	return true
}

// close cancels any in-flight task and invalidates its generation.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.buf = nil
	s.fileData = nil
	s.state = StateIdle
}

// withBuffer runs fn against the buffer, or returns ErrNotReady.
func (s *Session) withBuffer(now time.Time, mutate bool, fn func(b *buffer.Buffer)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady || s.buf == nil {
		return ErrNotReady
	}
	fn(s.buf)
	s.lastAccess = now
	if mutate {
		s.updatedAt = now
	}
	return nil
}
