package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/buffer"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/extraction"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/pdf"
	"github.com/Shimizu-Technology/resume-optimizer-api/internal/services/worker"
)

var (
	// ErrNotFound is returned for unknown sessions and sessions owned by
	// someone else.
	ErrNotFound = errors.New("session not found")

	// ErrNotReady is returned by buffer operations outside the ready state.
	ErrNotReady = errors.New("session has no extracted text yet")

	// ErrQueueFull means the extraction could not be scheduled.
	ErrQueueFull = worker.ErrQueueFull
)

// Document is a loaded file that can be walked page by page and released.
type Document interface {
	extraction.Source
	Close()
}

// Opener turns uploaded bytes into a Document.
type Opener func(data []byte) (Document, error)

// Submitter schedules background work. *worker.Pool satisfies it.
type Submitter interface {
	Submit(job worker.Job) error
}

// OpenPDF is the default Opener.
func OpenPDF(data []byte) (Document, error) {
	doc, err := pdf.Load(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Options configure a Manager. Zero values mean: OpenPDF, no extraction
// ceiling, no eviction.
type Options struct {
	Open              Opener
	ExtractionTimeout time.Duration
	TTL               time.Duration
}

// Manager owns every live session.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	pool    Submitter
	open    Opener
	timeout time.Duration
	ttl     time.Duration
	now     func() time.Time
}

// NewManager creates a Manager that runs extractions on pool.
func NewManager(pool Submitter, opts Options) *Manager {
	open := opts.Open
	if open == nil {
		open = OpenPDF
	}
	return &Manager{
		sessions: make(map[string]*Session),
		pool:     pool,
		open:     open,
		timeout:  opts.ExtractionTimeout,
		ttl:      opts.TTL,
		now:      time.Now,
	}
}

// Create starts a new idle session for userID.
func (m *Manager) Create(userID string) *Session {
	now := m.now()
	s := &Session{
		ID:         uuid.New().String(),
		UserID:     userID,
		state:      StateIdle,
		createdAt:  now,
		updatedAt:  now,
		lastAccess: now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session if it exists and belongs to userID.
func (m *Manager) Get(userID, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.UserID != userID {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	s.lastAccess = m.now()
	s.mu.Unlock()
	return s, nil
}

// Delete removes the session and cancels its extraction, if any.
func (m *Manager) Delete(userID, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	s.close()
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Upload replaces the session's document and schedules its extraction.
// Any extraction already in flight is cancelled and its result will be
// ignored. The data slice is retained but never modified.
func (m *Manager) Upload(s *Session, fileName string, data []byte) error {
	gen, ctx := s.begin(m.now(), fileName, data)

	job := worker.Job{
		ID:   fmt.Sprintf("%s#%d", s.ID, gen),
		Type: worker.JobExtraction,
		Run: func(poolCtx context.Context) error {
			if err := poolCtx.Err(); err != nil {
				// Drained at shutdown before it started.
				m.finish(s, gen, "", err)
				return err
			}
			// Either a newer upload or a pool shutdown stops the task.
			stop := context.AfterFunc(poolCtx, func() { s.cancelGeneration(gen) })
			defer stop()
			return m.extract(ctx, s, gen, data)
		},
	}

	if err := m.pool.Submit(job); err != nil {
		reason := ReasonUnavailable
		if errors.Is(err, worker.ErrQueueFull) {
			reason = ReasonQueueFull
		}
		s.complete(m.now(), gen, "", reason)
		return fmt.Errorf("schedule extraction: %w", err)
	}
	return nil
}

// SetContent replaces the edited text.
func (m *Manager) SetContent(s *Session, text string) error {
	return s.withBuffer(m.now(), true, func(b *buffer.Buffer) { b.SetCurrent(text) })
}

// Reset discards edits.
func (m *Manager) Reset(s *Session) error {
	return s.withBuffer(m.now(), true, func(b *buffer.Buffer) { b.Reset() })
}

// Content returns the edited text.
func (m *Manager) Content(s *Session) (string, error) {
	var text string
	err := s.withBuffer(m.now(), false, func(b *buffer.Buffer) { text = b.Current() })
	return text, err
}

// Export returns the edited text as UTF-8 bytes. It never changes the
// session.
func (m *Manager) Export(s *Session) ([]byte, error) {
	var out []byte
	err := s.withBuffer(m.now(), false, func(b *buffer.Buffer) { out = b.ExportBytes() })
	return out, err
}

// StartCleanup evicts sessions not touched for the TTL, checking every
// interval until ctx is done. It is a no-op when no TTL is configured.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.evictExpired(); n > 0 {
					log.Printf("🧹 Evicted %d idle sessions", n)
				}
			}
		}
	}()
}

// evictExpired removes and closes expired sessions, returning how many.
func (m *Manager) evictExpired() int {
	cutoff := m.now().Add(-m.ttl)

	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		s.mu.Lock()
		stale := s.lastAccess.Before(cutoff)
		s.mu.Unlock()
		if stale {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	return len(expired)
}

// extract runs on a worker goroutine.
func (m *Manager) extract(ctx context.Context, s *Session, gen uint64, data []byte) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	doc, err := m.open(data)
	if err != nil {
		m.finish(s, gen, "", err)
		return err
	}
	defer doc.Close()

	s.progress(gen, 0, doc.PageCount())

	text, err := extraction.Extract(ctx, doc, func(done, total int) {
		s.progress(gen, done, total)
	})
	m.finish(s, gen, text, err)
	return err
}

func (m *Manager) finish(s *Session, gen uint64, text string, err error) {
	reason := ""
	if err != nil {
		reason = failureReason(err)
	}
	if !s.complete(m.now(), gen, text, reason) {
		log.Printf("⚠️  Session %s: dropped result of superseded upload #%d", s.ID, gen)
	}
}

// cancelGeneration cancels the task for gen if it is still current.
func (s *Session) cancelGeneration(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen && s.cancel != nil {
		s.cancel()
	}
}

func failureReason(err error) string {
	if r := pdf.Reason(err); r != "" {
		return r
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCancelled
	default:
		return pdf.ReasonCorrupt
	}
}
