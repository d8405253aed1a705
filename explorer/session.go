package explorer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xrpscan/ledgerlens/models"
	"github.com/xrpscan/ledgerlens/processor"
)

var (
	// ErrLoadInFlight is returned by LoadMore while a previous call is still running.
	ErrLoadInFlight = errors.New("a page load is already in progress")
	// ErrNoMorePages is returned by LoadMore once the history is exhausted.
	ErrNoMorePages = errors.New("no more pages")
)

// Session accumulates the history of one account page by page. Switching
// to another account means starting a new session.
type Session struct {
	ID      string
	Address string

	explorer *Explorer
	loading  atomic.Bool

	mu       sync.Mutex
	txs      []models.ProcessedTransaction
	seen     map[string]struct{}
	marker   any
	lastUsed time.Time
}

// NewSession starts a session from the first page of view.
func (e *Explorer) NewSession(view *AccountView) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Address:  view.Info.Address,
		explorer: e,
		seen:     make(map[string]struct{}, len(view.Transactions)),
		marker:   view.Marker,
		lastUsed: time.Now(),
	}
	s.append(view.Transactions)
	return s
}

// append adds txs not seen before and returns them. Must hold mu.
func (s *Session) append(txs []models.ProcessedTransaction) []models.ProcessedTransaction {
	added := make([]models.ProcessedTransaction, 0, len(txs))
	for _, tx := range txs {
		if _, dup := s.seen[tx.ID]; dup {
			continue
		}
		s.seen[tx.ID] = struct{}{}
		s.txs = append(s.txs, tx)
		added = append(added, tx)
	}
	return added
}

// LoadMore fetches the next page and returns the transactions it added.
// Only one call runs at a time; the others get ErrLoadInFlight. A failed
// load leaves the session unchanged so it can be retried.
func (s *Session) LoadMore(ctx context.Context) ([]models.ProcessedTransaction, error) {
	if !s.loading.CompareAndSwap(false, true) {
		return nil, ErrLoadInFlight
	}
	defer s.loading.Store(false)

	s.mu.Lock()
	marker := s.marker
	s.lastUsed = time.Now()
	s.mu.Unlock()

	if marker == nil {
		return nil, ErrNoMorePages
	}

	page, err := s.explorer.FetchPage(ctx, s.Address, marker)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = page.Marker
	return s.append(page.Transactions), nil
}

// Transactions returns a copy of everything loaded so far, newest first.
func (s *Session) Transactions() []models.ProcessedTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ProcessedTransaction(nil), s.txs...)
}

func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marker != nil
}

// Marker is the position of the next page, nil once the history is exhausted.
func (s *Session) Marker() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marker
}

// View returns base with the history replaced by everything the session has
// loaded and the marker moved to the session's current position.
func (s *Session) View(base AccountView) AccountView {
	s.mu.Lock()
	defer s.mu.Unlock()
	base.Transactions = append([]models.ProcessedTransaction(nil), s.txs...)
	base.Marker = s.marker
	base.Summary = processor.Summarize(base.Transactions)
	return base
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// SessionStore keeps sessions for the HTTP surface. Sessions idle for
// longer than the ttl are dropped when new ones are added.
type SessionStore struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{ttl: ttl, sessions: make(map[string]*Session)}
}

func (st *SessionStore) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()

	cutoff := time.Now().Add(-st.ttl)
	for id, old := range st.sessions {
		if old.idleSince().Before(cutoff) {
			delete(st.sessions, id)
		}
	}
	st.sessions[s.ID] = s
}

func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
