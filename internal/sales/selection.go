package sales

import "sync"

// Selection holds the ledger event sales are recorded under and the pricing
// event prices are looked up from. Empty fields mean unset.
type Selection struct {
	LedgerEvent  string `json:"ledger_event"`
	PricingEvent string `json:"pricing_event"`
}

// Clear unsets both events.
func (s *Selection) Clear() {
	s.LedgerEvent = ""
	s.PricingEvent = ""
}

// SelectionStore keeps one Selection per caller session.
type SelectionStore struct {
	mu sync.Mutex
	m  map[string]Selection
}

// NewSelectionStore returns an empty store.
func NewSelectionStore() *SelectionStore {
	return &SelectionStore{m: map[string]Selection{}}
}

// Get returns the selection for a session, the zero Selection if none.
func (s *SelectionStore) Get(session string) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[session]
}

// Update applies fn to the session's selection and stores the result.
func (s *SelectionStore) Update(session string, fn func(*Selection)) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.m[session]
	fn(&sel)
	if sel == (Selection{}) {
		delete(s.m, session)
	} else {
		s.m[session] = sel
	}
	return sel
}
