package selection

import (
	"log/slog"
	"sync"
	"time"

	clone "github.com/huandu/go-clone/generic"
)

// subscriberBuffer is how many unread updates a subscriber may fall behind by
// before it is dropped.
const subscriberBuffer = 8

// Published is the champion currently offered to the user and its skins.
type Published struct {
	Champion  string    `json:"champion"`
	Skins     []string  `json:"skins"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Empty reports whether nothing was published yet.
func (p Published) Empty() bool {
	return p.Version == 0
}

// Store holds the published selection. The watch loop is its only writer; readers
// always receive copies.
type Store struct {
	mu      sync.RWMutex
	current Published

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan Published
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{subs: map[int]chan Published{}, now: time.Now}
}

// UpdateChampionData publishes a champion and its skins, replacing the previous pair.
func (s *Store) UpdateChampionData(display string, skins []string) {
	s.mu.Lock()
	s.current = Published{
		Champion:  display,
		Skins:     clone.Clone(skins),
		Version:   s.current.Version + 1,
		UpdatedAt: s.now(),
	}
	snapshot := clone.Clone(s.current)
	s.mu.Unlock()

	slog.Debug("selection published", "champion", display, "skins", len(skins), "version", snapshot.Version)
	s.broadcast(snapshot)
}

// Snapshot returns a copy of the published selection.
func (s *Store) Snapshot() Published {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone.Clone(s.current)
}

// Subscribe returns a channel receiving every future publication and a function
// that ends the subscription. A subscriber that stops reading is dropped and its
// channel closed.
func (s *Store) Subscribe() (<-chan Published, func()) {
	ch := make(chan Published, subscriberBuffer)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *Store) unsubscribe(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// Subscribers returns the number of live subscriptions.
func (s *Store) Subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

func (s *Store) broadcast(p Published) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for id, ch := range s.subs {
		select {
		case ch <- clone.Clone(p):
		default:
			slog.Warn("dropping slow selection subscriber", "subscriber", id)
			delete(s.subs, id)
			close(ch)
		}
	}
}
