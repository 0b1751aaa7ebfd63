package farm

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/talgya/hollowfarm/internal/catalog"
)

// Roller supplies uniform random floats in [0, 1) for event rolls.
type Roller interface {
	Float() float64
}

// RollerFunc adapts a plain function (e.g. rand.Float64) to Roller.
type RollerFunc func() float64

func (f RollerFunc) Float() float64 { return f() }

const subscriberBuffer = 8

// Farm owns the farm state and is the only component allowed to change it.
type Farm struct {
	cat    *catalog.Catalog
	rules  Rules
	roller Roller

	mu      sync.Mutex
	state   State
	pending []Event // Journal events not yet drained

	subMu   sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int

	consulting atomic.Bool
}

// New creates a farm in its opening state.
func New(cat *catalog.Catalog, rules Rules, roller Roller) *Farm {
	return NewFromState(cat, rules, roller, NewState(rules))
}

// NewFromState creates a farm around an existing state. Used by tests to
// set up specific situations.
func NewFromState(cat *catalog.Catalog, rules Rules, roller Roller, s State) *Farm {
	if s.Level < 1 {
		s.Level = 1
	}
	return &Farm{
		cat:    cat,
		rules:  rules,
		roller: roller,
		state:  s.clone(),
		subs:   make(map[int]chan Snapshot),
	}
}

// Catalog returns the item table the farm runs on.
func (f *Farm) Catalog() *catalog.Catalog {
	return f.cat
}

// Snapshot returns the current state.
func (f *Farm) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.snapshot()
}

// CurrentTick returns the number of ticks applied so far.
func (f *Farm) CurrentTick() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Tick
}

// Tick advances the farm by one tick.
func (f *Farm) Tick() Snapshot {
	snap, _ := f.apply(func(t *txn) Outcome {
		t.tick(f.roller)
		return Outcome{Applied: true}
	})
	return snap
}

// Dispatch applies a user intent. Game-level rejections (not enough gold,
// wolf blocking the fields) are reported in the Outcome; an error means
// the intent itself was malformed and nothing changed.
func (f *Farm) Dispatch(in Intent) (Snapshot, Outcome, error) {
	if err := f.validate(in); err != nil {
		return f.Snapshot(), Outcome{}, err
	}
	snap, out := f.apply(func(t *txn) Outcome {
		return t.dispatch(in)
	})
	return snap, out, nil
}

// DrainEvents returns and clears the journal events recorded since the
// previous call.
func (f *Farm) DrainEvents() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev := f.pending
	f.pending = nil
	return ev
}

// Subscribe registers for a snapshot after every transition. Slow
// subscribers miss frames instead of blocking the farm.
func (f *Farm) Subscribe() (int, <-chan Snapshot) {
	f.subMu.Lock()
	defer f.subMu.Unlock()
	id := f.nextSub
	f.nextSub++
	ch := make(chan Snapshot, subscriberBuffer)
	f.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (f *Farm) Unsubscribe(id int) {
	f.subMu.Lock()
	defer f.subMu.Unlock()
	if ch, ok := f.subs[id]; ok {
		delete(f.subs, id)
		close(ch)
	}
}

// apply runs fn against a clone of the state and swaps the clone in.
func (f *Farm) apply(fn func(t *txn) Outcome) (Snapshot, Outcome) {
	f.mu.Lock()
	next := f.state.clone()
	t := &txn{s: &next, cat: f.cat, rules: f.rules}
	out := fn(t)
	f.state = next
	f.pending = append(f.pending, t.events...)
	snap := f.state.snapshot()
	// Publish under the state lock so subscribers see snapshots in order.
	f.publish(snap)
	f.mu.Unlock()

	return snap, out
}

func (f *Farm) publish(snap Snapshot) {
	f.subMu.Lock()
	defer f.subMu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// txn is the working context of one transition.
type txn struct {
	s      *State
	cat    *catalog.Catalog
	rules  Rules
	events []Event
}

// logf appends a narrative line to the capped log and the journal.
func (t *txn) logf(category, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	t.s.Log = append(t.s.Log, msg)
	if over := len(t.s.Log) - LogCap; over > 0 {
		t.s.Log = append([]string(nil), t.s.Log[over:]...)
	}
	t.events = append(t.events, Event{
		Tick:        t.s.Tick,
		Description: msg,
		Category:    category,
	})
}

func newJobID() string {
	return uuid.NewString()
}
