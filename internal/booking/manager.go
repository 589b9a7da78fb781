package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/internal/metrics"
	"github.com/HerbHall/lankaportal/pkg/content"
	pkgplugin "github.com/HerbHall/lankaportal/pkg/plugin"
)

// TopicChanged is published with a Checkout payload after every transition.
const TopicChanged = "booking.checkout.changed"

const (
	DefaultProcessingDelay = 3 * time.Second
	DefaultSessionTTL      = 30 * time.Minute
	DefaultRetention       = 24 * time.Hour
)

// Options configures a Manager. Zero values take the defaults.
type Options struct {
	ProcessingDelay time.Duration
	SessionTTL      time.Duration
	// Retention is how long finished checkouts stay readable.
	Retention time.Duration
	Now       func() time.Time
	// After replaces time.After for the processing step.
	After func(time.Duration) <-chan time.Time
}

type session struct {
	Checkout
	cancel context.CancelFunc
}

// Manager owns the checkout sessions and their processing tasks.
type Manager struct {
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Metrics
	bus     pkgplugin.EventBus

	mu       sync.Mutex
	sessions map[string]*session

	// base is cancelled by Close to abort every processing task.
	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a Manager. bus may be nil.
func NewManager(logger *zap.Logger, m *metrics.Metrics, bus pkgplugin.EventBus, opts Options) *Manager {
	if opts.ProcessingDelay <= 0 {
		opts.ProcessingDelay = DefaultProcessingDelay
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.After == nil {
		opts.After = time.After
	}
	base, cancel := context.WithCancel(context.Background())
	return &Manager{
		opts:     opts,
		logger:   logger,
		metrics:  m,
		bus:      bus,
		sessions: make(map[string]*session),
		base:     base,
		cancel:   cancel,
	}
}

// Create starts a checkout for rec in the details state.
func (m *Manager) Create(collection content.CollectionName, rec content.Record) Checkout {
	now := m.opts.Now()
	s := &session{Checkout: Checkout{
		ID:         uuid.NewString(),
		State:      StateDetails,
		Collection: collection,
		ItemID:     rec.RecordID(),
		ItemName:   rec.RecordName().Get(content.LangEN),
		UnitFeeUSD: unitFee(rec),
		CreatedAt:  now,
		UpdatedAt:  now,
	}}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.changed(s.Checkout)
	return s.Checkout
}

// Get returns a snapshot of a checkout.
func (m *Manager) Get(id string) (Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Checkout{}, ErrNotFound
	}
	return s.snapshot(), nil
}

// SubmitDetails records traveller details and moves to payment. Details may
// be resubmitted while the checkout waits for payment.
func (m *Manager) SubmitDetails(id string, d Details) (Checkout, error) {
	if err := validateDetails(&d, m.opts.Now()); err != nil {
		return Checkout{}, err
	}

	m.mu.Lock()
	s, err := m.transition(id, StatePayment)
	if err != nil {
		m.mu.Unlock()
		return Checkout{}, err
	}
	s.Details = &d
	c := s.snapshot()
	m.mu.Unlock()

	m.changed(c)
	return c, nil
}

// Pay validates the card and starts the processing task. The returned
// checkout is in the processing state; poll Get for the outcome.
func (m *Manager) Pay(id string, card Card) (Checkout, error) {
	number, err := validateCard(card, m.opts.Now())
	if err != nil {
		return Checkout{}, err
	}

	m.mu.Lock()
	// Only the payment state reaches processing, so Details is set.
	s, err := m.transition(id, StateProcessing)
	if err != nil {
		m.mu.Unlock()
		return Checkout{}, err
	}
	s.Payment = &Payment{
		Last4:     number[len(number)-4:],
		AmountUSD: s.UnitFeeUSD * float64(s.Details.Travellers),
	}
	ctx, cancel := context.WithCancel(m.base)
	s.cancel = cancel
	c := s.snapshot()
	m.wg.Add(1)
	m.mu.Unlock()

	go m.process(ctx, id, strings.HasSuffix(number, declineSuffix))
	m.changed(c)
	return c, nil
}

// Cancel abandons a checkout, aborting its processing task if one runs.
func (m *Manager) Cancel(id string) (Checkout, error) {
	m.mu.Lock()
	s, err := m.transition(id, StateCancelled)
	if err != nil {
		m.mu.Unlock()
		return Checkout{}, err
	}
	s.stopTask()
	c := s.snapshot()
	m.mu.Unlock()

	m.changed(c)
	return c, nil
}

// ExpireStale expires unfinished checkouts older than the session TTL and
// forgets finished ones past the retention period. It returns the number
// of checkouts expired.
func (m *Manager) ExpireStale() int {
	now := m.opts.Now()
	var expired []Checkout

	m.mu.Lock()
	for id, s := range m.sessions {
		switch {
		case !s.State.Terminal() && now.Sub(s.CreatedAt) > m.opts.SessionTTL:
			s.stopTask()
			s.State = StateExpired
			s.UpdatedAt = now
			expired = append(expired, s.snapshot())
		case s.State.Terminal() && now.Sub(s.UpdatedAt) > m.opts.Retention:
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, c := range expired {
		m.changed(c)
	}
	return len(expired)
}

// Len returns the number of tracked checkouts.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close aborts every processing task and waits for them to return. Their
// checkouts stay in the processing state until they expire.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) process(ctx context.Context, id string, decline bool) {
	defer m.wg.Done()

	select {
	case <-ctx.Done():
		return
	case <-m.opts.After(m.opts.ProcessingDelay):
	}

	to := StateConfirmed
	if decline {
		to = StateFailed
	}

	m.mu.Lock()
	s, err := m.transition(id, to)
	if err != nil {
		// Cancelled or expired while the timer fired.
		m.mu.Unlock()
		return
	}
	s.stopTask()
	if decline {
		s.Error = "card declined"
	} else {
		s.Reference = reference(s.ID)
		s.ConfirmedAt = s.UpdatedAt
	}
	c := s.snapshot()
	m.mu.Unlock()

	m.changed(c)
}

// transition moves a session to the target state. Callers hold m.mu.
func (m *Manager) transition(id string, to State) (*session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !CanTransition(s.State, to) {
		return nil, &TransitionError{From: s.State, To: to}
	}
	s.State = to
	s.UpdatedAt = m.opts.Now()
	return s, nil
}

func (m *Manager) changed(c Checkout) {
	m.metrics.Checkout(string(c.State))
	m.logger.Debug("checkout changed", zap.String("id", c.ID), zap.String("state", string(c.State)))
	if m.bus != nil {
		m.bus.PublishAsync(context.Background(), pkgplugin.Event{
			Topic:     TopicChanged,
			Source:    "booking",
			Timestamp: c.UpdatedAt,
			Payload:   c,
		})
	}
}

func (s *session) stopTask() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *session) snapshot() Checkout {
	c := s.Checkout
	if c.Details != nil {
		d := *c.Details
		c.Details = &d
	}
	if c.Payment != nil {
		p := *c.Payment
		c.Payment = &p
	}
	return c
}

func unitFee(rec content.Record) float64 {
	if d, ok := rec.(content.Destination); ok {
		return d.EntryFeeUSD
	}
	return 0
}

func reference(id string) string {
	return fmt.Sprintf("LK-%s", strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8]))
}
