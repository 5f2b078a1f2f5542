package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CircuitBreaker guards outbound SMTP delivery so a dead mail relay fails jobs
// fast instead of tying up every worker on connect timeouts.
//
//	closed    → sends pass through; FailureThreshold consecutive errors trip it
//	open      → sends fail with ErrCircuitOpen until OpenTimeout has elapsed
//	half-open → sends pass as probes; SuccessThreshold successes close it, one error reopens it
type CircuitBreaker struct {
	name    string
	cfg     CircuitBreakerConfig
	now     func() time.Time
	mu      sync.Mutex
	state   CBState
	fails   int
	probes  int
	trapped time.Time // when the breaker last opened
}

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	}
	return "unknown"
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

// DefaultCBConfig returns the SMTP breaker defaults.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      2 * time.Minute,
	}
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{name: cfg.Name, cfg: cfg, now: time.Now}
}

func (cb *CircuitBreaker) Name() string { return cb.name }

// BreakerSnapshot is the breaker state reported by GET /health.
type BreakerSnapshot struct {
	State     string     `json:"state"`
	Failures  int        `json:"failures"`
	RetryFrom *time.Time `json:"retry_from,omitempty"`
}

func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.current()
}

func (cb *CircuitBreaker) Snapshot() BreakerSnapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	s := BreakerSnapshot{State: cb.current().String(), Failures: cb.fails}
	if cb.state == CBOpen {
		at := cb.trapped.Add(cb.cfg.OpenTimeout).UTC()
		s.RetryFrom = &at
	}
	return s
}

// Execute runs send unless the breaker is open, and records its outcome.
func (cb *CircuitBreaker) Execute(send func() error) error {
	cb.mu.Lock()
	if cb.current() == CBOpen {
		cb.mu.Unlock()
		return ErrCircuitOpen
	}
	cb.mu.Unlock()

	err := send()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.failed()
	} else {
		cb.succeeded()
	}
	return err
}

// current promotes open to half-open once the timeout has passed. Caller holds mu.
func (cb *CircuitBreaker) current() CBState {
	if cb.state == CBOpen && cb.now().Sub(cb.trapped) >= cb.cfg.OpenTimeout {
		cb.state = CBHalfOpen
		cb.probes = 0
	}
	return cb.state
}

func (cb *CircuitBreaker) failed() {
	cb.fails++
	switch cb.state {
	case CBClosed:
		if cb.fails >= cb.cfg.FailureThreshold {
			cb.trip()
			log.Warn().Str("breaker", cb.name).Int("failures", cb.fails).Msg("circuit breaker opened")
		}
	case CBHalfOpen:
		cb.trip()
		log.Warn().Str("breaker", cb.name).Msg("circuit breaker probe failed, reopened")
	}
}

func (cb *CircuitBreaker) succeeded() {
	if cb.state == CBHalfOpen {
		cb.probes++
		if cb.probes < cb.cfg.SuccessThreshold {
			return
		}
		log.Info().Str("breaker", cb.name).Msg("circuit breaker closed")
	}
	cb.state, cb.fails, cb.probes = CBClosed, 0, 0
}

func (cb *CircuitBreaker) trip() {
	cb.state = CBOpen
	cb.trapped = cb.now()
	cb.probes = 0
}
