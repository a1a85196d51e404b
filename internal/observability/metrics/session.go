// Package metrics exposes session lifecycle counters to Prometheus.
package metrics

import (
	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Login results used as the result label.
const (
	LoginSucceeded = "success"
	LoginRejected  = "rejected"
	LoginInvalid   = "invalid"
	LoginFailed    = "error"
)

var (
	_ ports.SessionMetrics = (*Session)(nil)
	_ ports.SessionMetrics = Noop{}
)

// Session records lifecycle counters on a Prometheus registerer.
type Session struct {
	logins        *prometheus.CounterVec
	terminations  *prometheus.CounterVec
	decodeFailure *prometheus.CounterVec
	fallbacks     prometheus.Counter
}

// NewSession creates the collectors and registers them on reg.
func NewSession(reg prometheus.Registerer) (*Session, error) {
	s := &Session{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		terminations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "session",
			Name:      "terminations_total",
			Help:      "Ended sessions by reason.",
		}, []string{"reason"}),
		decodeFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "session",
			Name:      "token_decode_failures_total",
			Help:      "Tokens whose expiry could not be decoded.",
		}, []string{"token"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "session",
			Name:      "company_fallbacks_total",
			Help:      "Logins that stored the default company profile.",
		}),
	}

	for _, c := range []prometheus.Collector{s.logins, s.terminations, s.decodeFailure, s.fallbacks} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) LoginAttempt(result string) { s.logins.WithLabelValues(result).Inc() }

func (s *Session) Terminated(reason domainsession.TerminationReason) {
	s.terminations.WithLabelValues(string(reason)).Inc()
}

func (s *Session) TokenDecodeFailure(token string) { s.decodeFailure.WithLabelValues(token).Inc() }

func (s *Session) CompanyFallback() { s.fallbacks.Inc() }

// Noop discards all measurements.
type Noop struct{}

func (Noop) LoginAttempt(string) {}
func (Noop) Terminated(domainsession.TerminationReason) {}
func (Noop) TokenDecodeFailure(string) {}
func (Noop) CompanyFallback() {}
