package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the authentication counters.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeInactive           = "inactive"
	OutcomeInvalidToken       = "invalid_token"
	OutcomeRevoked            = "revoked"
	OutcomeSubjectMismatch    = "subject_mismatch"
	OutcomeError              = "error"
)

// AuthMetrics counts authentication traffic. A nil *AuthMetrics is a no-op.
type AuthMetrics struct {
	Logins          *prometheus.CounterVec
	TokensIssued    *prometheus.CounterVec
	Revocations     *prometheus.CounterVec
	Authentications *prometheus.CounterVec
}

// NewAuthMetrics registers the authentication collectors with reg.
func NewAuthMetrics(reg prometheus.Registerer) (*AuthMetrics, error) {
	logins, err := Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: DefaultNamespace,
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Login attempts partitioned by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	issued, err := Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: DefaultNamespace,
		Subsystem: "auth",
		Name:      "tokens_issued_total",
		Help:      "Bearer tokens issued partitioned by kind.",
	}, []string{"kind"}))
	if err != nil {
		return nil, err
	}

	revocations, err := Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: DefaultNamespace,
		Subsystem: "auth",
		Name:      "token_revocations_total",
		Help:      "Tokens removed from the registry partitioned by scope.",
	}, []string{"scope"}))
	if err != nil {
		return nil, err
	}

	authentications, err := Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: DefaultNamespace,
		Subsystem: "auth",
		Name:      "bearer_authentications_total",
		Help:      "Bearer token checks on incoming requests partitioned by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	return &AuthMetrics{
		Logins:          logins,
		TokensIssued:    issued,
		Revocations:     revocations,
		Authentications: authentications,
	}, nil
}

func (m *AuthMetrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *AuthMetrics) ObserveIssued(kind string) {
	if m == nil {
		return
	}
	m.TokensIssued.WithLabelValues(kind).Inc()
}

func (m *AuthMetrics) ObserveRevocations(scope string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Revocations.WithLabelValues(scope).Add(float64(n))
}

func (m *AuthMetrics) ObserveAuthentication(outcome string) {
	if m == nil {
		return
	}
	m.Authentications.WithLabelValues(outcome).Inc()
}

// RegisterRegistrySize exports the live size of an in-process token registry.
func RegisterRegistrySize(reg prometheus.Registerer, size func() int) error {
	_, err := Register(reg, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: DefaultNamespace,
		Subsystem: "auth",
		Name:      "token_registry_entries",
		Help:      "Entries currently held by the in-memory token registry.",
	}, func() float64 { return float64(size()) }))
	return err
}
