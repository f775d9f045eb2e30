package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Consent-related Prometheus metrics. These are defined in a standalone package
// to avoid import cycles between the consent core and HTTP packages.

var (
	ConsentDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consent_decisions_total",
		Help: "Decisiones de consentimiento procesadas, por resultado",
	}, []string{"outcome"})

	ScopeResolutionAnomalies = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consent_scope_resolution_anomalies_total",
		Help: "Scope names descartados silenciosamente durante el enriquecimiento",
	}, []string{"kind"})

	GrantsInserted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consent_organization_grants_inserted_total",
		Help: "Grants de organización insertados (tuplas nuevas, sin contar duplicados)",
	})
)

// RegisterConsent registers the consent metrics on the given registry (or default if nil).
func RegisterConsent(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{ConsentDecisions, ScopeResolutionAnomalies, GrantsInserted} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
