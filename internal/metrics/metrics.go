package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa os contadores do serviço de contas.
type Metrics struct {
	Merges           *prometheus.CounterVec
	RoleMutations    *prometheus.CounterVec
	ForbiddenChanges prometheus.Counter
	SMSDeliveries    *prometheus.CounterVec
	SaveDuration     prometheus.Histogram
}

// New registra as métricas no registerer informado (prometheus.DefaultRegisterer em produção).
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Merges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "observadores_application_merges_total",
			Help: "Merges de requerimentos por resultado",
		}, []string{"kind", "result"}),
		RoleMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "observadores_role_mutations_total",
			Help: "Papéis gerais adicionados ou removidos em commits bem sucedidos",
		}, []string{"op"}),
		ForbiddenChanges: factory.NewCounter(prometheus.CounterOpts{
			Name: "observadores_role_mutations_forbidden_total",
			Help: "Commits rejeitados pelo escopo do ator",
		}),
		SMSDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "observadores_sms_deliveries_total",
			Help: "Envios de SMS por resultado",
		}, []string{"result"}),
		SaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "observadores_user_save_duration_seconds",
			Help:    "Duração do commit atômico do usuário",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// Merge registra um merge; kind é "create" ou "update".
func (m *Metrics) Merge(kind string, err error) {
	if m == nil {
		return
	}
	m.Merges.WithLabelValues(kind, result(err)).Inc()
}

// RolesChanged registra papéis adicionados e removidos.
func (m *Metrics) RolesChanged(added, removed int) {
	if m == nil {
		return
	}
	m.RoleMutations.WithLabelValues("add").Add(float64(added))
	m.RoleMutations.WithLabelValues("remove").Add(float64(removed))
}

// Forbidden registra commit rejeitado pelo escopo.
func (m *Metrics) Forbidden() {
	if m == nil {
		return
	}
	m.ForbiddenChanges.Inc()
}

// SMS registra resultado de envio.
func (m *Metrics) SMS(err error) {
	if m == nil {
		return
	}
	m.SMSDeliveries.WithLabelValues(result(err)).Inc()
}

// ObserveSave registra a duração do commit em segundos.
func (m *Metrics) ObserveSave(seconds float64) {
	if m == nil {
		return
	}
	m.SaveDuration.Observe(seconds)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
