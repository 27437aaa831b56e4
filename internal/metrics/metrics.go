package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TorrentsManaged = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "transmission",
		Name:      "torrents_managed",
		Help:      "Number of torrents in the session.",
	})

	TorrentsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "transmission",
		Name:      "torrents_active",
		Help:      "Number of torrents currently downloading or seeding.",
	})

	DownloadedBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "transmission",
		Name:      "downloaded_bytes_total",
		Help:      "Payload bytes downloaded across all torrents this session.",
	})

	UploadedBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "transmission",
		Name:      "uploaded_bytes_total",
		Help:      "Payload bytes uploaded across all torrents this session.",
	})

	ActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transmission",
		Name:      "actions_total",
		Help:      "UI actions dispatched, by action name.",
	}, []string{"action"})

	AddErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transmission",
		Name:      "add_errors_total",
		Help:      "Failed torrent adds, by kind.",
	}, []string{"kind"})

	EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transmission",
		Name:      "session_events_total",
		Help:      "Session events delivered to the shell, by type.",
	}, []string{"type"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		TorrentsManaged,
		TorrentsActive,
		DownloadedBytes,
		UploadedBytes,
		ActionsTotal,
		AddErrorsTotal,
		EventsTotal,
	)
}
