package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Prebatch-api/internal/application/prebatch"
)

const namespace = "prebatch"

// Prometheus registra los eventos del motor de pre-batch como métricas.
type Prometheus struct {
	registry        *prometheus.Registry
	packages        *prometheus.CounterVec
	packagedKg      *prometheus.CounterVec
	cancellations   *prometheus.CounterVec
	fifoViolations  *prometheus.CounterVec
	inventoryErrors *prometheus.CounterVec
	watchdogTrips   *prometheus.CounterVec
	scaleWeight     *prometheus.GaugeVec
	scaleStale      *prometheus.GaugeVec
}

var _ prebatch.Recorder = (*Prometheus)(nil)

// NewPrometheus crea las métricas sobre un registry propio, con los collectors de Go y proceso.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{
		registry: reg,
		packages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "packages_committed_total",
			Help: "Paquetes confirmados por ingrediente.",
		}, []string{"re_code"}),
		packagedKg: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "packaged_kilograms_total",
			Help: "Kilogramos netos confirmados por ingrediente.",
		}, []string{"re_code"}),
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "packages_cancelled_total",
			Help: "Paquetes cancelados por ingrediente.",
		}, []string{"re_code"}),
		fifoViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "fifo_violations_total",
			Help: "Escaneos rechazados por orden FIFO.",
		}, []string{"re_code"}),
		inventoryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "inventory_errors_total",
			Help: "Fallos al descontar o devolver inventario tras un registro.",
		}, []string{"op"}),
		watchdogTrips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "scale_watchdog_trips_total",
			Help: "Veces que una balanza dejó de reportar dentro de la ventana.",
		}, []string{"scale_id"}),
		scaleWeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "scale_weight_kilograms",
			Help: "Última lectura de cada balanza.",
		}, []string{"scale_id"}),
		scaleStale: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "scale_error",
			Help: "1 si la balanza está en error.",
		}, []string{"scale_id"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.packages, p.packagedKg, p.cancellations, p.fifoViolations,
		p.inventoryErrors, p.watchdogTrips, p.scaleWeight, p.scaleStale,
	)
	return p
}

// Handler expone el registry en formato Prometheus.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry devuelve el registry para tests.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

func (p *Prometheus) PackageCommitted(reCode string, net decimal.Decimal) {
	p.packages.WithLabelValues(reCode).Inc()
	p.packagedKg.WithLabelValues(reCode).Add(net.InexactFloat64())
}

func (p *Prometheus) PackageCancelled(reCode string) {
	p.cancellations.WithLabelValues(reCode).Inc()
}

func (p *Prometheus) FIFOViolation(reCode string) {
	p.fifoViolations.WithLabelValues(reCode).Inc()
}

func (p *Prometheus) InventoryError(op string) {
	p.inventoryErrors.WithLabelValues(op).Inc()
}

func (p *Prometheus) WatchdogTripped(scaleID string) {
	p.watchdogTrips.WithLabelValues(scaleID).Inc()
	p.scaleStale.WithLabelValues(scaleID).Set(1)
}

func (p *Prometheus) ScaleReading(scaleID string, weight decimal.Decimal, stale bool) {
	p.scaleWeight.WithLabelValues(scaleID).Set(weight.InexactFloat64())
	if stale {
		p.scaleStale.WithLabelValues(scaleID).Set(1)
	} else {
		p.scaleStale.WithLabelValues(scaleID).Set(0)
	}
}
