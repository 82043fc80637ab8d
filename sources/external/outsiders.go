package external

import (
	"fmt"
	"net/http"

	"fitcoach/sources/configuration"
	"fitcoach/sources/platform"
	"fitcoach/sources/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outsiders serves the operational endpoints that live outside the public API.
type Outsiders struct {
	log    *tracing.Logger
	config configuration.ServiceConfig
	sms    *http.Server
	as     *http.Server
}

func NewOutsiders(log *tracing.Logger, config *configuration.Config) *Outsiders {
	systemRegistry := prometheus.NewRegistry()

	systemRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)

	return &Outsiders{
		log:    log,
		config: config.Service,
		sms: &http.Server{
			Addr: fmt.Sprintf(":%d", config.Service.SystemMetricsPort),
			Handler: platform.Curry(http.NewServeMux, func(m *http.ServeMux) {
				m.Handle("/metrics", promhttp.HandlerFor(systemRegistry, promhttp.HandlerOpts{}))
				m.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
					livenessHandler(log, w, r)
				})
			}),
		},
		as: &http.Server{
			Addr: fmt.Sprintf(":%d", config.Service.ApplicationMetricsPort),
			Handler: platform.Curry(http.NewServeMux, func(m *http.ServeMux) {
				m.Handle("/metrics", promhttp.Handler())
			}),
		},
	}
}

func (x *Outsiders) systemMetrics() {
	x.log.I("System metrics server is starting", tracing.OutsiderKind, "system_metrics", "port", x.config.SystemMetricsPort)

	if err := x.sms.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		x.log.F("Failed to start system metrics server", tracing.OutsiderKind, "system_metrics", tracing.InnerError, err)
	}
}

func (x *Outsiders) applicationMetrics() {
	x.log.I("Application metrics server is starting", tracing.OutsiderKind, "application_metrics", "port", x.config.ApplicationMetricsPort)

	if err := x.as.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		x.log.F("Failed to start application metrics server", tracing.OutsiderKind, "application_metrics", tracing.InnerError, err)
	}
}

func livenessHandler(log *tracing.Logger, w http.ResponseWriter, r *http.Request) {
	log.D("Outsider service got a ping", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, `{"status":"ok","service":"fitcoach","version":%q,"build_time":%q,"uptime":%q}`,
		platform.GetAppVersion(), platform.GetAppBuildTime(), platform.GetAppUptime())
}
