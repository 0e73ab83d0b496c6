package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ContentDigest/internal/domain"
	"ContentDigest/internal/ports"
)

// Metrics aggregates the Prometheus instruments of the pipeline.
type Metrics struct {
	Classifications *prometheus.CounterVec
	Verdicts        *prometheus.CounterVec
	Fetches         *prometheus.CounterVec
	Summaries       *prometheus.CounterVec
	JobDuration     prometheus.Histogram
	QueueDepth      prometheus.Gauge
}

// NewMetrics registers the instruments on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentdigest",
			Name:      "classifications_total",
			Help:      "Pages classified, labeled by detected content kind.",
		}, []string{"kind"}),
		Verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentdigest",
			Name:      "validation_verdicts_total",
			Help:      "Video link validations, labeled by verdict reason.",
		}, []string{"reason"}),
		Fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentdigest",
			Name:      "fetches_total",
			Help:      "Document fetches, labeled by outcome.",
		}, []string{"outcome"}),
		Summaries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentdigest",
			Name:      "summaries_total",
			Help:      "Summaries produced, labeled by provider and final status.",
		}, []string{"provider", "status"}),
		JobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "contentdigest",
			Name:      "job_duration_seconds",
			Help:      "Wall time of one inbox job from fetch to delivery.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "contentdigest",
			Name:      "queue_depth",
			Help:      "Jobs currently waiting in the inbox queue.",
		}),
	}
}

// ClassificationObserved counts one classified page.
func (m *Metrics) ClassificationObserved(kind domain.ContentKind) {
	if m == nil {
		return
	}
	m.Classifications.WithLabelValues(string(kind)).Inc()
}

// VerdictObserved counts one link validation outcome.
func (m *Metrics) VerdictObserved(v domain.ValidationVerdict) {
	if m == nil {
		return
	}
	m.Verdicts.WithLabelValues(string(v.Reason)).Inc()
}

// SummaryObserved counts one finished summary.
func (m *Metrics) SummaryObserved(provider string, status domain.ProcessingStatus) {
	if m == nil {
		return
	}
	m.Summaries.WithLabelValues(provider, string(status)).Inc()
}

// JobObserved records the wall time of one job.
func (m *Metrics) JobObserved(d time.Duration) {
	if m == nil {
		return
	}
	m.JobDuration.Observe(d.Seconds())
}

// QueueDepthObserved records the current queue length.
func (m *Metrics) QueueDepthObserved(depth int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(depth))
}

// Fetcher wraps next so every fetch outcome is counted.
func (m *Metrics) Fetcher(next ports.DocumentFetcher) ports.DocumentFetcher {
	if m == nil {
		return next
	}
	return &instrumentedFetcher{next: next, fetches: m.Fetches}
}

type instrumentedFetcher struct {
	next    ports.DocumentFetcher
	fetches *prometheus.CounterVec
}

func (f *instrumentedFetcher) Fetch(ctx context.Context, fc *domain.FetchContext, pageURL string) (domain.FetchResult, error) {
	res, err := f.next.Fetch(ctx, fc, pageURL)
	switch {
	case err != nil:
		f.fetches.WithLabelValues("error").Inc()
	case res.OK():
		f.fetches.WithLabelValues("ok").Inc()
	default:
		f.fetches.WithLabelValues("http_error").Inc()
	}
	return res, err
}

// Serve exposes /metrics on addr until ctx is canceled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
