package main

import (
	"context"
	"fmt"
	"time"

	"toftracer/film"

	"cloud.google.com/go/profiler"
	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudmetrics "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	monitoring           bool
	monitoringProject    string
	monitoringTraceRatio float64
	enableMetrics        bool
	enableProfiling      bool
)

func init() {
	flags := cmdRoot.PersistentFlags()
	flags.BoolVar(&monitoring, "monitoring", false, "Export OpenTelemetry traces and metrics to Google Cloud?")
	flags.StringVar(&monitoringProject, "monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	flags.Float64Var(&monitoringTraceRatio, "monitoring-trace-ratio", 0.01, "What ratio of traces should be exported?")
	flags.BoolVar(&enableMetrics, "enable-metrics", false, "Export film counters through OpenCensus to Cloud Monitoring?")
	flags.BoolVar(&enableProfiling, "enable-profiling", false, "Run the Cloud Profiler agent?")
}

// startMonitoring installs whichever exporters the flags ask for.  The
// returned function flushes and stops them.
func startMonitoring(ctx context.Context) (func(), error) {
	var stops []func()
	stop := func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}

	// Cloud Profiler initialization, best done as early as possible.
	if enableProfiling {
		if err := profiler.Start(profiler.Config{
			Service:        "toftracer",
			ServiceVersion: "0.0.1",
			ProjectID:      monitoringProject,
		}); err != nil {
			return stop, fmt.Errorf("while starting profiler: %w", err)
		}
	}

	if monitoring {
		metricsOpts := []cloudmetrics.Option{}
		traceOpts := []cloudtrace.Option{}
		if monitoringProject != "" {
			metricsOpts = append(metricsOpts, cloudmetrics.WithProjectID(monitoringProject))
			traceOpts = append(traceOpts, cloudtrace.WithProjectID(monitoringProject))
		}

		_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(monitoringTraceRatio)))
		if err != nil {
			return stop, fmt.Errorf("while installing Cloud Trace OpenTelemetry trace pipeline: %w", err)
		}
		stops = append(stops, traceShutdown)

		pusher, err := cloudmetrics.InstallNewPipeline(metricsOpts)
		if err != nil {
			return stop, fmt.Errorf("while installing Cloud Metrics OpenTelemetry meter pipeline: %w", err)
		}
		stops = append(stops, func() {
			if err := pusher.Stop(ctx); err != nil {
				glog.Warningf("Failed to stop metrics pusher: %v", err)
			}
		})
	}

	if enableMetrics {
		if err := film.RegisterViews(); err != nil {
			return stop, fmt.Errorf("while registering film views: %w", err)
		}
		exporter, err := stackdriver.NewExporter(stackdriver.Options{
			ProjectID:         monitoringProject,
			MetricPrefix:      "toftracer",
			ReportingInterval: 60 * time.Second,
		})
		if err != nil {
			return stop, fmt.Errorf("while creating Stackdriver exporter: %w", err)
		}
		if err := exporter.StartMetricsExporter(); err != nil {
			return stop, fmt.Errorf("while starting Stackdriver metrics exporter: %w", err)
		}
		stops = append(stops, exporter.StopMetricsExporter, exporter.Flush)
	}

	return stop, nil
}
