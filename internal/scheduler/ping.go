package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/scoutshq/outpost/internal/model"
)

// pingEndpoints are probed on every host, in report order.
var pingEndpoints = []string{"ping_database", "ping_application"}

// StatusNotifier receives the aggregated ping report and best-effort
// failure reports.
type StatusNotifier interface {
	SendPingStatus(report model.PingReport) error
	SendTracebackMessageSafe(message, code, level string)
}

// PingJob probes the health endpoints of every configured host over plain
// HTTP and reports the aggregate through the notifier.
type PingJob struct {
	client     *http.Client
	notifier   StatusNotifier
	hosts      []string
	pathPrefix string
}

// NewPingJob creates the ping job. Every probe carries the given per-call
// timeout so a hung downstream cannot block the tick indefinitely.
func NewPingJob(notifier StatusNotifier, hosts []string, pathPrefix string, timeout time.Duration) *PingJob {
	return &PingJob{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		notifier:   notifier,
		hosts:      hosts,
		pathPrefix: pathPrefix,
	}
}

// Run executes one scheduler tick. Probe failures are recorded as status
// strings, and a notifier failure is reported through the best-effort
// traceback channel; Run itself never returns an error.
func (j *PingJob) Run(ctx context.Context) error {
	report := j.probeAll(ctx)

	if err := j.notifier.SendPingStatus(report); err != nil {
		slog.Error("Failed to send ping status", "error", err)
		j.notifier.SendTracebackMessageSafe(
			fmt.Sprintf("Failed to send ping status: %v", err),
			err.Error(),
			"error",
		)
	}

	return nil
}

// probeAll issues all host×endpoint probes concurrently. Each probe writes
// into its own slot, so the report order stays hosts-then-endpoints as
// configured regardless of completion order.
func (j *PingJob) probeAll(ctx context.Context) model.PingReport {
	report := make(model.PingReport, len(j.hosts))

	var wg sync.WaitGroup
	for i, host := range j.hosts {
		report[i] = model.HostReport{
			Host:   host,
			Checks: make([]model.EndpointStatus, len(pingEndpoints)),
		}
		for k, endpoint := range pingEndpoints {
			wg.Add(1)
			go func(i, k int, host, endpoint string) {
				defer wg.Done()
				report[i].Checks[k] = model.EndpointStatus{
					Endpoint: endpoint,
					Status:   j.probe(ctx, host, endpoint),
				}
			}(i, k, host, endpoint)
		}
	}
	wg.Wait()

	return report
}

// probe issues one GET and classifies the outcome. The returned status
// strings are part of the notification contract.
func (j *PingJob) probe(ctx context.Context, host, endpoint string) string {
	url := fmt.Sprintf("http://%s%s/v1/health_check/%s", host, j.pathPrefix, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Sprintf("Failed (url %q): %v", url, err)
	}

	resp, err := j.client.Do(req)
	if err != nil {
		slog.Error("Health check failed",
			"host", host,
			"endpoint", endpoint,
			"url", url,
			"error", err,
		)
		return fmt.Sprintf("Failed (url %q): %v", url, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		slog.Error("Health check failed",
			"host", host,
			"endpoint", endpoint,
			"status_code", resp.StatusCode,
		)
		return fmt.Sprintf("Failed (status code: %d)", resp.StatusCode)
	}

	slog.Info("Health check successful", "host", host, "endpoint", endpoint)
	return model.StatusSuccessful
}
