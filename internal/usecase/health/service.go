// Package health reports process liveness. The report is built from
// process-local state only: no store pings, no provider calls. Dependency
// reachability is covered by the diagnostics endpoint instead, so health
// stays cheap enough for aggressive probe intervals.
package health

import "time"

// Status represents the process health status.
type Status string

// Healthy indicates the process is up and serving.
const Healthy Status = "ok"

// Report is a static liveness snapshot.
type Report struct {
	Status  Status
	Service string
	Version string
	Uptime  time.Duration
}

// Service answers liveness probes.
type Service struct {
	service string
	version string
	started time.Time
}

// New creates a health service anchored at process start.
func New(service, version string) *Service {
	return &Service{service: service, version: version, started: time.Now()}
}

// Check returns the liveness report without touching any dependency.
func (s *Service) Check() Report {
	return Report{
		Status:  Healthy,
		Service: s.service,
		Version: s.version,
		Uptime:  time.Since(s.started).Round(time.Second),
	}
}
