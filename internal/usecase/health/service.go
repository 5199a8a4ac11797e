package health

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const defaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	checks  []Check
	timeout time.Duration
}

// New creates a Service running checks in order.
func New(checks ...Check) *Service {
	return &Service{checks: checks, timeout: defaultCheckTimeout}
}

// Check runs every check with its own timeout.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checks))
	failed := 0

	for _, c := range s.checks {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := c.Run(pctx)
		cancel()

		if err != nil {
			logger.FromContext(ctx).Warn("Health check failed", zap.String("check", c.Name), zap.Error(err))
			checks[c.Name] = CheckError
			failed++
			continue
		}
		checks[c.Name] = CheckOK
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(s.checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
