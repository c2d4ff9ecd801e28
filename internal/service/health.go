package service

import (
	"context"
	"net/http"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// HealthChecker pings the backends the service depends on. A nil error means
// the backend is reachable.
type HealthChecker interface {
	Health(ctx context.Context) map[string]error
}

// HealthReply is the /healthz body.
type HealthReply struct {
	Status   string            `json:"status"`
	Backends map[string]string `json:"backends"`
}

// HealthService reports backend reachability.
type HealthService struct {
	checker HealthChecker
}

// NewHealthService creates a new HealthService
func NewHealthService(checker HealthChecker) *HealthService {
	return &HealthService{checker: checker}
}

// Check answers 200 when every backend is up and 503 otherwise.
func (s *HealthService) Check(ctx khttp.Context) error {
	reply := &HealthReply{Status: "ok", Backends: map[string]string{}}
	code := http.StatusOK
	for name, err := range s.checker.Health(ctx) {
		if err != nil {
			reply.Backends[name] = err.Error()
			reply.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		reply.Backends[name] = "ok"
	}
	return ctx.Result(code, reply)
}
