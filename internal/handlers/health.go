package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/bellcenter/internal/monitoring"
	appErrors "github.com/charlesng35/bellcenter/pkg/errors"
	"github.com/charlesng35/bellcenter/pkg/logger"
	"github.com/charlesng35/bellcenter/pkg/response"
)

var errServiceUnavailable = appErrors.New("SERVICE_UNAVAILABLE", "Service unavailable", http.StatusServiceUnavailable)

// Live reports that the process is serving requests.
func Live(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

// Health reports readiness; it fails with 503 when any dependency probe is not up.
func Health(checker *monitoring.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := checker.Evaluate(requestContext(c))
		if report.Healthy() {
			response.Success(c, http.StatusOK, gin.H{"status": "ok", "checks": report.Checks})
			return
		}

		failure := *errServiceUnavailable
		failure.Details = map[string][]string{}
		for _, check := range report.Checks {
			if check.Status == monitoring.StatusUp {
				continue
			}
			failure.Details[check.Component] = []string{string(check.Status) + ": " + check.Details}
			logger.WithModule("health").Warn("dependency probe failed",
				zap.String("component", check.Component),
				zap.String("status", string(check.Status)),
				zap.String("details", check.Details))
		}
		response.Error(c, &failure)
	}
}
