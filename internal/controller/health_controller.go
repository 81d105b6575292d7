package controller

import (
	"net/http"

	"github.com/meshpay/gateway/internal/service"
)

type HealthController struct {
	gateway *service.Gateway
}

func NewHealthController(gateway *service.Gateway) *HealthController {
	return &HealthController{gateway: gateway}
}

func (h *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"providers": h.gateway.Providers(),
	})
}

func (h *HealthController) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness reports ready even with zero providers; that is a valid
// degraded state and requests fail per-call with provider_not_available.
func (h *HealthController) Readiness(w http.ResponseWriter, r *http.Request) {
	providers := h.gateway.Providers()
	status := "ready"
	if len(providers) == 0 {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"providers": providers,
	})
}
