package handlers

import (
	"github.com/gofiber/fiber/v2"

	"quncipay/internal/services/offline"
	"quncipay/internal/utils/response"
)

type NetworkHandler struct {
	offline *offline.Service
}

func NewNetworkHandler(svc *offline.Service) *NetworkHandler {
	return &NetworkHandler{offline: svc}
}

// ToggleNetwork flips the simulated connectivity mode. Coming back
// online syncs the offline queue and includes the sync report.
func (h *NetworkHandler) ToggleNetwork(c *fiber.Ctx) error {
	mode, report, err := h.offline.ToggleNetwork(c.Context())
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "network mode changed", fiber.Map{
		"network": mode,
		"sync":    report,
	})
}

// TriggerSync runs the offline queue reconciliation on demand.
func (h *NetworkHandler) TriggerSync(c *fiber.Ctx) error {
	report, err := h.offline.Sync(c.Context())
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "sync complete", report)
}
