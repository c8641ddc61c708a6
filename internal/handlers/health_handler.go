package handlers

import (
	"context"
	"net/http"

	"crisp/interview/internal/config"
	"crisp/interview/internal/llm"
	"crisp/interview/internal/prompts"
	"crisp/interview/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`  // Individual check results
}

// PingFunc probes one backing store. A nil entry is reported as not
// configured rather than failed since the service can run without it.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	provider      llm.Provider
	promptManager *prompts.PromptManager
	config        *config.Config
	stores        map[string]PingFunc
}

func NewHealthHandler(provider llm.Provider, promptManager *prompts.PromptManager, cfg *config.Config, stores map[string]PingFunc) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		promptManager: promptManager,
		config:        cfg,
		stores:        stores,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "interview",
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	// the provider is optional: without it scoring falls back to the
	// deterministic heuristic
	if handler.provider == nil {
		checks["provider"] = ReadinessCheck{
			Status:  "ok",
			Message: "AI provider not configured, heuristic scoring active",
		}
	} else {
		checks["provider"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify prompt manager has templates loaded
	if handler.promptManager == nil {
		checks["prompt_manager"] = ReadinessCheck{
			Status:  "failed",
			Message: "Prompt manager not initialized",
		}
		allChecksPass = false
	} else {
		templates := handler.promptManager.GetTemplates()
		if len(templates) == 0 {
			checks["prompt_manager"] = ReadinessCheck{
				Status:  "failed",
				Message: "No prompt templates loaded",
			}
			allChecksPass = false
		} else {
			checks["prompt_manager"] = ReadinessCheck{
				Status: "ok",
			}
		}
	}

	// verify configuration is valid
	if handler.config == nil {
		checks["configuration"] = ReadinessCheck{
			Status:  "failed",
			Message: "Configuration not loaded",
		}
		allChecksPass = false
	} else {
		checks["configuration"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify backing stores respond
	for name, ping := range handler.stores {
		if ping == nil {
			checks[name] = ReadinessCheck{
				Status:  "ok",
				Message: "not configured",
			}
			continue
		}
		if err := ping(request.Context()); err != nil {
			checks[name] = ReadinessCheck{
				Status:  "failed",
				Message: err.Error(),
			}
			allChecksPass = false
		} else {
			checks[name] = ReadinessCheck{
				Status: "ok",
			}
		}
	}

	response := ReadinessResponse{
		Service: "interview",
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
