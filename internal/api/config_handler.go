package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/confhub/internal/api/shared"
	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/logger"
	"github.com/phrazzld/confhub/internal/service"
)

// ConfigRegistry is the part of service.Registry the handlers call.
type ConfigRegistry interface {
	CreateConfig(ctx context.Context, operatorID int64, projectName, key, description string) (string, error)
	SetValue(ctx context.Context, operatorID int64, envName, key, group, value string) (string, error)
	UpdateDescription(ctx context.Context, operatorID int64, key, description string) (string, error)
	ListByPrefix(ctx context.Context, operatorID int64, prefix string) ([]string, error)
	Get(ctx context.Context, operatorID int64, envName string, q service.GetQuery) (any, error)
	Environments(ctx context.Context) ([]domain.Environment, error)
}

// ConfigHandler serves the /config2 routes.
type ConfigHandler struct {
	registry ConfigRegistry
	logger   *slog.Logger
}

// NewConfigHandler creates a ConfigHandler over registry.
func NewConfigHandler(registry ConfigRegistry, logger *slog.Logger) *ConfigHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigHandler{
		registry: registry,
		logger:   logger.With(slog.String("component", "config_handler")),
	}
}

// Routes mounts the handler's endpoints on r.
func (h *ConfigHandler) Routes(r chi.Router) {
	r.Get("/create", h.CreateConfig)
	r.Get("/set", h.SetValue)
	r.Get("/list", h.List)
	r.Get("/get", h.Get)
	r.Get("/desc", h.UpdateDescription)
	r.Get("/envs", h.Environments)
}

// operatorID reads the id parameter, writing a 400 when it is malformed.
func (h *ConfigHandler) operatorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := queryInt64(r, paramOperatorID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid id: must be an integer")
		return 0, false
	}
	return id, true
}

func (h *ConfigHandler) validate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return false
	}
	return true
}

// CreateConfig handles GET /config2/create.
func (h *ConfigHandler) CreateConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := h.operatorID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := CreateConfigRequest{
		OperatorID:  id,
		Project:     q.Get(paramProject),
		Key:         q.Get(paramKey),
		Description: q.Get(paramDescription),
	}
	if !h.validate(w, r, req) {
		return
	}

	msg, err := h.registry.CreateConfig(r.Context(), req.OperatorID, req.Project, req.Key, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create config")
		return
	}

	shared.RespondWithSuccess(w, r, msg)
}

// SetValue handles GET /config2/set.
func (h *ConfigHandler) SetValue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.operatorID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := SetValueRequest{
		OperatorID: id,
		Env:        q.Get(paramEnv),
		Key:        q.Get(paramKey),
		Group:      q.Get(paramGroup),
	}
	if value, present := queryOptional(r, paramValue); present {
		req.Value = &value
	}
	if !h.validate(w, r, req) {
		return
	}

	msg, err := h.registry.SetValue(r.Context(), req.OperatorID, req.Env, req.Key, req.Group, *req.Value)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to set config value")
		return
	}

	shared.RespondWithSuccess(w, r, msg)
}

// List handles GET /config2/list.
func (h *ConfigHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := h.operatorID(w, r)
	if !ok {
		return
	}

	req := ListRequest{OperatorID: id, Prefix: r.URL.Query().Get(paramPrefix)}

	keys, err := h.registry.ListByPrefix(r.Context(), req.OperatorID, req.Prefix)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list configs")
		return
	}

	shared.RespondWithSuccess(w, r, keys)
}

// Get handles GET /config2/get. key, keys and prefix are tried in that order.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.operatorID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := GetRequest{
		OperatorID: id,
		Env:        q.Get(paramEnv),
		Key:        q.Get(paramKey),
		Keys:       q.Get(paramKeys),
		Prefix:     q.Get(paramPrefix),
		Group:      q.Get(paramGroup),
	}
	if !h.validate(w, r, req) {
		return
	}

	result, err := h.registry.Get(r.Context(), req.OperatorID, req.Env, service.GetQuery{
		Key:    req.Key,
		Keys:   req.Keys,
		Prefix: req.Prefix,
		Group:  req.Group,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get config")
		return
	}

	shared.RespondWithSuccess(w, r, result)
}

// UpdateDescription handles GET /config2/desc.
func (h *ConfigHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	id, ok := h.operatorID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := UpdateDescriptionRequest{
		OperatorID:  id,
		Key:         q.Get(paramKey),
		Description: q.Get(paramDescription),
	}
	if !h.validate(w, r, req) {
		return
	}

	msg, err := h.registry.UpdateDescription(r.Context(), req.OperatorID, req.Key, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update description")
		return
	}

	shared.RespondWithSuccess(w, r, msg)
}

// Environments handles GET /config2/envs.
func (h *ConfigHandler) Environments(w http.ResponseWriter, r *http.Request) {
	envs, err := h.registry.Environments(r.Context())
	if err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Error("failed to list environments",
			slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "Failed to list environments")
		return
	}

	names := make([]string, len(envs))
	for i, env := range envs {
		names[i] = env.Name
	}
	shared.RespondWithSuccess(w, r, names)
}
