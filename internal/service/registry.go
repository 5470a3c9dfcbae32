package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/logger"
	"github.com/phrazzld/confhub/internal/platform/tracing"
	"github.com/phrazzld/confhub/internal/service/identity"
	"github.com/phrazzld/confhub/internal/store"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// RegistryDeps holds the collaborators of a Registry.
type RegistryDeps struct {
	Gate      identity.Gate
	Policy    Policy
	Catalog   *Catalog
	Directory *Directory
	Resolver  *Resolver
	Projects  store.ProjectStore
	// Tracer defaults to a no-op tracer.
	Tracer trace.Tracer
	Logger *slog.Logger
}

// Registry is the call surface of the configuration registry. Every call
// checks identity (as the policy requires), then the environment, then the
// catalog.
type Registry struct {
	gate      identity.Gate
	policy    Policy
	catalog   *Catalog
	directory *Directory
	resolver  *Resolver
	projects  store.ProjectStore
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewRegistry creates a Registry from deps.
func NewRegistry(deps RegistryDeps) (*Registry, error) {
	if deps.Gate == nil {
		return nil, errors.New("identity gate cannot be nil")
	}
	if deps.Catalog == nil {
		return nil, errors.New("catalog cannot be nil")
	}
	if deps.Directory == nil {
		return nil, errors.New("directory cannot be nil")
	}
	if deps.Resolver == nil {
		return nil, errors.New("resolver cannot be nil")
	}
	if deps.Projects == nil {
		return nil, errors.New("project store cannot be nil")
	}
	if deps.Policy.exempt == nil {
		deps.Policy = DefaultPolicy()
	}
	if deps.Tracer == nil {
		deps.Tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Registry{
		gate:      deps.Gate,
		policy:    deps.Policy,
		catalog:   deps.Catalog,
		directory: deps.Directory,
		resolver:  deps.Resolver,
		projects:  deps.Projects,
		tracer:    deps.Tracer,
		logger:    deps.Logger.With(slog.String("component", "registry")),
	}, nil
}

// start opens the span for op and checks identity under the policy.
// The returned context carries the operator for the audit log.
func (r *Registry) start(
	ctx context.Context,
	op Operation,
	operatorID int64,
) (context.Context, trace.Span, error) {
	ctx, span := r.tracer.Start(ctx, "registry."+string(op),
		trace.WithAttributes(
			tracing.AttrOperation.String(string(op)),
			tracing.AttrOperatorID.Int64(operatorID),
		))

	if r.policy.RequiresIdentity(op) {
		if err := r.gate.Verify(ctx, operatorID); err != nil {
			if errors.Is(err, identity.ErrPermissionDenied) {
				logger.FromContextOrDefault(ctx, r.logger).Warn("operator denied",
					slog.String("operation", string(op)),
					slog.Int64("operator_id", operatorID))
				return ctx, span, detail(ErrPermissionDenied, "Operator %d is not allowed to %s", operatorID, op)
			}
			return ctx, span, NewRegistryError(string(op), "failed to verify identity", err)
		}
	}

	return identity.WithOperator(ctx, operatorID), span, nil
}

// end records err on span and closes it.
func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// CreateConfig creates key in the named project and returns the reply message.
func (r *Registry) CreateConfig(
	ctx context.Context,
	operatorID int64,
	projectName, key, description string,
) (_ string, err error) {
	ctx, span, err := r.start(ctx, OpCreateConfig, operatorID)
	defer func() { end(span, err) }()
	if err != nil {
		return "", err
	}
	span.SetAttributes(tracing.AttrKey.String(key))

	project, err := r.projects.GetByName(ctx, projectName)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return "", detail(ErrProjectNotFound, "Project %s does not exist", projectName)
		}
		return "", NewRegistryError("create_config", "failed to look up project", err)
	}

	if _, err := r.catalog.CreateConfig(ctx, project.ID, key, description); err != nil {
		return "", err
	}

	return CreatedMessage(key, project.Name), nil
}

// SetValue stores value for key in the named environment and group and
// returns the reply message.
func (r *Registry) SetValue(
	ctx context.Context,
	operatorID int64,
	envName, key, group, value string,
) (_ string, err error) {
	ctx, span, err := r.start(ctx, OpSetValue, operatorID)
	defer func() { end(span, err) }()
	if err != nil {
		return "", err
	}
	span.SetAttributes(
		tracing.AttrKey.String(key),
		tracing.AttrEnv.String(envName),
		tracing.AttrGroup.String(group),
	)

	env, err := r.directory.ResolveEnvironment(ctx, envName)
	if err != nil {
		return "", err
	}

	config, err := r.catalog.FindByKey(ctx, key)
	if err != nil {
		return "", err
	}

	if _, err := r.resolver.SetValue(ctx, config.ID, env, group, value); err != nil {
		return "", err
	}

	return SetMessage(key, env.Name, group, value), nil
}

// UpdateDescription replaces the description of key and returns the reply message.
func (r *Registry) UpdateDescription(
	ctx context.Context,
	operatorID int64,
	key, description string,
) (_ string, err error) {
	ctx, span, err := r.start(ctx, OpUpdateDescription, operatorID)
	defer func() { end(span, err) }()
	if err != nil {
		return "", err
	}
	span.SetAttributes(tracing.AttrKey.String(key))

	if _, err := r.catalog.UpdateDescription(ctx, key, description); err != nil {
		return "", err
	}

	return "Updated description of config " + key, nil
}

// ListByPrefix returns the keys starting with prefix, in key order.
func (r *Registry) ListByPrefix(ctx context.Context, operatorID int64, prefix string) (_ []string, err error) {
	ctx, span, err := r.start(ctx, OpListByPrefix, operatorID)
	defer func() { end(span, err) }()
	if err != nil {
		return nil, err
	}

	configs, err := r.catalog.FindByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(configs))
	for i, config := range configs {
		keys[i] = config.Key
	}

	span.SetAttributes(tracing.AttrResultSize.Int(len(keys)))
	return keys, nil
}

// GetOne returns the value of key in the named environment and group.
func (r *Registry) GetOne(
	ctx context.Context,
	operatorID int64,
	envName, key, group string,
) (_ string, err error) {
	ctx, span, err := r.start(ctx, OpGetOne, operatorID)
	defer func() { end(span, err) }()
	if err != nil {
		return "", err
	}
	span.SetAttributes(tracing.AttrKey.String(key), tracing.AttrEnv.String(envName))

	env, err := r.directory.ResolveEnvironment(ctx, envName)
	if err != nil {
		return "", err
	}

	return r.resolver.GetValue(ctx, key, env, group)
}

// GetMany returns key -> value for each of keys that has a value in the
// named environment and group. Missing keys are omitted.
func (r *Registry) GetMany(
	ctx context.Context,
	operatorID int64,
	envName string,
	keys []string,
	group string,
) (_ map[string]string, err error) {
	ctx, span, err := r.start(ctx, OpGetMany, operatorID)
	defer func() { end(span, err) }()
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracing.AttrEnv.String(envName))

	env, err := r.directory.ResolveEnvironment(ctx, envName)
	if err != nil {
		return nil, err
	}

	values, err := r.resolver.GetValues(ctx, keys, env, group)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(tracing.AttrResultSize.Int(len(values)))
	return values, nil
}

// GetByPrefix returns key -> value for each config starting with prefix
// that has a value in the named environment and group.
func (r *Registry) GetByPrefix(
	ctx context.Context,
	operatorID int64,
	envName, prefix, group string,
) (_ map[string]string, err error) {
	ctx, span, err := r.start(ctx, OpGetByPrefix, operatorID)
	defer func() { end(span, err) }()
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracing.AttrEnv.String(envName))

	env, err := r.directory.ResolveEnvironment(ctx, envName)
	if err != nil {
		return nil, err
	}

	values, err := r.resolver.GetValuesByPrefix(ctx, prefix, env, group)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(tracing.AttrResultSize.Int(len(values)))
	return values, nil
}

// GetQuery selects what Get reads. The first non-blank of Key, Keys and
// Prefix wins.
type GetQuery struct {
	Key    string
	Keys   string // comma-separated
	Prefix string
	Group  string
}

// Get dispatches q to GetOne, GetMany or GetByPrefix. The result is a
// string for GetOne and a map for the others. Identity and the environment
// are checked before the query shape, so a query naming nothing fails with
// ErrMissingKey only for an allowed operator and a known environment.
func (r *Registry) Get(ctx context.Context, operatorID int64, envName string, q GetQuery) (any, error) {
	switch {
	case strings.TrimSpace(q.Key) != "":
		return r.GetOne(ctx, operatorID, envName, q.Key, q.Group)
	case strings.TrimSpace(q.Keys) != "":
		return r.GetMany(ctx, operatorID, envName, ParseKeyList(q.Keys), q.Group)
	case strings.TrimSpace(q.Prefix) != "":
		return r.GetByPrefix(ctx, operatorID, envName, q.Prefix, q.Group)
	}

	ctx, span, err := r.start(ctx, OpGetOne, operatorID)
	defer func() { end(span, err) }()
	if err != nil {
		return nil, err
	}

	if _, err = r.directory.ResolveEnvironment(ctx, envName); err != nil {
		return nil, err
	}

	err = detail(ErrMissingKey, "Key is null")
	return nil, err
}

// Environments lists the known environments.
func (r *Registry) Environments(ctx context.Context) ([]domain.Environment, error) {
	return r.directory.ListEnvironments(ctx)
}

// ParseKeyList splits a comma-separated key list, trimming each entry and
// dropping empty ones.
func ParseKeyList(keys string) []string {
	parts := strings.Split(keys, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if key := strings.TrimSpace(part); key != "" {
			result = append(result, key)
		}
	}
	return result
}
