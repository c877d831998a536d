package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

// Module names the part of the system a log line came from.
type Module string

type ServiceInfo struct {
	Name     string
	Version  string
	Revision string
}

type Config struct {
	Service       ServiceInfo
	Environment   Environment
	GCPProjectID  string
	DefaultModule Module
	Level         slog.Level
	Output        io.Writer
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	moduleKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// ValidateAndExtractRequestID returns id when it is a UUID, otherwise a
// freshly generated one.
func ValidateAndExtractRequestID(id string) string {
	if id != "" {
		if parsed, err := uuid.Parse(id); err == nil {
			return parsed.String()
		}
	}
	return uuid.NewString()
}

func WithModule(ctx context.Context, module Module) context.Context {
	return context.WithValue(ctx, moduleKey, module)
}

func ModuleFromContext(ctx context.Context) (Module, bool) {
	m, ok := ctx.Value(moduleKey).(Module)
	return m, ok
}

// NewLogger builds the JSON logger used process-wide.
func NewLogger(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:       cfg.Level,
		AddSource:   cfg.Environment == EnvDev,
		ReplaceAttr: replaceAttr,
	}

	base := slog.NewJSONHandler(out, opts).WithAttrs([]slog.Attr{
		slog.String("service", cfg.Service.Name),
		slog.String("version", cfg.Service.Version),
		slog.String("env", string(cfg.Environment)),
	})
	if cfg.Service.Revision != "" {
		base = base.WithAttrs([]slog.Attr{slog.String("revision", cfg.Service.Revision)})
	}

	return slog.New(&contextHandler{
		Handler:       base,
		projectID:     cfg.GCPProjectID,
		defaultModule: cfg.DefaultModule,
	})
}
