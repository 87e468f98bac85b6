package tools

import (
	"context"
	"time"

	"github.com/anvilmcp/anvil/internal/schema"
	"github.com/dustin/go-humanize"
)

// HealthTool reports server identity and liveness. It takes no parameters.
type HealthTool struct {
	def        *schema.Definition
	serverName string
	version    string
	instanceID string
	started    time.Time
	registry   *Registry
}

func NewHealthTool(serverName, version, instanceID string, registry *Registry) *HealthTool {
	def := schema.NewDefinition("health")
	def.SetDescription("Report server status, identity, uptime, and registered tool count")

	return &HealthTool{
		def:        def,
		serverName: serverName,
		version:    version,
		instanceID: instanceID,
		started:    time.Now(),
		registry:   registry,
	}
}

func (t *HealthTool) Definition() *schema.Definition {
	return t.def
}

func (t *HealthTool) Title() string {
	return "Server Health"
}

func (t *HealthTool) Annotations() map[string]bool {
	return ReadOnlyAnnotations()
}

func (t *HealthTool) Invoke(ctx context.Context, args Args) (any, error) {
	return map[string]any{
		"status":       "healthy",
		"server":       t.serverName,
		"version":      t.version,
		"instance_id":  t.instanceID,
		"started":      humanize.Time(t.started),
		"uptime_ms":    time.Since(t.started).Milliseconds(),
		"tools_loaded": t.registry.Len(),
	}, nil
}
