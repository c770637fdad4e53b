package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"sync"

	"fileforge/internal/quality"
	"fileforge/internal/services"
)

// Artifact is one output file produced by a conversion.
type Artifact struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Format string `json:"format"`
}

// Request carries everything a converter needs for one job.
type Request struct {
	InputPath    string
	OutputDir    string
	InputFormat  string
	OutputFormat string
	Profile      quality.Profile
}

// Converter is the uniform contract all category converters satisfy.
type Converter interface {
	Name() string
	Convert(ctx context.Context, req Request) ([]Artifact, error)
}

// HealthChecker is implemented by converters that can probe their external
// tooling.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Registry maps converter ids to implementations. Adding a category means
// registering an implementation, not editing dispatch logic.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]Converter
}

func NewRegistry() *Registry {
	return &Registry{converters: make(map[string]Converter)}
}

// Register binds a converter under its name. Re-registering replaces the
// previous implementation.
func (r *Registry) Register(converter Converter) {
	if converter == nil {
		return
	}
	r.mu.Lock()
	r.converters[converter.Name()] = converter
	r.mu.Unlock()
}

// Get looks up the converter bound to id.
func (r *Registry) Get(id string) (Converter, error) {
	r.mu.RLock()
	converter, ok := r.converters[id]
	r.mu.RUnlock()
	if !ok {
		return nil, services.Wrap(services.ErrConversion, "convert", "dispatch",
			"no converter registered for "+id, nil)
	}
	return converter, nil
}

// Names lists registered converter ids, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.converters))
	for name := range r.converters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupBinary resolves an external tool name against PATH.
func lookupBinary(binary string) error {
	if _, err := exec.LookPath(binary); err != nil {
		return services.Wrap(services.ErrExternalTool, "convert", "health",
			binary+" not found on PATH", err)
	}
	return nil
}

// OutputName is the canonical artifact filename for a format.
func OutputName(format string) string {
	return "converted." + format
}

// artifactFor stats path and builds the artifact record.
func artifactFor(path, format string) (Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, services.Wrap(services.ErrConversion, "convert", "collect",
			fmt.Sprintf("artifact %s missing", path), err)
	}
	if info.Size() == 0 {
		return Artifact{}, services.Wrap(services.ErrConversion, "convert", "collect",
			fmt.Sprintf("artifact %s is empty", path), nil)
	}
	return Artifact{
		Name:   info.Name(),
		Path:   path,
		Size:   info.Size(),
		Format: format,
	}, nil
}
