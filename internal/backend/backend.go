package backend

import (
	"context"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/project"
)

// API is the engine surface the studio depends on.
type API interface {
	// DiscoverEffects rescans the engine's effect registry.
	DiscoverEffects(ctx context.Context) (DiscoverResult, error)

	// GetAvailableEffects returns the effects that can be added now.
	GetAvailableEffects(ctx context.Context) (DiscoverResult, error)

	// GetEffectDefaults returns the default config for an effect name or
	// registry key.
	GetEffectDefaults(ctx context.Context, name string) (DefaultsResult, error)

	// RenderFrame renders one frame of the project.
	RenderFrame(ctx context.Context, snap project.Snapshot, frame int) (RenderResult, error)

	// StartRenderLoop renders the project's frame range continuously
	// until StopRenderLoop is called.
	StartRenderLoop(ctx context.Context, snap project.Snapshot) (Result, error)

	// StopRenderLoop stops a running render loop.
	StopRenderLoop(ctx context.Context) (Result, error)

	// SelectFile asks the engine host to pick files.
	SelectFile(ctx context.Context, opts FileOptions) (FileResult, error)

	// LoadProject reads a saved project.
	LoadProject(ctx context.Context, path string) (ProjectResult, error)

	// ReadFile reads a file from the engine host.
	ReadFile(ctx context.Context, path string) (FileContent, error)
}

// Result is the common part of every engine response.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// OK returns a successful Result.
func OK() Result {
	return Result{Success: true}
}

// Fail returns a failed Result with msg.
func Fail(msg string) Result {
	return Result{Error: msg}
}

// Failed reports whether the engine refused the request.
func (r Result) Failed() bool {
	return !r.Success
}

// DiscoverResult lists effects by type.
type DiscoverResult struct {
	Result
	Effects effect.Catalog `json:"effects"`
}

// DefaultsResult carries an effect's default config.
type DefaultsResult struct {
	Result
	Defaults effect.Config `json:"defaults,omitempty"`
}

// Buffer types for RenderResult.
const (
	BufferPNG  = "png"
	BufferJPEG = "jpeg"
)

// RenderResult carries a rendered frame either inline or by file URL.
type RenderResult struct {
	Result
	FrameBuffer []byte `json:"frameBuffer,omitempty"`
	FileURL     string `json:"fileUrl,omitempty"`
	BufferType  string `json:"bufferType,omitempty"`
	Method      string `json:"method,omitempty"`
}

// FileFilter restricts SelectFile to extensions.
type FileFilter struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// FileOptions configures SelectFile.
type FileOptions struct {
	Title       string       `json:"title,omitempty"`
	DefaultPath string       `json:"defaultPath,omitempty"`
	Filters     []FileFilter `json:"filters,omitempty"`
	Directory   bool         `json:"directory,omitempty"`
	Multiple    bool         `json:"multiple,omitempty"`
}

// FileResult lists the files picked by SelectFile.
type FileResult struct {
	Result
	Canceled  bool     `json:"canceled"`
	FilePaths []string `json:"filePaths,omitempty"`
}

// ProjectResult carries a loaded project.
type ProjectResult struct {
	Result
	Path    string           `json:"path,omitempty"`
	Project project.Snapshot `json:"project"`
}

// FileContent carries a file's bytes.
type FileContent struct {
	Result
	Content []byte `json:"content,omitempty"`
}
