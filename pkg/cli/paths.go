package cli

import (
	"os"
	"path/filepath"
)

// Paths provides access to the spotkit directory structure.
type Paths struct {
	// HomeDir is the user's home directory
	HomeDir string
}

// NewPaths creates a new Paths instance.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns the base spotkit directory (~/.spotkit).
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile returns the config file path (~/.spotkit/config.yaml).
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// ModelsDir returns the models directory (~/.spotkit/models).
func (p *Paths) ModelsDir() string {
	return filepath.Join(p.BaseDir(), "models")
}

// LogDir returns the log directory (~/.spotkit/logs).
func (p *Paths) LogDir() string {
	return filepath.Join(p.BaseDir(), "logs")
}

// EnsureBaseDir creates the base directory if it doesn't exist.
func (p *Paths) EnsureBaseDir() error {
	return os.MkdirAll(p.BaseDir(), 0755)
}

// EnsureModelsDir creates the models directory if it doesn't exist.
func (p *Paths) EnsureModelsDir() error {
	return os.MkdirAll(p.ModelsDir(), 0755)
}

// EnsureLogDir creates the log directory if it doesn't exist.
func (p *Paths) EnsureLogDir() error {
	return os.MkdirAll(p.LogDir(), 0755)
}

// ResolveModel resolves a model path: absolute paths and paths with a
// directory component pass through, bare names resolve against ModelsDir.
func (p *Paths) ResolveModel(name string) string {
	if filepath.IsAbs(name) || filepath.Dir(name) != "." {
		return name
	}
	return filepath.Join(p.ModelsDir(), name)
}

// LogPath returns a path within the log directory.
func (p *Paths) LogPath(name string) string {
	return filepath.Join(p.LogDir(), name)
}
