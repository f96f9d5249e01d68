package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"
)

// ErrInvalidName is returned when a dataset name contains invalid characters
var ErrInvalidName = errors.New("invalid dataset name: contains path traversal or invalid characters")

// Step represents a stage of the dataset pipeline
type Step string

const (
	StepInitial    Step = "initial"
	StepCleaned    Step = "cleaned"
	StepSubgraphed Step = "subgraphed"
	StepSplit      Step = "split"
	StepPruned     Step = "pruned"
	StepNegatives  Step = "negatives"
	StepCompleted  Step = "completed"
)

var steps = []Step{StepInitial, StepCleaned, StepSubgraphed, StepSplit, StepPruned, StepNegatives, StepCompleted}

// Output is one file written by the pipeline
type Output struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Count  int    `yaml:"count"`
	Bytes  int64  `yaml:"bytes"`
	Digest string `yaml:"blake3"`
}

// Manifest records the parameters, outputs and statistics of one dataset
type Manifest struct {
	RunID  string `yaml:"run_id"`
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Step   Step   `yaml:"step"`

	CreatedAt     time.Time `yaml:"created_at"`
	LastUpdatedAt time.Time `yaml:"last_updated_at"`
	LastError     string    `yaml:"last_error,omitempty"`

	Params  map[string]any `yaml:"params,omitempty"`
	Outputs []Output       `yaml:"outputs,omitempty"`
	Stats   map[string]any `yaml:"stats,omitempty"`
}

// New creates a manifest for a dataset at the initial step
func New(name, source string) *Manifest {
	now := time.Now().UTC()
	return &Manifest{
		RunID:         uuid.NewString(),
		Name:          name,
		Source:        source,
		Step:          StepInitial,
		CreatedAt:     now,
		LastUpdatedAt: now,
		Params:        make(map[string]any),
		Stats:         make(map[string]any),
	}
}

// Record adds an output, replacing any earlier output of the same name
func (m *Manifest) Record(out Output) {
	for i := range m.Outputs {
		if m.Outputs[i].Name == out.Name {
			m.Outputs[i] = out
			return
		}
	}
	m.Outputs = append(m.Outputs, out)
}

// RecordFile digests the file at path and records it
func (m *Manifest) RecordFile(name, path string, count int) error {
	digest, size, err := Digest(path)
	if err != nil {
		return err
	}
	m.Record(Output{Name: name, Path: path, Count: count, Bytes: size, Digest: digest})
	return nil
}

// Output returns the output recorded under name
func (m *Manifest) Output(name string) (Output, bool) {
	for _, out := range m.Outputs {
		if out.Name == name {
			return out, true
		}
	}
	return Output{}, false
}

// SetStat stores a statistic
func (m *Manifest) SetStat(key string, value any) {
	if m.Stats == nil {
		m.Stats = make(map[string]any)
	}
	m.Stats[key] = value
}

// Progress returns a human-readable progress description
func (m *Manifest) Progress() string {
	for i, step := range steps {
		if step == m.Step {
			return fmt.Sprintf("%.0f%% (%s)", float64(i)/float64(len(steps)-1)*100, m.Step)
		}
	}
	return "Unknown step"
}

// Digest returns the hex BLAKE3-256 digest and the size of the file at path
func Digest(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New(32, nil)
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("failed to digest %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), n, nil
}

// Manager stores manifests as YAML files in a directory
type Manager struct {
	dir string
}

// NewManager creates a manager for dir, creating it if needed
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}
	return &Manager{dir: dir}, nil
}

// Dir returns the manifest directory
func (m *Manager) Dir() string {
	return m.dir
}

// validateName checks that the dataset name is safe for use in file paths.
func validateName(name string) error {
	if name == "" || name == "." {
		return ErrInvalidName
	}
	if strings.Contains(name, "..") {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	if strings.ContainsRune(name, '\x00') {
		return ErrInvalidName
	}
	return nil
}

// Path returns the manifest file path of a dataset
func (m *Manager) Path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	path := filepath.Join(m.dir, name+"_manifest.yaml")
	if filepath.Dir(path) != filepath.Clean(m.dir) {
		return "", ErrInvalidName
	}
	return path, nil
}

// Save persists the manifest, replacing the previous version atomically
func (m *Manager) Save(ctx context.Context, manifest *Manifest) error {
	manifest.LastUpdatedAt = time.Now().UTC()

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path, err := m.Path(manifest.Name)
	if err != nil {
		return err
	}

	// Write to a temporary file first, then rename for atomic write
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename manifest file: %w", err)
	}
	return nil
}

// Load reads the manifest of a dataset. It returns nil without error when none exists.
func (m *Manager) Load(ctx context.Context, name string) (*Manifest, error) {
	path, err := m.Path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &manifest, nil
}

// UpdateStep loads a manifest, moves it to step and saves it
func (m *Manager) UpdateStep(ctx context.Context, name string, step Step) error {
	manifest, err := m.Load(ctx, name)
	if err != nil {
		return err
	}
	if manifest == nil {
		return fmt.Errorf("manifest not found for dataset %s", name)
	}
	manifest.Step = step
	return m.Save(ctx, manifest)
}

// RecordError stores err on the manifest of a dataset
func (m *Manager) RecordError(ctx context.Context, manifest *Manifest, err error) error {
	manifest.LastError = err.Error()
	return m.Save(ctx, manifest)
}
