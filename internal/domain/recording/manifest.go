package recording

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devbydaniel/voicerec/internal/audio"
)

// ErrNoManifest means no recovery manifest exists for a session.
var ErrNoManifest = errors.New("no recovery manifest for session")

// Manifest records what is needed to retry a failed stitch.
type Manifest struct {
	SessionID     string      `yaml:"session_id"`
	Destination   string      `yaml:"destination"`
	Codec         audio.Codec `yaml:"codec"`
	Segments      []Segment   `yaml:"segments"`
	Interruptions int         `yaml:"interruptions"`
	StartedAt     time.Time   `yaml:"started_at"`
	StoppedAt     time.Time   `yaml:"stopped_at"`
	Error         string      `yaml:"error,omitempty"`
}

// ManifestStore keeps one YAML file per session in Dir.
type ManifestStore struct {
	Dir string
}

func (m *ManifestStore) path(sessionID string) string {
	return filepath.Join(m.Dir, sessionID+".yaml")
}

// Save writes the manifest through a temp file so readers never see a
// partial document.
func (m *ManifestStore) Save(man *Manifest) error {
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	data, err := yaml.Marshal(man)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	tmp, err := os.CreateTemp(m.Dir, ".manifest-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), m.path(man.SessionID))
}

func (m *ManifestStore) Load(sessionID string) (*Manifest, error) {
	data, err := os.ReadFile(m.path(sessionID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", sessionID, ErrNoManifest)
	}
	if err != nil {
		return nil, err
	}
	var man Manifest
	if err := yaml.Unmarshal(data, &man); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", sessionID, err)
	}
	return &man, nil
}

func (m *ManifestStore) Remove(sessionID string) error {
	err := os.Remove(m.path(sessionID))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// List returns the session ids that have a manifest.
func (m *ManifestStore) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(m.Dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, p := range matches {
		ids = append(ids, filepath.Base(p[:len(p)-len(".yaml")]))
	}
	return ids, nil
}

// ManifestFromError builds a manifest for a failed stop.
func ManifestFromError(res *Result, se *StitchError) *Manifest {
	return &Manifest{
		SessionID:     res.SessionID,
		Destination:   se.Destination,
		Codec:         res.Codec,
		Segments:      se.Segments,
		Interruptions: res.Interruptions,
		StartedAt:     res.StartedAt,
		StoppedAt:     res.StoppedAt,
		Error:         se.Err.Error(),
	}
}
