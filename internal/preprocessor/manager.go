package preprocessor

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gigersam/nidspipe/internal/minilog"
)

// State is the bundle lifecycle state (§4.10): NoBundle -> BundleReady
// on a successful fit or load; BundleReady -> NoBundle if a reload hits
// structural corruption.
type State int

const (
	NoBundle State = iota
	BundleReady
)

func (s State) String() string {
	if s == BundleReady {
		return "BundleReady"
	}
	return "NoBundle"
}

// ErrBundleInvalid is returned when a persisted bundle exists but fails
// structural validation.
var ErrBundleInvalid = errors.New("preprocessor bundle invalid")

// Manager owns the on-disk bundle path and the currently loaded Bundle,
// if any.
type Manager struct {
	Path   string
	bundle *Bundle
	state  State
}

// NewManager creates a Manager bound to path, starting in NoBundle.
func NewManager(path string) *Manager {
	return &Manager{Path: path, state: NoBundle}
}

// State reports the current lifecycle state.
func (m *Manager) State() State { return m.state }

// Bundle returns the loaded bundle, or nil if not in BundleReady.
func (m *Manager) Bundle() *Bundle {
	if m.state != BundleReady {
		return nil
	}
	return m.bundle
}

// Load reads the bundle from Path. A missing file leaves the manager in
// NoBundle without error (the caller decides whether to fit from
// scratch); a structurally invalid file also drops to NoBundle but
// returns ErrBundleInvalid so the caller can log it.
func (m *Manager) Load() error {
	f, err := os.Open(m.Path)
	if os.IsNotExist(err) {
		m.state = NoBundle
		return nil
	}
	if err != nil {
		m.state = NoBundle
		return fmt.Errorf("%w: %v", ErrBundleInvalid, err)
	}
	defer f.Close()

	var b Bundle
	if err := gob.NewDecoder(f).Decode(&b); err != nil {
		m.state = NoBundle
		return fmt.Errorf("%w: %v", ErrBundleInvalid, err)
	}

	if !b.Valid() {
		m.state = NoBundle
		return ErrBundleInvalid
	}

	m.bundle = &b
	m.state = BundleReady
	minilog.Info("preprocessor: loaded bundle from %s (%d features)", m.Path, len(b.Schema.All))
	return nil
}

// Save persists b atomically (write-temp-then-rename) and transitions
// the manager to BundleReady.
func (m *Manager) Save(b *Bundle) error {
	dir := filepath.Dir(m.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create models directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(m.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp bundle file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := gob.NewEncoder(tmp).Encode(b); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp bundle file: %w", err)
	}
	if err := os.Rename(tmpPath, m.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename bundle into place: %w", err)
	}

	m.bundle = b
	m.state = BundleReady
	minilog.Info("preprocessor: saved bundle to %s", m.Path)
	return nil
}
