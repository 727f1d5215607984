package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// The PCA panel consumes a static JSON fixture produced by the offline
// `precompute` subcommand. The fixture is read at most once per process and
// memoized; concurrent callers share a single in-flight read.

const (
	fixtureSchemaVersion = 1
	fixtureFileName      = "pca_fixture.json"
)

// pcaPresets are the allowed compression ranks, shared between the offline
// job and the live panel.
var pcaPresets = []int{6, 12, 20, 30}

type FixtureMeta struct {
	Dataset     string `json:"dataset"`
	TrainCount  int    `json:"train_count"`
	TestCount   int    `json:"test_count"`
	ImageSize   int    `json:"image_size"`
	GeneratedAt string `json:"generated_at"`
}

// FixtureSample is one held-out digit with its reconstruction at every
// preset rank (Recons is indexed like Presets).
type FixtureSample struct {
	Label    int         `json:"label"`
	Original []float64   `json:"original"`
	Recons   [][]float64 `json:"recons"`
}

type ScatterPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label int     `json:"label"`
}

// PCAFixture is the precompute job's entire output contract. The live app
// accesses fields optimistically; a missing field is a producer defect.
type PCAFixture struct {
	SchemaVersion      int             `json:"schema_version"`
	Meta               FixtureMeta     `json:"meta"`
	Mean               []float64       `json:"mean"`
	Presets            []int           `json:"presets"`
	Samples            []FixtureSample `json:"samples"`
	Scatter            []ScatterPoint  `json:"scatter"`
	Components         [][]float64     `json:"components"`
	ComponentStd       []float64       `json:"component_std"`
	ExplainedVariance  []float64       `json:"explained_variance"`
	CumulativeVariance []float64       `json:"cumulative_variance"`
	KNNAccuracy        []float64       `json:"knn_accuracy"`
}

type fixtureState int

const (
	fixtureUninitialized fixtureState = iota
	fixtureLoading
	fixtureReady
	fixtureFailed
)

// fixtureLoader memoizes the fixture with an explicit lifecycle:
// uninitialized -> loading -> ready | failed -> loading (on the next call).
// A failed load never sticks; a successful one never re-reads.
type fixtureLoader struct {
	mu      sync.Mutex
	state   fixtureState
	fixture *PCAFixture
	err     error
	done    chan struct{}

	// read is injectable for tests; defaults to reading the static file.
	read func() ([]byte, error)
}

var fixture = newFixtureLoader(nil)

func newFixtureLoader(read func() ([]byte, error)) *fixtureLoader {
	if read == nil {
		read = func() ([]byte, error) {
			return os.ReadFile(filepath.Join(staticDir(), fixtureFileName))
		}
	}
	return &fixtureLoader{read: read}
}

// Load returns the cached fixture, joins an in-flight read, or starts a new
// one. Errors are returned, never thrown; the caller renders them.
func (l *fixtureLoader) Load() (*PCAFixture, error) {
	l.mu.Lock()
	switch l.state {
	case fixtureReady:
		f := l.fixture
		l.mu.Unlock()
		return f, nil
	case fixtureLoading:
		done := l.done
		l.mu.Unlock()
		<-done
		return l.snapshot()
	}

	// uninitialized or failed: this caller performs the read.
	l.state = fixtureLoading
	l.done = make(chan struct{})
	done := l.done
	read := l.read
	l.mu.Unlock()

	f, err := parseFixture(read)

	l.mu.Lock()
	if err != nil {
		l.state = fixtureFailed
		l.fixture = nil
		l.err = err
	} else {
		l.state = fixtureReady
		l.fixture = f
		l.err = nil
	}
	close(done)
	l.mu.Unlock()
	return f, err
}

func (l *fixtureLoader) snapshot() (*PCAFixture, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fixture, l.err
}

func parseFixture(read func() ([]byte, error)) (*PCAFixture, error) {
	data, err := read()
	if err != nil {
		return nil, fmt.Errorf("fixture read: %w", err)
	}
	var f PCAFixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("fixture parse: %w", err)
	}
	if f.SchemaVersion != fixtureSchemaVersion {
		// Producer and consumer normally upgrade together; serve it anyway.
		log.Printf("pca fixture schema version %d, expected %d", f.SchemaVersion, fixtureSchemaVersion)
	}
	return &f, nil
}
