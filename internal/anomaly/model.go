// Package anomaly scores request feature vectors with an isolation forest
// trained on synthetic benign traffic.
package anomaly

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/logger"
)

var (
	ErrNotTrained        = errors.New("anomaly model is not trained")
	ErrDimensionMismatch = errors.New("feature vector has wrong dimension")
	ErrInvalidConfig     = errors.New("invalid training configuration")
)

// Config holds the training parameters.
type Config struct {
	Trees         int
	SampleSize    int
	Samples       int
	Contamination float64
	Seed          int64
}

// DefaultConfig mirrors the detector the honeypot ships with.
func DefaultConfig() Config {
	return Config{
		Trees:         200,
		SampleSize:    256,
		Samples:       3000,
		Contamination: 0.02,
		Seed:          42,
	}
}

func (c Config) validate() error {
	if c.Trees <= 0 || c.SampleSize <= 1 || c.Samples <= 1 {
		return fmt.Errorf("%w: trees, sample size and samples must be positive", ErrInvalidConfig)
	}
	if c.Contamination <= 0 || c.Contamination >= 0.5 {
		return fmt.Errorf("%w: contamination %.3f outside (0, 0.5)", ErrInvalidConfig, c.Contamination)
	}
	return nil
}

// Model is the trained scoring artifact. It is immutable once built or
// loaded and safe for concurrent use.
type Model struct {
	Features      []string  `json:"features"`
	Contamination float64   `json:"contamination"`
	Threshold     float64   `json:"threshold"`
	TrainedAt     time.Time `json:"trained_at"`
	Forest        *Forest   `json:"forest"`
}

// Train fits a model on SyntheticTraffic drawn from cfg.Seed.
func Train(cfg Config) (*Model, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	return Fit(SyntheticTraffic(cfg.Samples, rng), cfg, rng)
}

// Fit trains on caller-provided rows, e.g. historical traffic exported from
// the forensic log. The decision threshold is placed so that the configured
// contamination fraction of the training rows scores as anomalous.
func Fit(X [][]float64, cfg Config, rng *rand.Rand) (*Model, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(X) < 2 {
		return nil, fmt.Errorf("%w: need at least two rows", ErrInvalidConfig)
	}
	for _, row := range X {
		if len(row) != len(FeatureNames) {
			return nil, ErrDimensionMismatch
		}
	}

	forest := fitForest(X, cfg.Trees, cfg.SampleSize, rng)
	scores := make([]float64, len(X))
	for i, row := range X {
		scores[i] = forest.Score(row)
	}

	return &Model{
		Features:      append([]string(nil), FeatureNames...),
		Contamination: cfg.Contamination,
		Threshold:     quantile(scores, 1-cfg.Contamination),
		TrainedAt:     time.Now().UTC(),
		Forest:        forest,
	}, nil
}

// quantile uses linear interpolation between closest ranks.
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Score returns the raw isolation score of x.
func (m *Model) Score(x []float64) (float64, error) {
	if m == nil || m.Forest == nil || len(m.Forest.Trees) == 0 {
		return 0, ErrNotTrained
	}
	if len(x) != m.Forest.Dims {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x), m.Forest.Dims)
	}
	return m.Forest.Score(x), nil
}

// Predict reports whether x is an outlier relative to the training data.
func (m *Model) Predict(x []float64) (bool, error) {
	s, err := m.Score(x)
	if err != nil {
		return false, err
	}
	return s > m.Threshold, nil
}

// Save writes the artifact atomically so a crash never leaves a torn file.
func (m *Model) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure model directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*.json")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close model: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("install model: %w", err)
	}
	return nil
}

// Load reads an artifact previously written by Save.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if m.Forest == nil || len(m.Forest.Trees) == 0 {
		return nil, ErrNotTrained
	}
	if m.Forest.Dims != len(FeatureNames) {
		return nil, ErrDimensionMismatch
	}
	return &m, nil
}

// LoadOrTrain loads the artifact at path, retraining synchronously and
// persisting the result when it is missing or unreadable. The returned flag
// reports whether a retrain happened.
func LoadOrTrain(path string, cfg Config) (*Model, bool, error) {
	m, err := Load(path)
	if err == nil {
		logger.Log().WithField("path", path).Info("loaded anomaly model")
		return m, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		logger.Log().WithError(err).WithField("path", path).Warn("anomaly model unreadable, retraining")
	}

	logger.Log().Info("training isolation forest on synthetic traffic")
	m, err = Train(cfg)
	if err != nil {
		return nil, false, fmt.Errorf("train model: %w", err)
	}
	if err := m.Save(path); err != nil {
		// a model that only lives in memory still serves this process
		logger.Log().WithError(err).WithField("path", path).Error("failed to persist anomaly model")
	} else {
		logger.Log().WithField("path", path).Info("anomaly model trained and saved")
	}
	return m, true, nil
}
