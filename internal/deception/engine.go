// Package deception turns inbound honeypot requests into verdicts: blocklist
// gate, feature extraction, anomaly scoring and the decoy policy.
package deception

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/logger"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/metrics"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/util"
)

// DefaultEvalTimeout bounds a single evaluation's store and decoy calls.
const DefaultEvalTimeout = 2 * time.Second

// Request is what the engine needs from an inbound interaction.
type Request struct {
	Method    string
	Path      string
	UserAgent string
	Body      Body
	// BaseURL is the externally visible service root, used to make decoy
	// references absolute. May be empty.
	BaseURL string
}

// Detector scores a model input vector. *anomaly.Model satisfies it.
type Detector interface {
	Predict(x []float64) (bool, error)
}

// DecoySource authors the artifacts served to anomalous sources.
// *decoy.Generator satisfies it.
type DecoySource interface {
	RegenerateCredentialBundle(ctx context.Context) (string, error)
	Name() string
	FabricatedRow(id int) map[string]any
}

// Store is the storage collaborator the engine reads through.
type Store interface {
	LogCounter
	BlockChecker
}

// EngineConfig tunes an Engine. Zero values select the defaults.
type EngineConfig struct {
	RateWindow  time.Duration
	EvalTimeout time.Duration
}

// Engine is the deception decision engine. It is safe for concurrent use;
// the detector is shared read-only across evaluations.
type Engine struct {
	gate      *Gate
	extractor *Extractor
	detector  Detector
	decoys    DecoySource
	timeout   time.Duration
}

// NewEngine wires an engine from its collaborators. A nil detector scores
// everything as normal; a nil decoy source yields no profile names or decoys.
func NewEngine(store Store, detector Detector, decoys DecoySource, cfg EngineConfig) *Engine {
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = DefaultWindow
	}
	if cfg.EvalTimeout <= 0 {
		cfg.EvalTimeout = DefaultEvalTimeout
	}
	return &Engine{
		gate:      NewGate(store),
		extractor: NewExtractor(NewRateTracker(store), cfg.RateWindow),
		detector:  detector,
		decoys:    decoys,
		timeout:   cfg.EvalTimeout,
	}
}

type decideOptions struct {
	purpose     string
	sqlOverride string
	fabricate   bool
}

// DecideOption adjusts one evaluation for the endpoint calling it.
type DecideOption func(*decideOptions)

// WithPurpose sets the profile purpose label for anomalous verdicts.
func WithPurpose(purpose string) DecideOption {
	return func(o *decideOptions) { o.purpose = purpose }
}

// WithSQLOverride ORs a SQL signature match on text into the feature
// vector before scoring. Query endpoints pass their free-text parameter.
func WithSQLOverride(text string) DecideOption {
	return func(o *decideOptions) { o.sqlOverride = text }
}

// WithFabricatedRows makes an anomalous SELECT-shaped query return one fake
// row alongside the decoy.
func WithFabricatedRows() DecideOption {
	return func(o *decideOptions) { o.fabricate = true }
}

// Decide evaluates req from sourceID. It always returns a Verdict; no
// collaborator failure escapes.
func (e *Engine) Decide(ctx context.Context, req Request, sourceID string, opts ...DecideOption) Verdict {
	o := decideOptions{purpose: PurposeSuspicious}
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if e.gate.IsBlocked(ctx, sourceID) {
		metrics.IncEvaluation(metrics.OutcomeBlocked)
		return Verdict{Blocked: true}
	}

	fv, payload, err := e.extractor.extract(ctx, req, sourceID)
	if err != nil {
		logger.ForSource("extractor", sourceID).WithError(err).Debug("body treated as raw text")
	}
	if HasSQLSignature(o.sqlOverride) {
		fv.SQLSignatureFlag = 1
	}

	v := Verdict{Features: fv, Payload: payload.Text}
	v.IsAnomaly = e.classify(sourceID, fv)
	if !v.IsAnomaly {
		metrics.IncEvaluation(metrics.OutcomeNormal)
		return v
	}
	metrics.IncEvaluation(metrics.OutcomeAnomaly)

	if e.decoys == nil {
		return v
	}
	v.Profile = &DeceptionProfile{Name: e.decoys.Name(), Purpose: o.purpose}
	ref, err := e.decoys.RegenerateCredentialBundle(ctx)
	metrics.IncDecoyRegeneration(err == nil)
	if err != nil {
		logger.ForSource("engine", sourceID).WithError(err).Warn("decoy regeneration failed, answering without decoy")
	} else {
		v.DecoyReference = absoluteRef(req.BaseURL, ref)
	}
	if o.fabricate && strings.Contains(strings.ToUpper(o.sqlOverride), "SELECT") {
		v.FabricatedRows = []map[string]any{e.decoys.FabricatedRow(1)}
	}
	logger.ForSource("engine", sourceID).WithFields(logrus.Fields{
		"path":    util.SanitizeForLog(req.Path),
		"purpose": o.purpose,
		"decoy":   v.DecoyReference,
	}).Info("anomalous request, serving decoy")
	return v
}

// classify runs the detector. Any error or panic scores as normal so the
// honeypot keeps answering and quietly logging.
func (e *Engine) classify(sourceID string, fv FeatureVector) (anomalous bool) {
	if e.detector == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			metrics.IncModelFailure()
			logger.ForSource("model", sourceID).WithError(fmt.Errorf("panic: %v", r)).Error("anomaly model panicked")
			anomalous = false
		}
	}()
	anomalous, err := e.detector.Predict(fv.Slice())
	if err != nil {
		metrics.IncModelFailure()
		logger.ForSource("model", sourceID).WithError(err).Warn("anomaly model failed, scoring as normal")
		return false
	}
	return anomalous
}

func absoluteRef(baseURL, ref string) string {
	if ref == "" || baseURL == "" || strings.Contains(ref, "://") {
		return ref
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}
