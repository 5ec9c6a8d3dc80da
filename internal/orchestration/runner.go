// Package orchestration drives a benchmark run through its phases:
// validate, capture, evaluate, rank, synthesize, compare, persist. Each
// phase checks that its predecessor completed, so a run record always
// reflects exactly how far the pipeline got.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/restylelab/stylebench/internal/cache"
	"github.com/restylelab/stylebench/internal/capture"
	"github.com/restylelab/stylebench/internal/comparison"
	"github.com/restylelab/stylebench/internal/judge"
	"github.com/restylelab/stylebench/internal/models"
	"github.com/restylelab/stylebench/internal/rubric"
	"github.com/restylelab/stylebench/internal/runstore"
	"github.com/restylelab/stylebench/internal/scoring"
	"github.com/restylelab/stylebench/internal/synthesis"
)

// PhaseTransitionError reports an attempt to run a phase out of order.
type PhaseTransitionError struct {
	Current   models.Phase
	Attempted models.Phase
}

func (e *PhaseTransitionError) Error() string {
	return fmt.Sprintf("cannot run phase %s from phase %s", e.Attempted, e.Current)
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

const (
	EventRunStart      EventType = "run_start"
	EventRunComplete   EventType = "run_complete"
	EventPhaseStart    EventType = "phase_start"
	EventPhaseComplete EventType = "phase_complete"
	EventPairStart     EventType = "pair_start"
	EventPairComplete  EventType = "pair_complete"
	EventPairFailed    EventType = "pair_failed"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType  EventType
	Phase      models.Phase
	Style      string
	PairNum    int
	TotalPairs int
	Details    map[string]any
}

// RunnerOption configures a BenchmarkRunner.
type RunnerOption func(*BenchmarkRunner)

// WithLabel attaches a human-readable label to the run record.
func WithLabel(label string) RunnerOption {
	return func(r *BenchmarkRunner) {
		r.label = label
	}
}

// WithBaselineID pins the comparison baseline instead of using the
// latest prior persisted run.
func WithBaselineID(runID string) RunnerOption {
	return func(r *BenchmarkRunner) {
		r.baselineID = runID
	}
}

// WithVerifyFiles requires captured images to exist on disk.
func WithVerifyFiles() RunnerOption {
	return func(r *BenchmarkRunner) {
		r.verifyFiles = true
	}
}

// WithRubrics overrides the rubric store. The default store only has the
// generic fallback.
func WithRubrics(store *rubric.Store) RunnerOption {
	return func(r *BenchmarkRunner) {
		r.rubrics = store
	}
}

// WithCache reuses cached evaluations for pairs whose judge, rubric, and
// image bytes are unchanged since a previous run.
func WithCache(c *cache.Cache) RunnerOption {
	return func(r *BenchmarkRunner) {
		r.evalCache = c
	}
}

// BenchmarkRunner executes one benchmark run end to end.
type BenchmarkRunner struct {
	spec     *models.RunSpec
	specPath string
	store    *runstore.Store

	technical  judge.Judge
	preference judge.Judge
	rubrics    *rubric.Store

	label       string
	baselineID  string
	verifyFiles bool
	evalCache   *cache.Cache

	run *models.RunRecord

	// evalMu guards the run record's evaluation and failure lists during
	// the concurrent evaluate phase. Both lists are append-only.
	evalMu sync.Mutex

	// preferenceRanks carries the preference judge's output from the rank
	// phase into synthesis.
	preferenceRanks map[string]int

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// NewBenchmarkRunner creates a runner for one run of the given spec.
func NewBenchmarkRunner(spec *models.RunSpec, specPath string, store *runstore.Store, technical, preference judge.Judge, opts ...RunnerOption) *BenchmarkRunner {
	r := &BenchmarkRunner{
		spec:       spec,
		specPath:   specPath,
		store:      store,
		technical:  technical,
		preference: preference,
		rubrics:    rubric.NewStore(),
		listeners:  []ProgressListener{},
		run: &models.RunRecord{
			RunID:     uuid.NewString(),
			StartedAt: time.Now().UTC(),
			Phase:     models.PhasePending,
			SpecPath:  specPath,
		},
	}
	for _, o := range opts {
		o(r)
	}
	r.run.Label = r.label
	return r
}

// OnProgress registers a progress listener
func (r *BenchmarkRunner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *BenchmarkRunner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run returns the run record in its current state.
func (r *BenchmarkRunner) Run() *models.RunRecord {
	return r.run
}

// advance checks the phase ordering and moves the run forward. Persist is
// the one phase that may repeat, so re-entering it is not a transition
// error.
func (r *BenchmarkRunner) advance(target models.Phase) error {
	current := models.PhaseIndex(r.run.Phase)
	next := models.PhaseIndex(target)

	if target == models.PhasePersisted {
		// Persist runs after synthesize, after compare, or as a retry.
		switch r.run.Phase {
		case models.PhaseSynthesized, models.PhaseCompared, models.PhasePersisted:
			r.run.Phase = target
			return nil
		}
		return &PhaseTransitionError{Current: r.run.Phase, Attempted: target}
	}

	if next != current+1 {
		return &PhaseTransitionError{Current: r.run.Phase, Attempted: target}
	}
	r.run.Phase = target
	return nil
}

func (r *BenchmarkRunner) phaseGate(target models.Phase) error {
	// Probe without mutating: advance mutates on success, so check first.
	saved := r.run.Phase
	if err := r.advance(target); err != nil {
		return err
	}
	r.run.Phase = saved
	return nil
}

func (r *BenchmarkRunner) completePhase(target models.Phase) {
	_ = r.advance(target)
	r.notifyProgress(ProgressEvent{EventType: EventPhaseComplete, Phase: target})
}

// Execute drives all phases in order. The comparison phase is skipped
// when no baseline exists; everything else must succeed.
func (r *BenchmarkRunner) Execute(ctx context.Context) (*models.RunRecord, error) {
	r.notifyProgress(ProgressEvent{EventType: EventRunStart})

	if err := r.Validate(ctx); err != nil {
		return r.run, err
	}
	if err := r.Capture(ctx); err != nil {
		return r.run, err
	}
	if err := r.Evaluate(ctx); err != nil {
		return r.run, err
	}
	if err := r.RankPreferences(ctx); err != nil {
		return r.run, err
	}
	if err := r.Synthesize(ctx); err != nil {
		return r.run, err
	}

	if err := r.Compare(ctx); err != nil {
		if !errors.Is(err, runstore.ErrNoBaseline) {
			return r.run, err
		}
		slog.Info("no baseline run available, skipping comparison", "run_id", r.run.RunID)
	}

	if err := r.Persist(ctx); err != nil {
		return r.run, err
	}

	r.notifyProgress(ProgressEvent{EventType: EventRunComplete})
	return r.run, nil
}

// Validate checks the spec and the judges before any work starts.
func (r *BenchmarkRunner) Validate(ctx context.Context) error {
	if err := r.phaseGate(models.PhaseValidated); err != nil {
		return err
	}
	r.notifyProgress(ProgressEvent{EventType: EventPhaseStart, Phase: models.PhaseValidated})

	if err := r.spec.Validate(); err != nil {
		return fmt.Errorf("spec validation: %w", err)
	}
	if r.technical == nil || r.preference == nil {
		return fmt.Errorf("both judges must be configured")
	}

	r.completePhase(models.PhaseValidated)
	return nil
}

// Capture loads the pair manifest into the run record.
func (r *BenchmarkRunner) Capture(ctx context.Context) error {
	if err := r.phaseGate(models.PhaseCaptured); err != nil {
		return err
	}
	r.notifyProgress(ProgressEvent{EventType: EventPhaseStart, Phase: models.PhaseCaptured})

	pairs, err := capture.LoadManifest(r.spec.ResolveManifestPath(r.specPath), capture.Options{
		ImageRoot:   r.spec.Capture.ImageRoot,
		Styles:      r.spec.Capture.Styles,
		VerifyFiles: r.verifyFiles,
	})
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}

	r.run.Pairs = pairs
	slog.Debug("captured image pairs", "run_id", r.run.RunID, "pairs", len(pairs))

	r.completePhase(models.PhaseCaptured)
	return nil
}

// Evaluate grades every captured pair with the technical judge. Pairs are
// graded concurrently up to the configured worker count. A judge failure
// on one pair is recorded and does not stop the others, but a run where
// every pair failed is an error.
func (r *BenchmarkRunner) Evaluate(ctx context.Context) error {
	if err := r.phaseGate(models.PhaseEvaluated); err != nil {
		return err
	}
	r.notifyProgress(ProgressEvent{EventType: EventPhaseStart, Phase: models.PhaseEvaluated})

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.spec.Evaluation.Workers)

	total := len(r.run.Pairs)
	for i, pair := range r.run.Pairs {
		group.Go(func() error {
			r.notifyProgress(ProgressEvent{
				EventType:  EventPairStart,
				Phase:      models.PhaseEvaluated,
				Style:      pair.Style,
				PairNum:    i + 1,
				TotalPairs: total,
			})

			rec, err := r.evaluatePair(groupCtx, pair)
			if err != nil {
				// Context errors abort the whole batch; judge errors only
				// fail this pair.
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}

				r.evalMu.Lock()
				r.run.Failures = append(r.run.Failures, models.EvaluationFailure{
					OriginalImage: pair.OriginalImage,
					StyledImage:   pair.StyledImage,
					Style:         pair.Style,
					Err:           err.Error(),
				})
				r.evalMu.Unlock()

				slog.Warn("pair evaluation failed",
					"run_id", r.run.RunID,
					"style", pair.Style,
					"styled_image", pair.StyledImage,
					"error", err)
				r.notifyProgress(ProgressEvent{
					EventType:  EventPairFailed,
					Phase:      models.PhaseEvaluated,
					Style:      pair.Style,
					PairNum:    i + 1,
					TotalPairs: total,
					Details:    map[string]any{"error": err.Error()},
				})
				return nil
			}

			r.evalMu.Lock()
			r.run.Evaluations = append(r.run.Evaluations, *rec)
			r.evalMu.Unlock()

			r.notifyProgress(ProgressEvent{
				EventType:  EventPairComplete,
				Phase:      models.PhaseEvaluated,
				Style:      pair.Style,
				PairNum:    i + 1,
				TotalPairs: total,
				Details: map[string]any{
					"percentage": rec.Percentage,
					"grade":      string(rec.Grade),
				},
			})
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	if len(r.run.Evaluations) == 0 {
		return fmt.Errorf("all %d pair evaluations failed", total)
	}

	r.completePhase(models.PhaseEvaluated)
	return nil
}

func (r *BenchmarkRunner) evaluatePair(ctx context.Context, pair models.CapturedPair) (*models.EvaluationRecord, error) {
	timeout := time.Duration(r.spec.Evaluation.TimeoutSec) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rub, _ := r.rubrics.Lookup(pair.Style)

	var cacheKey string
	if r.evalCache != nil {
		key, err := cache.Key(r.technical.Name(), rub, pair)
		if err != nil {
			slog.Warn("cache key failed, evaluating without cache", "style", pair.Style, "error", err)
		} else if rec, ok := r.evalCache.Get(key); ok {
			slog.Debug("evaluation cache hit", "style", pair.Style, "styled_image", pair.StyledImage)
			// A cache hit is still a fresh evaluation of this run
			rec.EvaluationID = uuid.NewString()
			rec.Timestamp = time.Now().UTC()
			rec.OriginalImage = pair.OriginalImage
			rec.StyledImage = pair.StyledImage
			rec.Style = pair.Style
			return rec, nil
		} else {
			cacheKey = key
		}
	}

	jp, err := loadPair(pair)
	if err != nil {
		return nil, err
	}

	results, err := r.technical.Evaluate(ctx, jp, rub)
	if err != nil {
		return nil, err
	}

	rec, err := scoring.Score(rub, results)
	if err != nil {
		return nil, err
	}

	rec.EvaluationID = uuid.NewString()
	rec.Timestamp = time.Now().UTC()
	rec.OriginalImage = pair.OriginalImage
	rec.StyledImage = pair.StyledImage
	rec.Style = pair.Style

	if r.evalCache != nil && cacheKey != "" {
		if err := r.evalCache.Put(cacheKey, rec); err != nil {
			slog.Warn("failed to cache evaluation", "style", pair.Style, "error", err)
		}
	}
	return rec, nil
}

func loadPair(pair models.CapturedPair) (judge.Pair, error) {
	original, originalType, err := capture.ReadImage(pair.OriginalImage)
	if err != nil {
		return judge.Pair{}, err
	}
	styled, styledType, err := capture.ReadImage(pair.StyledImage)
	if err != nil {
		return judge.Pair{}, err
	}
	return judge.Pair{
		Style:             pair.Style,
		OriginalImage:     original,
		OriginalMediaType: originalType,
		StyledImage:       styled,
		StyledMediaType:   styledType,
	}, nil
}

// RankPreferences asks the preference judge to rank the styles that were
// successfully evaluated. One styled image per style, the first captured
// pair of that style, is used as the sample.
func (r *BenchmarkRunner) RankPreferences(ctx context.Context) error {
	if err := r.phaseGate(models.PhaseRanked); err != nil {
		return err
	}
	r.notifyProgress(ProgressEvent{EventType: EventPhaseStart, Phase: models.PhaseRanked})

	timeout := time.Duration(r.spec.Evaluation.TimeoutSec) * time.Second
	rankCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	samples, err := r.styleSamples()
	if err != nil {
		return err
	}

	ranks, err := r.preference.Rank(rankCtx, samples)
	if err != nil {
		return fmt.Errorf("preference ranking: %w", err)
	}
	r.preferenceRanks = ranks

	r.completePhase(models.PhaseRanked)
	return nil
}

// styleSamples picks one styled image per evaluated style. Styles whose
// every pair failed evaluation are excluded; ranking them would leak
// unscored styles into synthesis.
func (r *BenchmarkRunner) styleSamples() ([]judge.StyleSample, error) {
	evaluated := map[string]bool{}
	for _, e := range r.run.Evaluations {
		evaluated[e.Style] = true
	}

	var samples []judge.StyleSample
	seen := map[string]bool{}
	for _, pair := range r.run.Pairs {
		if !evaluated[pair.Style] || seen[pair.Style] {
			continue
		}
		seen[pair.Style] = true

		img, mediaType, err := capture.ReadImage(pair.StyledImage)
		if err != nil {
			return nil, err
		}
		samples = append(samples, judge.StyleSample{
			Style:     pair.Style,
			Image:     img,
			MediaType: mediaType,
		})
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("no styles available to rank")
	}
	return samples, nil
}

// Synthesize blends the technical and preference rankings into the final
// ordering and records the winner.
func (r *BenchmarkRunner) Synthesize(ctx context.Context) error {
	if err := r.phaseGate(models.PhaseSynthesized); err != nil {
		return err
	}
	r.notifyProgress(ProgressEvent{EventType: EventPhaseStart, Phase: models.PhaseSynthesized})

	technical := synthesis.TechnicalRankings(r.run.StyleAverages())

	entries, err := synthesis.Blend(technical, r.preferenceRanks,
		r.spec.Synthesis.FeasibilityWeight, r.spec.Synthesis.PreferenceWeight)
	if err != nil {
		return fmt.Errorf("synthesis: %w", err)
	}

	r.run.Rankings = entries
	if len(entries) > 0 {
		r.run.Winner = entries[0].Style
	}

	r.completePhase(models.PhaseSynthesized)
	return nil
}

// Compare runs baseline regression detection. Without an explicit
// baseline id the latest prior persisted run is used; if none exists the
// phase returns runstore.ErrNoBaseline and the run may proceed to
// persist.
func (r *BenchmarkRunner) Compare(ctx context.Context) error {
	if err := r.phaseGate(models.PhaseCompared); err != nil {
		return err
	}
	r.notifyProgress(ProgressEvent{EventType: EventPhaseStart, Phase: models.PhaseCompared})

	var baseline *models.RunRecord
	var err error
	if r.baselineID != "" {
		baseline, err = r.store.Load(r.baselineID)
	} else if r.spec.Comparison.BaselineRunID != "" {
		baseline, err = r.store.Load(r.spec.Comparison.BaselineRunID)
	} else {
		baseline, err = r.store.FindLatestPrior(r.run)
	}
	if err != nil {
		return err
	}

	r.run.Comparison = comparison.Compare(baseline, r.run, r.spec.Comparison.Epsilon)
	r.run.BaselineID = baseline.RunID

	slog.Info("baseline comparison complete",
		"run_id", r.run.RunID,
		"baseline_id", baseline.RunID,
		"verdict", string(r.run.Comparison.Verdict))

	r.completePhase(models.PhaseCompared)
	return nil
}

// Persist writes the run record to the store. Persist is freely
// retryable: a failed write leaves the record unchanged and a later call
// overwrites whatever partial state exists.
func (r *BenchmarkRunner) Persist(ctx context.Context) error {
	if err := r.phaseGate(models.PhasePersisted); err != nil {
		return err
	}
	r.notifyProgress(ProgressEvent{EventType: EventPhaseStart, Phase: models.PhasePersisted})

	retrying := r.run.Phase == models.PhasePersisted
	if err := r.advance(models.PhasePersisted); err != nil {
		return err
	}
	r.run.FinishedAt = time.Now().UTC()

	if err := r.store.Save(r.run, retrying); err != nil {
		if errors.Is(err, runstore.ErrRunAlreadyExists) {
			return err
		}
		// Leave the phase at persisted so a retry passes the gate, but
		// surface the write failure.
		return fmt.Errorf("persist: %w", err)
	}

	r.notifyProgress(ProgressEvent{EventType: EventPhaseComplete, Phase: models.PhasePersisted})
	return nil
}
