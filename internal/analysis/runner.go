package analysis

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-simeval/internal/evaluation"
	"github.com/nerrad567/gray-logic-simeval/internal/metrics"
	"github.com/nerrad567/gray-logic-simeval/internal/movement"
	"github.com/nerrad567/gray-logic-simeval/internal/occupancy"
	"github.com/nerrad567/gray-logic-simeval/internal/rules"
	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
	"github.com/nerrad567/gray-logic-simeval/internal/topology"
)

// Pipeline stage names, used as the metrics error label and in log lines.
const (
	StageLoad       = "load"
	StageWaypoints  = "waypoints"
	StageSynthesize = "synthesize"
	StageRules      = "rules"
	StageAggregate  = "aggregate"
	StageReport     = "report"
	StagePersist    = "persist"
	StageExport     = "export"
)

// Exporter publishes a finished run.
type Exporter interface {
	Export(ctx context.Context, run *evaluation.Run) error
}

// Recorder receives pipeline metrics.
type Recorder interface {
	RecordRun(s metrics.RunStats)
	RecordError(stage string)
}

// Logger is the logging interface used by the runner.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

type noopRecorder struct{}

func (noopRecorder) RecordRun(metrics.RunStats) {}
func (noopRecorder) RecordError(string)         {}

// Config holds the required inputs of a Runner.
type Config struct {
	// Building supplies sensors for occupancy synthesis.
	Building *topology.Building

	// Profile is the power-draw model used by the aggregator.
	Profile evaluation.Profile

	// ReportDir is an existing directory receiving report artifacts.
	ReportDir string

	// JitterMax bounds the offset of synthesized occupancy messages.
	JitterMax time.Duration

	// Seed fixes the jitter sequence of every run. Zero seeds each run
	// randomly.
	Seed uint64

	// Rules is the lighting rule engine. Nil skips the rules stage.
	Rules *rules.Engine
}

// Input selects the timeline of one run.
type Input struct {
	// Events, when non-empty, is used instead of TimelineFile.
	Events []timeline.Event

	// TimelineFile is a JSON event list exported by the simulator.
	TimelineFile string

	// ItineraryFile is an optional YAML waypoint table. When empty,
	// waypoints come from the timeline's Move events.
	ItineraryFile string
}

// Result describes a completed run.
type Result struct {
	RunID      string
	Report     *evaluation.Report
	ReportPath string

	EventCount       int
	SynthesizedCount int
	ReplacedCount    int
	RuleEventCount   int
	Duration         time.Duration
}

// Runner executes the analysis pipeline. It is safe for concurrent use;
// each Run works on its own timeline.
type Runner struct {
	cfg       Config
	timelines timeline.Repository
	runs      evaluation.Repository
	exporter  Exporter
	recorder  Recorder
	logger    Logger
	now       func() time.Time
	newID     func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimelineRepository stores the final timeline of every run.
func WithTimelineRepository(repo timeline.Repository) Option {
	return func(r *Runner) { r.timelines = repo }
}

// WithRunRepository stores the summary and breakdown of every run.
func WithRunRepository(repo evaluation.Repository) Option {
	return func(r *Runner) { r.runs = repo }
}

// WithExporter publishes every run after it is stored.
func WithExporter(e Exporter) Option {
	return func(r *Runner) { r.exporter = e }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock sets the source of report generation times.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithIDGenerator sets the source of run ids.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) { r.newID = fn }
}

// NewRunner creates a runner.
//
// Parameters:
//   - cfg: Building and ReportDir are required
//   - opts: Optional collaborators
//
// Returns:
//   - *Runner: Runner ready for use
//   - error: ErrInvalidConfig (wrapped) when a required field is missing
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	var problems []error
	if cfg.Building == nil {
		problems = append(problems, errors.New("building is required"))
	}
	if cfg.ReportDir == "" {
		problems = append(problems, errors.New("report directory is required"))
	}
	if cfg.JitterMax < 0 {
		problems = append(problems, errors.New("jitter bound must not be negative"))
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(problems...))
	}

	r := &Runner{
		cfg:      cfg,
		recorder: noopRecorder{},
		logger:   noopLogger{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes the pipeline once.
//
// Parameters:
//   - ctx: Checked between stages and passed to persistence and export
//   - in: Timeline and itinerary selection
//
// Returns:
//   - *Result: Report, artifact path and stage counts
//   - error: The first failing stage, wrapped with its name
func (r *Runner) Run(ctx context.Context, in Input) (*Result, error) {
	started := time.Now()
	res := &Result{RunID: r.newID()}
	log := stageLogger{Logger: r.logger, runID: res.RunID}

	tl, source, err := r.load(in)
	if err != nil {
		return nil, r.fail(StageLoad, err)
	}
	res.EventCount = tl.Len()
	log.Info("timeline loaded", "source", source, "events", res.EventCount)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	waypoints, err := r.waypoints(in, tl)
	if err != nil {
		return nil, r.fail(StageWaypoints, err)
	}

	synth := occupancy.NewSynthesizer(waypoints, r.cfg.Building, occupancy.WithRand(r.rng(), r.cfg.JitterMax))
	cs, err := synth.Synthesize(tl.Snapshot())
	if err != nil {
		return nil, r.fail(StageSynthesize, err)
	}
	if err := occupancy.Apply(tl, cs); err != nil {
		return nil, r.fail(StageSynthesize, err)
	}
	res.SynthesizedCount = len(cs.NewEvents)
	res.ReplacedCount = len(cs.Replacements)
	log.Info("occupancy synthesized", "entities", waypoints.Len(), "new", res.SynthesizedCount, "replaced", res.ReplacedCount)

	if r.cfg.Rules != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lights, err := r.cfg.Rules.Evaluate(tl.Snapshot())
		if err != nil {
			return nil, r.fail(StageRules, err)
		}
		tl.Append(lights...)
		res.RuleEventCount = len(lights)
		log.Info("lighting rules applied", "events", res.RuleEventCount)
	}

	final := tl.Snapshot()
	report, err := evaluation.Aggregate(final, r.cfg.Profile)
	if err != nil {
		return nil, r.fail(StageAggregate, err)
	}
	res.Report = report

	generatedAt := r.now()
	res.ReportPath, err = evaluation.WriteReport(r.cfg.ReportDir, report, generatedAt)
	if err != nil {
		return nil, r.fail(StageReport, err)
	}
	log.Info("report written", "path", res.ReportPath,
		"rooms", report.RoomCount, "sub_rooms", report.SubRoomCount,
		"room_mean_wh", report.RoomMean, "sub_room_mean_wh", report.SubRoomMean)

	run := &evaluation.Run{
		ID:               res.RunID,
		CreatedAt:        generatedAt,
		Source:           source,
		ReportPath:       res.ReportPath,
		EventCount:       res.EventCount,
		SynthesizedCount: res.SynthesizedCount,
		ReplacedCount:    res.ReplacedCount,
		RuleEventCount:   res.RuleEventCount,
		Report:           report,
	}
	if err := r.persist(ctx, run, final); err != nil {
		return nil, r.fail(StagePersist, err)
	}

	if r.exporter != nil {
		if err := r.exporter.Export(ctx, run); err != nil {
			r.recorder.RecordError(StageExport)
			log.Warn("export failed", "error", err)
		}
	}

	res.Duration = time.Since(started)
	r.recorder.RecordRun(metrics.RunStats{
		Events:      len(final),
		Synthesized: res.SynthesizedCount,
		Replaced:    res.ReplacedCount,
		RuleEvents:  res.RuleEventCount,
		RoomMean:    report.RoomMean,
		SubRoomMean: report.SubRoomMean,
		Duration:    res.Duration,
	})
	log.Info("run complete", "duration", res.Duration)
	return res, nil
}

func (r *Runner) load(in Input) (*timeline.Timeline, string, error) {
	switch {
	case len(in.Events) > 0:
		return timeline.New(in.Events), "inline", nil
	case in.TimelineFile != "":
		tl, err := timeline.LoadFile(in.TimelineFile)
		return tl, in.TimelineFile, err
	default:
		return nil, "", ErrNoInput
	}
}

func (r *Runner) waypoints(in Input, tl *timeline.Timeline) (*movement.Table, error) {
	if in.ItineraryFile != "" {
		return movement.LoadFile(in.ItineraryFile)
	}
	return movement.FromEvents(tl.Snapshot())
}

func (r *Runner) persist(ctx context.Context, run *evaluation.Run, events []timeline.Event) error {
	if r.runs != nil {
		if err := r.runs.SaveRun(ctx, run); err != nil {
			return err
		}
	}
	if r.timelines != nil {
		if err := r.timelines.Save(ctx, run.ID, events); err != nil {
			return err
		}
	}
	return nil
}

// rng returns the jitter source of one run.
func (r *Runner) rng() *rand.Rand {
	seed := r.cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed))
}

func (r *Runner) fail(stage string, err error) error {
	r.recorder.RecordError(stage)
	return fmt.Errorf("%s stage: %w", stage, err)
}

// stageLogger tags every line with the run id.
type stageLogger struct {
	Logger
	runID string
}

func (l stageLogger) Info(msg string, args ...any) {
	l.Logger.Info(msg, append([]any{"run_id", l.runID}, args...)...)
}

func (l stageLogger) Warn(msg string, args ...any) {
	l.Logger.Warn(msg, append([]any{"run_id", l.runID}, args...)...)
}
