package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-simeval/internal/evaluation"
	"github.com/nerrad567/gray-logic-simeval/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
)

// MQTTClient is the subset of the MQTT client used for publishing results.
type MQTTClient interface {
	PublishJSON(topic string, v any, retained bool) error
}

// PointWriter is a batched time-series writer. The InfluxDB and
// VictoriaMetrics clients both satisfy it.
type PointWriter interface {
	WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time)
	Flush()
}

// Logger is the logging interface used by the publisher.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Summary is the retained payload on the latest-run topic.
type Summary struct {
	RunID         string    `json:"run_id"`
	CreatedAt     time.Time `json:"created_at"`
	SpanStart     time.Time `json:"span_start"`
	SpanEnd       time.Time `json:"span_end"`
	RoomMean      float64   `json:"room_mean_wh"`
	SubRoomMean   float64   `json:"sub_room_mean_wh"`
	RoomCount     int       `json:"room_count"`
	SubRoomCount  int       `json:"sub_room_count"`
	BaselineType0 float64   `json:"baseline_type0_wh"`
	BaselineType1 float64   `json:"baseline_type1_wh"`
	ReportPath    string    `json:"report_path"`
}

// LocationEnergy is the payload on a per-location topic.
type LocationEnergy struct {
	RunID    string  `json:"run_id"`
	Location string  `json:"location"`
	Category string  `json:"category"`
	Wh       float64 `json:"wh"`
}

// Publisher sends run results to the configured sinks.
type Publisher struct {
	mqtt   MQTTClient
	points []PointWriter
	logger Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithMQTT enables MQTT publishing.
func WithMQTT(c MQTTClient) Option {
	return func(p *Publisher) { p.mqtt = c }
}

// WithInfluxDB adds an InfluxDB point sink.
func WithInfluxDB(w PointWriter) Option {
	return WithPointWriter(w)
}

// WithVictoriaMetrics adds a VictoriaMetrics point sink.
func WithVictoriaMetrics(w PointWriter) Option {
	return WithPointWriter(w)
}

// WithPointWriter adds a time-series sink. Nil is ignored.
func WithPointWriter(w PointWriter) Option {
	return func(p *Publisher) {
		if w != nil {
			p.points = append(p.points, w)
		}
	}
}

// WithLogger sets the logger for per-message failures.
func WithLogger(l Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPublisher creates a publisher; with no options it publishes nothing.
func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{logger: noopLogger{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enabled reports whether any sink is configured.
func (p *Publisher) Enabled() bool {
	return p.mqtt != nil || len(p.points) > 0
}

// Export publishes a run to every configured sink.
//
// MQTT receives, all retained:
//   - the full report on Topics.EvaluationReport(run.ID)
//   - one LocationEnergy per location on Topics.LocationEnergy(location)
//   - the run summary on Topics.EvaluationLatest()
//
// Each point sink receives one energy_evaluation point per location and
// one energy_evaluation_summary point, stamped with the timeline span end.
//
// Parameters:
//   - ctx: Checked between messages
//   - run: Run with its Report
//
// Returns:
//   - error: ErrNoRun without a report; otherwise the joined MQTT publish
//     errors. Point writes are asynchronous and report through each
//     client's error callback.
func (p *Publisher) Export(ctx context.Context, run *evaluation.Run) error {
	if run == nil || run.Report == nil {
		return ErrNoRun
	}

	var errs []error
	if p.mqtt != nil {
		if err := p.publishMQTT(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	for _, w := range p.points {
		writePoints(w, run)
	}
	return errors.Join(errs...)
}

func (p *Publisher) publishMQTT(ctx context.Context, run *evaluation.Run) error {
	topics := mqtt.Topics{}
	r := run.Report

	if err := p.mqtt.PublishJSON(topics.EvaluationReport(run.ID), r, true); err != nil {
		return fmt.Errorf("publishing report: %w", err)
	}

	var errs []error
	for _, group := range []struct {
		category timeline.Category
		items    []evaluation.LocationConsumption
	}{
		{timeline.CategoryRoom, r.Rooms},
		{timeline.CategorySubRoom, r.SubRooms},
	} {
		for _, item := range group.items {
			if err := ctx.Err(); err != nil {
				return err
			}
			msg := LocationEnergy{RunID: run.ID, Location: item.Location, Category: group.category.String(), Wh: item.Wh}
			if err := p.mqtt.PublishJSON(topics.LocationEnergy(item.Location), msg, true); err != nil {
				p.logger.Warn("publishing location energy failed", "location", item.Location, "error", err)
				errs = append(errs, fmt.Errorf("publishing %s: %w", item.Location, err))
			}
		}
	}

	if err := p.mqtt.PublishJSON(topics.EvaluationLatest(), summaryOf(run), true); err != nil {
		errs = append(errs, fmt.Errorf("publishing summary: %w", err))
	}
	return errors.Join(errs...)
}

func summaryOf(run *evaluation.Run) Summary {
	r := run.Report
	return Summary{
		RunID:         run.ID,
		CreatedAt:     run.CreatedAt,
		SpanStart:     r.SpanStart,
		SpanEnd:       r.SpanEnd,
		RoomMean:      r.RoomMean,
		SubRoomMean:   r.SubRoomMean,
		RoomCount:     r.RoomCount,
		SubRoomCount:  r.SubRoomCount,
		BaselineType0: r.BaselineType0,
		BaselineType1: r.BaselineType1,
		ReportPath:    run.ReportPath,
	}
}
