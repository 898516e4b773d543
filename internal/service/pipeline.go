package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"survey-registry/internal/analysis"
	"survey-registry/internal/config"
	"survey-registry/internal/models"
	"survey-registry/internal/platform/logger"
	"survey-registry/internal/platform/metrics"
)

// SnapshotSaver persists the output document of a run
type SnapshotSaver interface {
	Save(ctx context.Context, snap *models.Snapshot) error
}

// Pipeline runs extraction, grouping, merging and attendance matching in
// sequence and hands the result to a SnapshotSaver.
type Pipeline struct {
	cfg        config.Config
	csv        *analysis.CSVService
	extractor  *Extractor
	merger     *Merger
	profiler   *DataQualityProfiler
	attendance *AttendanceMatcher

	saver   SnapshotSaver
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(p *Pipeline)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

func WithSaver(saver SnapshotSaver) Option {
	return func(p *Pipeline) {
		p.saver = saver
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewPipeline wires the stages from cfg.
func NewPipeline(cfg config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		csv:      analysis.NewCSVService(),
		profiler: NewDataQualityProfiler(),
		logger:   logger.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	handles := NewHandleNormalizer(cfg.Handles.Marker, cfg.Handles.NoHandleTokens)
	p.extractor = NewExtractor(ColumnPatterns{
		Contact:     cfg.Columns.Contact,
		Admin:       cfg.Columns.Admin,
		Decorations: cfg.Columns.Decorations,
	}, handles)
	p.merger = NewMerger(handles)

	a := cfg.Attendance
	p.attendance = NewAttendanceMatcher(
		NewNameMatcher(a.StopWords, a.MatchThreshold, a.ShortNameWords),
		StatusCodes{Present: a.Present, PresentAlt: a.PresentAlt, Justified: a.Justified},
		p.logger,
	)
	return p
}

// Run builds the registry. Unreadable sources and attendance files are
// recorded in the report and skipped; only a failed save is returned.
func (p *Pipeline) Run(ctx context.Context) (*models.Snapshot, error) {
	report := models.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: p.now().UTC(),
	}
	log := p.logger.With("run_id", report.RunID)

	var records []models.RawRecord
	for _, path := range p.cfg.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, extracted := p.extractSource(log, path)
		report.Sources = append(report.Sources, src)
		report.RecordsFiltered += src.Filtered
		records = append(records, extracted...)
	}
	report.RecordsExtracted = len(records)
	if report.RecordsFiltered > 0 {
		log.Info("filtered records without name, email or handle", "count", report.RecordsFiltered)
	}

	groups := Group(records)
	report.Groups = groups.Len()

	people := p.merger.MergeAll(groups)
	report.People = len(people)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tables := p.attendance.LoadDir(p.cfg.AttendanceDir)
	for _, t := range tables {
		report.AttendanceFiles = append(report.AttendanceFiles, t.Source)
	}
	attached := p.attendance.Attach(people, tables)
	report.AttendanceMatched = attached.Matched
	report.Unmatched = attached.Unmatched
	report.FinishedAt = p.now().UTC()

	snap := &models.Snapshot{
		RunID:       report.RunID,
		GeneratedAt: report.FinishedAt,
		People:      people,
		Report:      report,
	}

	if p.saver != nil {
		if err := p.saver.Save(ctx, snap); err != nil {
			return nil, fmt.Errorf("save snapshot: %w", err)
		}
	}
	p.metrics.ObserveReport(report)

	log.Info("registry built",
		"sources", len(report.Sources),
		"failed_sources", report.FailedSources(),
		"records", report.RecordsExtracted,
		"people", report.People,
		"attendance_files", len(report.AttendanceFiles),
		"attendance_matched", report.AttendanceMatched,
		"attendance_unmatched", len(report.Unmatched),
	)
	return snap, nil
}

func (p *Pipeline) extractSource(log *slog.Logger, path string) (models.SourceReport, []models.RawRecord) {
	src := models.SourceReport{Path: path, Form: FormLabel(path)}

	df, err := p.csv.ReadFile(path)
	if err != nil {
		src.Error = err.Error()
		log.Warn("skipping source", "source", path, "err", err)
		return src, nil
	}

	result := p.extractor.Extract(df, path)
	src.Rows = result.Rows
	src.Records = len(result.Records)
	src.Filtered = result.Filtered
	src.Columns = result.Columns
	src.Profiles = p.profiler.ProfileContacts(df, result.Columns)

	log.Info("source extracted",
		"source", path,
		"rows", src.Rows,
		"records", src.Records,
		"filtered", src.Filtered,
	)
	return src, result.Records
}

// Inspect classifies the headers of every configured source without merging.
func (p *Pipeline) Inspect() []models.SourceReport {
	reports := make([]models.SourceReport, 0, len(p.cfg.Sources))
	for _, path := range p.cfg.Sources {
		src := models.SourceReport{Path: path, Form: FormLabel(path)}
		df, err := p.csv.ReadFile(path)
		if err != nil {
			src.Error = err.Error()
			reports = append(reports, src)
			continue
		}
		src.Rows = len(df.Rows)
		src.Columns = p.extractor.Classify(df.Headers)
		src.Profiles = p.profiler.ProfileContacts(df, src.Columns)
		reports = append(reports, src)
	}
	return reports
}
