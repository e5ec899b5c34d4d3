// Package workflow orchestrates the full digitization run for a ledger page:
// preprocess, detect structure, refine, extract, identify columns, build
// entries, validate, score and persist, driving the page state machine
// pending -> processing -> completed/failed with retry back to pending.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/petropage/ledgerocr/internal/calc"
	"github.com/petropage/ledgerocr/internal/columns"
	"github.com/petropage/ledgerocr/internal/confidence"
	"github.com/petropage/ledgerocr/internal/config"
	"github.com/petropage/ledgerocr/internal/entries"
	"github.com/petropage/ledgerocr/internal/extract"
	"github.com/petropage/ledgerocr/internal/ledger"
	"github.com/petropage/ledgerocr/internal/ocr"
	"github.com/petropage/ledgerocr/internal/preprocess"
	"github.com/petropage/ledgerocr/internal/store"
	"github.com/petropage/ledgerocr/internal/structure"
	"github.com/petropage/ledgerocr/internal/table"
	"github.com/petropage/ledgerocr/internal/utils"
	"github.com/petropage/ledgerocr/internal/validate"
)

// Result is the outcome of one page run.
type Result struct {
	PageID      uuid.UUID             `json:"page_id"`
	Success     bool                  `json:"success"`
	Message     string                `json:"message"`
	Entries     []ledger.SalesEntry   `json:"entries,omitempty"`
	NeedsReview int                   `json:"needs_review"`
	Confidence  confidence.Score      `json:"confidence"`
	Validation  *validate.BatchReport `json:"validation,omitempty"`
	Suggestions []string              `json:"suggestions,omitempty"`
	Report      *ledger.DailyReport   `json:"report,omitempty"`
}

// Orchestrator wires the pipeline stages together over a Store.
type Orchestrator struct {
	cfg       *config.Config
	store     store.Store
	engine    ocr.Engine
	pipeline  *preprocess.Pipeline
	detector  *structure.Detector
	refiner   *table.Refiner
	extractor *extract.Extractor
	builder   *entries.Builder
	logger    *slog.Logger
	now       func() time.Time
}

// New builds an Orchestrator. A nil logger falls back to slog.Default.
func New(cfg *config.Config, st store.Store, engine ocr.Engine, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	ppCfg := preprocess.Config{
		TargetWidth:     cfg.Preprocess.TargetWidth,
		TargetHeight:    cfg.Preprocess.TargetHeight,
		EnhanceContrast: cfg.Preprocess.EnhanceContrast,
		RemoveNoise:     cfg.Preprocess.RemoveNoise,
		Sharpen:         cfg.Preprocess.Sharpen,
		ClipLimit:       cfg.Preprocess.ClipLimit,
		TileGrid:        cfg.Preprocess.TileGrid,
		BinarizeWindow:  cfg.Preprocess.BinarizeWindow,
		BinarizeOffset:  cfg.Preprocess.BinarizeOffset,
	}
	return &Orchestrator{
		cfg:       cfg,
		store:     st,
		engine:    engine,
		pipeline:  preprocess.NewPipeline(ppCfg),
		detector:  structure.NewDetector(structure.DefaultConfig(), logger),
		refiner:   table.NewRefiner(engine, logger),
		extractor: extract.NewExtractor(engine, logger),
		builder:   entries.NewBuilder(cfg.Pipeline.ReviewThreshold, logger),
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessImage registers a new page for an image file and processes it,
// retrying failed runs up to the configured limit.
func (o *Orchestrator) ProcessImage(ctx context.Context, imagePath string) (*Result, error) {
	page := ledger.NewLedgerPage(imagePath)
	if err := o.store.SavePage(ctx, page); err != nil {
		return nil, err
	}
	return o.ProcessPage(ctx, page.ID)
}

// ProcessPage runs the pipeline for a stored page. Failed runs transition
// the page back to pending and retry until the limit is reached; the page
// ends completed or failed.
func (o *Orchestrator) ProcessPage(ctx context.Context, pageID uuid.UUID) (*Result, error) {
	var res *Result
	var err error
	for attempt := 0; attempt <= o.cfg.Pipeline.MaxRetries; attempt++ {
		res, err = o.runOnce(ctx, pageID)
		if err != nil {
			return nil, err
		}
		if res.Success {
			return res, nil
		}
		if attempt < o.cfg.Pipeline.MaxRetries {
			o.logger.Warn("page run failed, retrying",
				"page_id", pageID.String(), "attempt", attempt+1)
			if err := o.Retry(ctx, pageID); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

// runOnce drives a single pending -> processing -> completed/failed cycle.
func (o *Orchestrator) runOnce(ctx context.Context, pageID uuid.UUID) (*Result, error) {
	page, err := o.store.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if err := page.Transition(ledger.StatusProcessing); err != nil {
		return nil, err
	}
	if err := o.store.SavePage(ctx, page); err != nil {
		return nil, err
	}

	return o.execute(ctx, page)
}

// stageFailed records a stage error on the page and returns an unsuccessful
// result. Only persistence failures surface as errors.
func (o *Orchestrator) stageFailed(ctx context.Context, page *ledger.LedgerPage, res *Result, cause error) (*Result, error) {
	if err := o.fail(ctx, page, cause); err != nil {
		return nil, err
	}
	res.Message = cause.Error()
	return res, nil
}

// fail marks the page failed and persists the reason. The returned error is
// nil unless persistence itself broke; pipeline failure is reported through
// the page status.
func (o *Orchestrator) fail(ctx context.Context, page *ledger.LedgerPage, cause error) error {
	if ctx.Err() != nil {
		return cause
	}
	page.AppendNote(cause.Error())
	if err := page.Transition(ledger.StatusFailed); err != nil {
		return err
	}
	pagesProcessed.WithLabelValues(string(ledger.StatusFailed)).Inc()
	o.logger.Error("page processing failed",
		"page_id", page.ID.String(), "error", cause)
	return o.store.SavePage(ctx, page)
}

func (o *Orchestrator) execute(ctx context.Context, page *ledger.LedgerPage) (*Result, error) {
	res := &Result{PageID: page.ID}

	stageStart := time.Now()
	img, meta, err := utils.LoadImage(page.OriginalImageURL)
	if err != nil {
		return o.stageFailed(ctx, page, res, err)
	}
	stageDuration.WithLabelValues("load").Observe(time.Since(stageStart).Seconds())
	o.logger.Info("page loaded",
		"page_id", page.ID.String(),
		"format", meta.Format,
		"size", fmt.Sprintf("%dx%d", meta.Width, meta.Height))

	stageStart = time.Now()
	processed := o.pipeline.Process(img)
	stageDuration.WithLabelValues("preprocess").Observe(time.Since(stageStart).Seconds())

	stageStart = time.Now()
	ts, err := o.detector.Detect(processed)
	if err != nil {
		return o.stageFailed(ctx, page, res, err)
	}
	stageDuration.WithLabelValues("detect").Observe(time.Since(stageStart).Seconds())

	stageStart = time.Now()
	refined, err := o.refiner.Refine(ctx, processed, ts)
	if err != nil {
		return o.stageFailed(ctx, page, res, err)
	}
	stageDuration.WithLabelValues("refine").Observe(time.Since(stageStart).Seconds())
	res.Suggestions = append(res.Suggestions, refined.Suggestions...)

	// An unusable structure is fatal: extracting from a grid this bad
	// produces garbage entries, not low-confidence ones.
	if !refined.Valid {
		return o.stageFailed(ctx, page, res,
			fmt.Errorf("table structure unusable: %s", strings.Join(refined.Suggestions, "; ")))
	}

	stageStart = time.Now()
	data, err := o.extractor.Extract(ctx, processed, refined.Structure)
	if err != nil {
		return o.stageFailed(ctx, page, res, err)
	}
	stageDuration.WithLabelValues("extract").Observe(time.Since(stageStart).Seconds())

	mapping := columns.Identify(data)
	res.Suggestions = append(res.Suggestions, mapping.Suggestions...)

	built := o.builder.Build(page.ID, data, mapping)
	res.Entries = built.Entries
	res.NeedsReview = built.NeedsReview
	for _, skip := range entries.DescribeSkips(built.Skipped) {
		page.AppendNote(skip)
	}

	res.Validation = validate.Batch(built.Entries, o.now())
	res.Suggestions = append(res.Suggestions, validate.Summarize(res.Validation)...)

	res.Confidence = confidence.Fuse(confidence.Inputs{
		Entries:        built.Entries,
		ColumnCoverage: fieldCoverage(mapping),
		HadErrors:      res.Validation.ErrorCount > 0 || page.ProcessingErrors != "",
	})

	if res.NeedsReview > 0 {
		page.AppendNote(fmt.Sprintf("%d entries below review threshold", res.NeedsReview))
	}

	res.Report = o.buildReport(built.Entries)

	if err := o.persist(ctx, page, refined, data, res); err != nil {
		return nil, err
	}

	entriesExtracted.Add(float64(len(res.Entries)))
	pageConfidence.Observe(res.Confidence.Overall)
	pagesProcessed.WithLabelValues(string(page.Status)).Inc()

	res.Success = page.Status == ledger.StatusCompleted
	res.Message = completionMessage(res)
	o.logger.Info("page processing finished",
		"page_id", page.ID.String(),
		"status", string(page.Status),
		"entries", len(res.Entries),
		"confidence", res.Confidence.Overall,
		"band", string(res.Confidence.Band))
	return res, nil
}

func (o *Orchestrator) persist(ctx context.Context, page *ledger.LedgerPage, refined *table.Result, data *extract.PageData, res *Result) error {
	colsJSON, err := json.Marshal(refined.Structure.Columns)
	if err != nil {
		return fmt.Errorf("marshal columns: %w", err)
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal extracted data: %w", err)
	}
	page.DetectedColumns = string(colsJSON)
	page.ExtractedData = string(dataJSON)
	page.ConfidenceScore = res.Confidence.Overall
	now := o.now().UTC()
	page.ProcessedAt = &now

	next := ledger.StatusCompleted
	if len(res.Entries) == 0 {
		page.AppendNote("no entries could be extracted")
		next = ledger.StatusFailed
	}
	if err := page.Transition(next); err != nil {
		return err
	}
	return o.store.SaveResults(ctx, page, res.Entries, res.Report)
}

// buildReport aggregates entries under the page's dominant date. Undated
// entries count toward totals but cannot pick the date.
func (o *Orchestrator) buildReport(entriesIn []ledger.SalesEntry) *ledger.DailyReport {
	if len(entriesIn) == 0 {
		return nil
	}
	counts := make(map[string]int)
	dates := make(map[string]time.Time)
	for _, e := range entriesIn {
		if e.Date == nil {
			continue
		}
		key := e.Date.Format("2006-01-02")
		counts[key]++
		dates[key] = *e.Date
	}
	best := ""
	for key, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && key < best) {
			best = key
		}
	}
	reportDate := o.now().UTC().Truncate(24 * time.Hour)
	if best != "" {
		reportDate = dates[best]
	}
	return calc.DailyReport(reportDate, entriesIn)
}

// Retry moves a failed page back to pending.
func (o *Orchestrator) Retry(ctx context.Context, pageID uuid.UUID) error {
	page, err := o.store.GetPage(ctx, pageID)
	if err != nil {
		return err
	}
	if err := page.Transition(ledger.StatusPending); err != nil {
		return err
	}
	return o.store.SavePage(ctx, page)
}

// Reprocess forces a full rerun of any page regardless of current status,
// noting the rerun on the page.
func (o *Orchestrator) Reprocess(ctx context.Context, pageID uuid.UUID) (*Result, error) {
	page, err := o.store.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	page.AppendNote(fmt.Sprintf("reprocessed at %s", o.now().UTC().Format(time.RFC3339)))
	page.Status = ledger.StatusPending
	if err := o.store.SavePage(ctx, page); err != nil {
		return nil, err
	}
	return o.ProcessPage(ctx, pageID)
}

// CorrectEntry applies a manual correction and re-derives dependent fields.
func (o *Orchestrator) CorrectEntry(ctx context.Context, entry *ledger.SalesEntry, notes string) error {
	entry.ApplyCorrection(notes)
	entry.FillDerived(ledger.MeterRolloverLimit)
	return o.store.UpdateEntry(ctx, entry)
}

// PageStatus reports the stored state of a page.
func (o *Orchestrator) PageStatus(ctx context.Context, pageID uuid.UUID) (*ledger.LedgerPage, error) {
	return o.store.GetPage(ctx, pageID)
}

// fieldCoverage is the fraction of the critical fields the column mapping
// identified somewhere. Non-critical fields do not move the confidence
// structure component.
func fieldCoverage(m *columns.Mapping) float64 {
	if m == nil {
		return 0
	}
	found := make(map[ledger.FieldType]bool)
	for _, match := range m.Columns {
		found[match.Field] = true
	}
	n := 0
	for _, critical := range ledger.CriticalFields {
		if found[critical] {
			n++
		}
	}
	return float64(n) / float64(len(ledger.CriticalFields))
}

func completionMessage(res *Result) string {
	if len(res.Entries) == 0 {
		return "no entries extracted; manual entry required"
	}
	msg := fmt.Sprintf("extracted %d entries (%s confidence)", len(res.Entries), res.Confidence.Band)
	if res.NeedsReview > 0 {
		msg += fmt.Sprintf(", %d need review", res.NeedsReview)
	}
	if !res.Validation.Valid() {
		msg += fmt.Sprintf(", %d validation errors", res.Validation.ErrorCount)
	}
	return msg
}
