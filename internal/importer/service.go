package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ougajs-sys/easyflows-backend/internal/clients"
	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
	pkgerrors "github.com/ougajs-sys/easyflows-backend/pkg/errors"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
	"github.com/ougajs-sys/easyflows-backend/pkg/metrics"
)

// CacheInvalidator is notified when an import changes the clients table so
// cached listings can be dropped.
type CacheInvalidator interface {
	InvalidateClients(ctx context.Context)
}

// Params configures the import service.
type Params struct {
	Clients    clients.Repository
	Cache      CacheInvalidator
	Logger     *logger.Logger
	Metrics    *metrics.ImportMetrics
	BatchSize  int
	LookupSize int
	Now        func() time.Time
}

// Service runs client file imports. One import at a time; progress is
// polled through Progress().
type Service struct {
	clients    clients.Repository
	cache      CacheInvalidator
	logger     *logger.Logger
	metrics    *metrics.ImportMetrics
	batchSize  int
	lookupSize int
	now        func() time.Time

	tracker *tracker

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	result  *Result
}

// Result is the final outcome of one import run.
type Result struct {
	Status     enums.ImportStatus `json:"status"`
	Message    string             `json:"message,omitempty"`
	Stats      Stats              `json:"stats"`
	Invalid    []InvalidRow       `json:"invalid,omitempty"`
	Duplicates []DuplicateGroup   `json:"duplicates,omitempty"`
}

// NewService builds the import service.
func NewService(params Params) (*Service, error) {
	if params.Clients == nil {
		return nil, fmt.Errorf("importer.NewService: nil clients repository")
	}
	if params.BatchSize <= 0 {
		params.BatchSize = 500
	}
	if params.LookupSize <= 0 {
		params.LookupSize = 500
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("importer.NewService: nil logger")
	}
	return &Service{
		clients:    params.Clients,
		cache:      params.Cache,
		logger:     params.Logger,
		metrics:    params.Metrics,
		batchSize:  params.BatchSize,
		lookupSize: params.LookupSize,
		now:        params.Now,
		tracker:    newTracker(params.Now),
	}, nil
}

// Progress returns the current progress snapshot.
func (s *Service) Progress() Progress {
	return s.tracker.snapshot()
}

// LastResult returns the final result of the last finished run, or nil while
// a run is in flight or before any run happened.
func (s *Service) LastResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	return s.result
}

// Cancel requests cooperative cancellation of the running import. The
// in-flight batch finishes first. No-op when nothing is running.
func (s *Service) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// Reset clears the progress state back to idle. Refused while a run is in
// flight.
func (s *Service) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "import is running")
	}
	s.result = nil
	s.tracker.reset()
	return nil
}

// Start launches an import of the given file contents in the background and
// returns immediately. Only one import may run at a time.
func (s *Service) Start(ctx context.Context, data string, mode enums.DuplicateMode) error {
	if !mode.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid duplicate mode %q", mode))
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "an import is already running")
	}
	s.tracker.reset()
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.running = true
	s.cancel = cancel
	s.result = nil
	s.mu.Unlock()

	go func() {
		defer cancel()
		result := s.run(runCtx, data, mode)
		s.mu.Lock()
		s.running = false
		s.cancel = nil
		s.result = result
		s.mu.Unlock()
	}()
	return nil
}

// Run executes an import synchronously. Used by Start's goroutine and
// directly by tests.
func (s *Service) Run(ctx context.Context, data string, mode enums.DuplicateMode) *Result {
	return s.run(ctx, data, mode)
}

func (s *Service) run(ctx context.Context, data string, mode enums.DuplicateMode) *Result {
	start := s.now()
	defer func() {
		s.metrics.ObserveDuration(s.now().Sub(start))
	}()

	s.tracker.transition(enums.ImportStatusParsing)
	parsed, err := Parse(data)
	if err != nil {
		return s.fail(fmt.Sprintf("parse failed: %v", err))
	}

	s.tracker.transition(enums.ImportStatusValidating)
	s.tracker.update(func(p *Progress) {
		p.TotalRows = parsed.TotalRows
		p.ValidRows = len(parsed.Valid)
		p.InvalidRows = len(parsed.Invalid)
		for _, g := range parsed.Duplicates {
			p.DuplicateRows += len(g.Rows)
		}
		p.Stats.Errors = len(parsed.Invalid)
	})

	stats := Stats{Errors: len(parsed.Invalid)}
	s.metrics.AddRows("error", len(parsed.Invalid))

	// Rows whose phone appears more than once in the file are ambiguous
	// and are skipped wholesale.
	dupPhones := make(map[string]struct{}, len(parsed.Duplicates))
	for _, g := range parsed.Duplicates {
		dupPhones[g.Phone] = struct{}{}
		stats.Skipped += len(g.Rows)
	}

	candidates := make([]ParsedRow, 0, len(parsed.Valid))
	phones := make([]string, 0, len(parsed.Valid))
	for _, row := range parsed.Valid {
		if _, dup := dupPhones[row.Phone]; dup {
			continue
		}
		candidates = append(candidates, row)
		phones = append(phones, row.Phone)
	}

	existing, err := s.clients.FindExistingPhones(ctx, phones, s.lookupSize)
	if err != nil {
		s.logger.Error(ctx, "import: existing phone lookup failed", err)
		return s.fail(fmt.Sprintf("phone lookup failed: %v", err))
	}

	var toImport []models.Client
	var nExisting int
	for _, row := range candidates {
		_, found := existing[row.Phone]
		if found {
			nExisting++
			if mode == enums.DuplicateModeIgnore {
				stats.Skipped++
				continue
			}
		}
		toImport = append(toImport, buildClient(row))
	}

	totalBatches := (len(toImport) + s.batchSize - 1) / s.batchSize
	s.tracker.transition(enums.ImportStatusImporting)
	s.tracker.update(func(p *Progress) {
		p.TotalBatches = totalBatches
		p.Stats = stats
	})

	updateExisting := mode == enums.DuplicateModeUpdate
	cancelled := false

	for i := 0; i < len(toImport); i += s.batchSize {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		end := i + s.batchSize
		if end > len(toImport) {
			end = len(toImport)
		}
		batch := toImport[i:end]

		if err := s.clients.UpsertBatch(context.WithoutCancel(ctx), batch, updateExisting); err != nil {
			s.logger.Error(ctx, fmt.Sprintf("import: batch of %d failed", len(batch)), err)
			stats.Errors += len(batch)
			s.metrics.AddRows("error", len(batch))
			s.tracker.update(func(p *Progress) { p.Stats = stats })
			s.tracker.batchDone(0)
			continue
		}
		for _, c := range batch {
			if _, found := existing[c.Phone]; found {
				stats.Updated++
			} else {
				stats.Inserted++
			}
		}
		s.tracker.update(func(p *Progress) { p.Stats = stats })
		s.tracker.batchDone(len(batch))
	}

	s.metrics.AddRows("inserted", stats.Inserted)
	s.metrics.AddRows("updated", stats.Updated)
	s.metrics.AddRows("skipped", stats.Skipped)

	if stats.Inserted+stats.Updated > 0 && s.cache != nil {
		s.cache.InvalidateClients(context.WithoutCancel(ctx))
	}

	final := enums.ImportStatusComplete
	message := fmt.Sprintf("import complete: %d inserted, %d updated, %d skipped, %d errors",
		stats.Inserted, stats.Updated, stats.Skipped, stats.Errors)
	if cancelled {
		final = enums.ImportStatusCancelled
		message = fmt.Sprintf("import cancelled: %d inserted, %d updated, %d skipped, %d errors",
			stats.Inserted, stats.Updated, stats.Skipped, stats.Errors)
	}
	s.tracker.transition(final)
	s.tracker.update(func(p *Progress) {
		p.Message = message
		p.Stats = stats
		if final == enums.ImportStatusComplete {
			p.Percent = 100
			p.ETASeconds = 0
		}
	})

	ctx = s.logger.WithFields(ctx, map[string]any{
		"inserted":        stats.Inserted,
		"updated":         stats.Updated,
		"skipped":         stats.Skipped,
		"errors":          stats.Errors,
		"cancelled":       cancelled,
		"existing_phones": nExisting,
	})
	s.logger.Info(ctx, "client import finished")

	return &Result{
		Status:     final,
		Message:    message,
		Stats:      stats,
		Invalid:    parsed.Invalid,
		Duplicates: parsed.Duplicates,
	}
}

func (s *Service) fail(message string) *Result {
	s.tracker.transition(enums.ImportStatusError)
	s.tracker.update(func(p *Progress) { p.Message = message })
	return &Result{Status: enums.ImportStatusError, Message: message}
}

func buildClient(row ParsedRow) models.Client {
	c := models.Client{
		FullName: row.FullName,
		Phone:    row.Phone,
		Segment:  enums.ClientSegmentNew,
	}
	if row.City != "" {
		c.City = &row.City
	}
	if row.Zone != "" {
		c.Zone = &row.Zone
	}
	if row.Address != "" {
		c.Address = &row.Address
	}
	if row.Notes != "" {
		c.Notes = &row.Notes
	}
	return c
}
