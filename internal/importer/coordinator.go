package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/luc4spas/erp-joy-maker/internal/calculator"
	"github.com/luc4spas/erp-joy-maker/internal/model"
	"github.com/luc4spas/erp-joy-maker/internal/parser"
	"github.com/luc4spas/erp-joy-maker/internal/store"
)

// Event types emitted on the progress channel
const (
	EventStart   = "start"
	EventInfo    = "info"
	EventWarning = "warning"
	EventDone    = "done"
	EventError   = "error"
)

// Archiver keeps a copy of an uploaded spreadsheet and returns where it lives
type Archiver interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Coordinator runs one spreadsheet through parsing, calculation and persistence
type Coordinator struct {
	store    *store.Store
	calc     *calculator.Calculator
	archiver Archiver
	now      func() time.Time
}

// NewCoordinator creates an import coordinator; archiver may be nil
func NewCoordinator(st *store.Store, calc *calculator.Calculator, archiver Archiver) *Coordinator {
	if calc == nil {
		calc = calculator.NewCalculator(nil, 0)
	}
	return &Coordinator{
		store:    st,
		calc:     calc,
		archiver: archiver,
		now:      time.Now,
	}
}

// ImportOptions one uploaded file
type ImportOptions struct {
	UserID   string
	Filename string
	Data     []byte
	// SaveClosing persists the batch as the closing of its report date
	SaveClosing bool
}

// ProgressEvent progress notification
type ProgressEvent struct {
	Type      string      `json:"type"` // start/info/warning/done/error
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// ImportReport payload of the done event
type ImportReport struct {
	ImportID string               `json:"importId,omitempty"`
	Filename string               `json:"filename"`
	Format   parser.Format        `json:"format"`
	Result   calculator.Result    `json:"result"`
	Closing  *model.ClosingRecord `json:"closing,omitempty"`
	Archive  string               `json:"archiveUrl,omitempty"`
	Duration time.Duration        `json:"duration"`
}

// importContext state of one running import
type importContext struct {
	ctx          context.Context
	opts         ImportOptions
	startTime    time.Time
	progressChan chan ProgressEvent
	logEntry     *model.ImportLog
	report       *ImportReport
}

// Import runs the import in the background and returns the progress channel
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImport(ctx, opts, progressChan)
	}()

	return progressChan
}

// Run imports synchronously and returns the report of the done event
func (c *Coordinator) Run(ctx context.Context, opts ImportOptions) (*ImportReport, error) {
	var report *ImportReport
	var failure error
	for evt := range c.Import(ctx, opts) {
		switch evt.Type {
		case EventDone:
			report, _ = evt.Data.(*ImportReport)
		case EventError:
			failure = errors.New(evt.Message)
		}
	}
	if failure != nil {
		return nil, failure
	}
	if report == nil {
		return nil, fmt.Errorf("import of %s finished without a report", opts.Filename)
	}
	return report, nil
}

func (c *Coordinator) doImport(ctx context.Context, opts ImportOptions, progressChan chan ProgressEvent) {
	ic := &importContext{
		ctx:          ctx,
		opts:         opts,
		startTime:    c.now(),
		progressChan: progressChan,
		report:       &ImportReport{Filename: filepath.Base(opts.Filename)},
	}

	c.sendProgress(progressChan, EventStart, "Importando planilha", map[string]interface{}{
		"filename": ic.report.Filename,
		"size":     len(opts.Data),
	})

	c.openLog(ic)

	sheet, err := parser.ReadWorkbook(bytes.NewReader(opts.Data), opts.Filename)
	if err != nil {
		c.fail(ic, err)
		return
	}
	ic.report.Format = sheet.Format

	c.sendProgress(progressChan, EventInfo, fmt.Sprintf("Planilha %q lida com %d linhas", sheet.Name, len(sheet.Rows)), map[string]interface{}{
		"sheet":   sheet.Name,
		"format":  sheet.Format,
		"rows":    len(sheet.Rows),
		"headers": sheet.Headers,
	})

	result := c.calc.Process(sheet)
	ic.report.Result = result

	for _, fb := range result.Fallbacks {
		c.sendProgress(progressChan, EventWarning, fmt.Sprintf("Coluna de %s não encontrada, usando %q", fb.Field, fb.ColumnName), fb)
	}
	if result.Batch.ReportDate == nil {
		c.sendProgress(progressChan, EventWarning, "Data do relatório não encontrada na planilha", nil)
	}

	c.sendProgress(progressChan, EventInfo, fmt.Sprintf("%d linhas válidas de %d", result.Stats.OutputRows, result.Stats.InputRows), result.Stats)

	c.archive(ic)

	if opts.SaveClosing {
		if err := c.saveClosing(ic); err != nil {
			c.fail(ic, err)
			return
		}
	}

	ic.report.Duration = time.Since(ic.startTime)
	c.closeLog(ic, model.ImportStatusDone, "")

	log.WithFields(log.Fields{
		"filename": ic.report.Filename,
		"rows":     result.Stats.OutputRows,
		"duration": ic.report.Duration,
	}).Info("import finished")

	c.sendProgress(progressChan, EventDone, "Importação concluída", ic.report)
}

// openLog records the import as processing; the import goes on without a log on failure
func (c *Coordinator) openLog(ic *importContext) {
	if c.store == nil || ic.opts.UserID == "" {
		return
	}

	entry := &model.ImportLog{
		UserID:   ic.opts.UserID,
		Filename: ic.report.Filename,
		FileSize: int64(len(ic.opts.Data)),
	}
	if err := c.store.CreateImportLog(ic.ctx, entry); err != nil {
		log.WithError(err).Warn("failed to open import log")
		c.sendProgress(ic.progressChan, EventWarning, fmt.Sprintf("Falha ao registrar importação: %v", err), nil)
		return
	}
	ic.logEntry = entry
	ic.report.ImportID = entry.ID
}

func (c *Coordinator) closeLog(ic *importContext, status, message string) {
	if ic.logEntry == nil {
		return
	}

	ic.logEntry.Status = status
	ic.logEntry.Message = message
	ic.logEntry.Format = string(ic.report.Format)
	ic.logEntry.TotalRows = ic.report.Result.Stats.InputRows
	ic.logEntry.ValidRows = ic.report.Result.Stats.OutputRows
	ic.logEntry.ArchiveURL = ic.report.Archive
	if err := c.store.UpdateImportLog(ic.ctx, ic.logEntry); err != nil {
		log.WithError(err).WithField("import_id", ic.logEntry.ID).Warn("failed to close import log")
	}
}

// archive uploads the original file; failures only warn
func (c *Coordinator) archive(ic *importContext) {
	if c.archiver == nil {
		return
	}

	key := ArchiveKey(ic.opts.UserID, ic.report.Filename, ic.startTime)
	url, err := c.archiver.Upload(ic.ctx, key, bytes.NewReader(ic.opts.Data), contentType(ic.report.Format))
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("failed to archive spreadsheet")
		c.sendProgress(ic.progressChan, EventWarning, fmt.Sprintf("Falha ao arquivar planilha: %v", err), nil)
		return
	}
	ic.report.Archive = url
	c.sendProgress(ic.progressChan, EventInfo, "Planilha arquivada", map[string]string{"url": url})
}

func (c *Coordinator) saveClosing(ic *importContext) error {
	if c.store == nil {
		return fmt.Errorf("no store configured to save the closing")
	}

	record := model.NewClosingRecord(ic.report.Result.Batch, ic.opts.UserID, c.now())
	if err := c.store.CreateClosing(ic.ctx, &record); err != nil {
		return fmt.Errorf("failed to save closing of %s: %w", record.Date, err)
	}
	ic.report.Closing = &record

	c.sendProgress(ic.progressChan, EventInfo, fmt.Sprintf("Fechamento de %s salvo", record.Date), map[string]string{
		"id":   record.ID,
		"date": record.Date,
	})
	return nil
}

func (c *Coordinator) fail(ic *importContext, err error) {
	ic.report.Duration = time.Since(ic.startTime)
	c.closeLog(ic, model.ImportStatusFailed, err.Error())

	log.WithError(err).WithField("filename", ic.report.Filename).Warn("import failed")
	c.sendProgress(ic.progressChan, EventError, err.Error(), ic.report)
}

// ArchiveKey object key of an archived spreadsheet
func ArchiveKey(userID, filename string, at time.Time) string {
	if userID == "" {
		userID = "anonymous"
	}
	return path.Join("imports", userID, at.UTC().Format("2006/01/02"), fmt.Sprintf("%d-%s", at.UnixNano(), filepath.Base(filename)))
}

func contentType(f parser.Format) string {
	switch f {
	case parser.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case parser.FormatXLS:
		return "application/vnd.ms-excel"
	case parser.FormatCSV:
		return "text/csv"
	}
	return "application/octet-stream"
}

// sendProgress never blocks; events are dropped when the channel is full
func (c *Coordinator) sendProgress(ch chan ProgressEvent, eventType, message string, data interface{}) {
	select {
	case ch <- ProgressEvent{Type: eventType, Message: message, Data: data, Timestamp: time.Now()}:
	default:
	}
}
