package export

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/newthinker/screener/internal/core"
	"github.com/newthinker/screener/internal/render"
	"github.com/newthinker/screener/internal/screener"
	"go.uber.org/zap"
)

const (
	rootDir    = "reports"
	dateLayout = "2006-01-02"
)

// Config selects and configures the storage backend
type Config struct {
	Type   string // "localfs" or "s3"
	Format string // "json" or "yaml"
	Path   string
	S3     S3Config
}

// NewStorage builds the backend named by cfg.Type
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "localfs", "":
		return NewLocalFS(cfg.Path)
	case "s3":
		if cfg.S3.Bucket == "" {
			return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("s3 bucket required"))
		}
		return NewS3(cfg.S3)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown export type %q", cfg.Type))
	}
}

// Exporter writes reports to a Storage as reports/YYYY-MM-DD/<id>.<ext>
type Exporter struct {
	storage Storage
	format  string
	logger  *zap.Logger
	now     func() time.Time
}

// NewExporter creates an exporter writing format ("json" or "yaml")
func NewExporter(storage Storage, format string, logger ...*zap.Logger) (*Exporter, error) {
	if format == "" {
		format = render.FormatJSON
	}
	if format != render.FormatJSON && format != render.FormatYAML {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown export format %q", format))
	}

	log := zap.NewNop()
	if len(logger) > 0 && logger[0] != nil {
		log = logger[0]
	}

	return &Exporter{
		storage: storage,
		format:  format,
		logger:  log,
		now:     time.Now,
	}, nil
}

// PathFor returns the storage path of a report
func (e *Exporter) PathFor(report *screener.Report) string {
	day := report.GeneratedAt.UTC().Format(dateLayout)
	return path.Join(rootDir, day, report.ID+"."+e.format)
}

// Export writes the report and returns its storage path
func (e *Exporter) Export(ctx context.Context, report *screener.Report) (string, error) {
	if report.ID == "" {
		return "", core.WrapError(core.ErrExportFailed, fmt.Errorf("report has no id"))
	}

	data, err := render.Marshal(report, e.format)
	if err != nil {
		return "", core.WrapError(core.ErrExportFailed, err)
	}

	p := e.PathFor(report)
	if err := e.storage.Write(ctx, p, data); err != nil {
		return "", core.WrapError(core.ErrExportFailed, fmt.Errorf("writing %s: %w", p, err))
	}

	e.logger.Info("report exported",
		zap.String("path", p),
		zap.Int("bytes", len(data)),
	)
	return p, nil
}

// Load reads back an exported report; the format follows the extension
func (e *Exporter) Load(ctx context.Context, p string) (*screener.Report, error) {
	ok, err := e.storage.Exists(ctx, p)
	if err != nil {
		return nil, core.WrapError(core.ErrExportFailed, err)
	}
	if !ok {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no report at %s", p))
	}

	data, err := e.storage.Read(ctx, p)
	if err != nil {
		return nil, core.WrapError(core.ErrExportFailed, err)
	}
	return render.Unmarshal(data, strings.TrimPrefix(path.Ext(p), "."))
}

// List returns exported report paths, oldest day first
func (e *Exporter) List(ctx context.Context) ([]string, error) {
	paths, err := e.storage.List(ctx, rootDir)
	if err != nil {
		return nil, core.WrapError(core.ErrExportFailed, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Prune deletes reports from days older than keepDays and returns how many
// were removed. keepDays <= 0 keeps everything.
func (e *Exporter) Prune(ctx context.Context, keepDays int) (int, error) {
	if keepDays <= 0 {
		return 0, nil
	}

	paths, err := e.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := e.now().UTC().AddDate(0, 0, -keepDays).Format(dateLayout)
	removed := 0
	for _, p := range paths {
		parts := strings.Split(p, "/")
		if len(parts) < 3 || parts[1] >= cutoff {
			continue
		}
		if err := e.storage.Delete(ctx, p); err != nil {
			return removed, core.WrapError(core.ErrExportFailed, fmt.Errorf("deleting %s: %w", p, err))
		}
		removed++
	}

	if removed > 0 {
		e.logger.Info("pruned exported reports",
			zap.Int("removed", removed),
			zap.String("before", cutoff),
		)
	}
	return removed, nil
}
