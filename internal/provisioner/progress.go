package provisioner

import (
	"io"
	"time"

	"lensdb/internal/logger"

	"github.com/dustin/go-humanize"
)

// ProgressReporter receives transfer progress updates.
type ProgressReporter interface {
	OnStart(name string, total int64)
	OnProgress(name string, current, total int64)
	OnComplete(name string, total int64, elapsed time.Duration)
}

// NoopProgressReporter discards all progress events.
type NoopProgressReporter struct{}

func (NoopProgressReporter) OnStart(string, int64)                   {}
func (NoopProgressReporter) OnProgress(string, int64, int64)         {}
func (NoopProgressReporter) OnComplete(string, int64, time.Duration) {}

// LogProgressReporter writes throttled progress lines at debug level.
type LogProgressReporter struct {
	log        logger.Logger
	interval   time.Duration
	lastUpdate time.Time
}

// NewLogProgressReporter reports at most once per interval.
func NewLogProgressReporter(log logger.Logger, interval time.Duration) *LogProgressReporter {
	if interval <= 0 {
		interval = time.Second
	}
	return &LogProgressReporter{log: log, interval: interval}
}

func (r *LogProgressReporter) OnStart(name string, total int64) {
	r.lastUpdate = time.Now()
	if total > 0 {
		r.log.Debug("%s: starting transfer (%s)", name, humanize.Bytes(uint64(total)))
		return
	}
	r.log.Debug("%s: starting transfer (size unknown)", name)
}

func (r *LogProgressReporter) OnProgress(name string, current, total int64) {
	now := time.Now()
	if now.Sub(r.lastUpdate) < r.interval {
		return
	}
	r.lastUpdate = now

	if total > 0 {
		r.log.Debug("%s: %s of %s", name, humanize.Bytes(uint64(current)), humanize.Bytes(uint64(total)))
		return
	}
	r.log.Debug("%s: %s", name, humanize.Bytes(uint64(current)))
}

func (r *LogProgressReporter) OnComplete(name string, total int64, elapsed time.Duration) {
	r.log.Debug("%s: transferred %s in %s", name, humanize.Bytes(uint64(total)), elapsed.Round(time.Millisecond))
}

// progressReader counts bytes read and relays them to a reporter.
type progressReader struct {
	reader   io.Reader
	name     string
	total    int64
	current  int64
	reporter ProgressReporter
	started  time.Time
}

func newProgressReader(r io.Reader, name string, total int64, reporter ProgressReporter) *progressReader {
	reporter.OnStart(name, total)
	return &progressReader{
		reader:   r,
		name:     name,
		total:    total,
		reporter: reporter,
		started:  time.Now(),
	}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.current += int64(n)
		pr.reporter.OnProgress(pr.name, pr.current, pr.total)
	}
	return n, err
}

func (pr *progressReader) finish() {
	pr.reporter.OnComplete(pr.name, pr.current, time.Since(pr.started))
}
