// Package provisioner makes sure build-time assets exist on disk, fetching
// them once when they are missing. A failed fetch never leaves a file behind,
// so the next build retries from scratch.
package provisioner

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	apperrors "lensdb/internal/errors"
	"lensdb/internal/errors/logging"
	"lensdb/internal/logger"
	"lensdb/internal/proxy"

	"github.com/dustin/go-humanize"
)

const module = "provisioner"

// HTTPClient represents the subset of http.Client methods required by the provisioner.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientFactory builds the HTTP client for a resolved proxy configuration.
type ClientFactory func(cfg proxy.ProxyConfig) HTTPClient

// Provisioner checks for, and if needed fetches, a single asset.
type Provisioner struct {
	asset     Asset
	log       logger.Logger
	fs        FileSystem
	env       proxy.Environment
	newClient ClientFactory
	reporter  ProgressReporter
}

// Option customises Provisioner construction.
type Option func(*Provisioner)

// WithFileSystem overrides the filesystem implementation.
func WithFileSystem(fs FileSystem) Option {
	return func(p *Provisioner) {
		p.fs = fs
	}
}

// WithEnvironment overrides where proxy variables are read from.
func WithEnvironment(env proxy.Environment) Option {
	return func(p *Provisioner) {
		p.env = env
	}
}

// WithClientFactory overrides how the HTTP client is built from the proxy settings.
func WithClientFactory(factory ClientFactory) Option {
	return func(p *Provisioner) {
		p.newClient = factory
	}
}

// WithProgressReporter overrides the progress reporter implementation.
func WithProgressReporter(reporter ProgressReporter) Option {
	return func(p *Provisioner) {
		p.reporter = reporter
	}
}

func defaultClientFactory(cfg proxy.ProxyConfig) HTTPClient {
	return proxy.NewHTTPClient(cfg)
}

// New constructs a Provisioner for asset.
func New(asset Asset, log logger.Logger, opts ...Option) (*Provisioner, error) {
	if log == nil {
		return nil, apperrors.SystemError(apperrors.CodeSystemGeneric, "logger must not be nil", nil).
			WithModule(module).
			WithOperation("New")
	}
	if asset.URL == "" || asset.Path == "" {
		return nil, apperrors.ConfigError(apperrors.CodeConfigGeneric, "asset must have a url and a path", nil).
			WithModule(module).
			WithOperation("New").
			WithField("asset", asset.Name)
	}

	p := &Provisioner{
		asset:     asset,
		log:       log,
		fs:        OSFileSystem{},
		env:       proxy.OSEnvironment{},
		newClient: defaultClientFactory,
		reporter:  NoopProgressReporter{},
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.fs == nil {
		p.fs = OSFileSystem{}
	}
	if p.env == nil {
		p.env = proxy.OSEnvironment{}
	}
	if p.newClient == nil {
		p.newClient = defaultClientFactory
	}
	if p.reporter == nil {
		p.reporter = NoopProgressReporter{}
	}

	return p, nil
}

// TargetPath is where the asset lives for the given project root.
func (p *Provisioner) TargetPath(projectRoot string) string {
	return p.asset.TargetPath(projectRoot)
}

// Ensure makes the asset present under projectRoot. The returned error is
// non-nil only when the destination directory or file cannot be created.
// Network and mid-transfer failures are logged as warnings and reported
// through Result.
func (p *Provisioner) Ensure(ctx context.Context, projectRoot string) (Result, error) {
	target := p.TargetPath(projectRoot)
	result := Result{Path: target}

	if p.exists(target) {
		p.log.DebugContext(ctx, p.asset.Label()+" already present", logger.String("path", target))
		result.Outcome = AlreadyPresent
		return result, nil
	}

	p.log.Info("%s not found, attempting to download...", p.asset.Label())

	dir := filepath.Dir(target)
	if err := p.fs.MkdirAll(dir, 0o755); err != nil {
		return result, apperrors.SystemError(apperrors.CodeCreateDirectory, "failed to create destination directory", err).
			WithModule(module).
			WithOperation("Ensure").
			WithField("path", dir)
	}

	proxyCfg := proxy.Resolve(p.env)
	if proxyCfg.IsSet() {
		p.log.Info("Proxy detected for %s: %s", p.asset.Label(), proxyCfg.URL)
		if _, err := proxyCfg.Parse(); err != nil {
			p.log.Debug("Ignoring proxy from %s: %v", proxyCfg.Source, err)
		}
	}

	resp, fetchErr := p.fetch(ctx, p.newClient(proxyCfg))
	if fetchErr != nil {
		logging.Warn(ctx, p.log, fmt.Sprintf("Failed to download %s from %s", p.asset.Label(), p.asset.URL), fetchErr)
		p.log.Warn("Build will continue, but %s will be missing.", p.asset.Label())
		result.Outcome = NetworkFailure
		result.Err = fetchErr
		return result, nil
	}
	defer resp.Body.Close()

	file, err := p.fs.Create(target)
	if err != nil {
		return result, apperrors.SystemError(apperrors.CodeCreateFile, "failed to create destination file", err).
			WithModule(module).
			WithOperation("Ensure").
			WithField("path", target)
	}

	written, writeErr := p.write(file, resp)
	if writeErr != nil {
		_ = p.fs.Remove(target)

		appErr := apperrors.NewRecoverable(apperrors.ErrCategorySystem, apperrors.CodePartialWrite, "failed to write downloaded data", writeErr).
			WithModule(module).
			WithOperation("Ensure").
			WithFields(apperrors.Metadata{
				"path":    target,
				"written": written,
			})
		logging.Warn(ctx, p.log, "Failed to write "+p.asset.Label(), appErr)
		result.Outcome = WriteFailure
		result.Err = appErr
		return result, nil
	}

	result.Outcome = Success
	result.Bytes = written
	p.log.Info("✓ %s downloaded successfully (%s)", p.asset.Label(), humanize.Bytes(uint64(written)))
	return result, nil
}

// exists mirrors a plain existence check: any stat failure counts as absent.
func (p *Provisioner) exists(path string) bool {
	_, err := p.fs.Stat(path)
	if err == nil {
		return true
	}
	if !stdErrors.Is(err, os.ErrNotExist) {
		p.log.Debug("Treating %s as missing: %v", path, err)
	}
	return false
}

func (p *Provisioner) fetch(ctx context.Context, client HTTPClient) (*http.Response, *apperrors.AppError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.asset.URL, nil)
	if err != nil {
		return nil, apperrors.NetworkError(apperrors.CodeRequestFailed, "failed to create download request", err).
			WithModule(module).
			WithOperation("fetch").
			WithField("url", p.asset.URL)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.NetworkError(apperrors.CodeRequestFailed, "download request failed", err).
			WithModule(module).
			WithOperation("fetch").
			WithField("url", p.asset.URL)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, apperrors.NetworkError(apperrors.CodeBadStatus, "download failed with unexpected status", nil).
			WithModule(module).
			WithOperation("fetch").
			WithFields(apperrors.Metadata{
				"url":    p.asset.URL,
				"status": resp.StatusCode,
			})
	}

	return resp, nil
}

// write streams the body into file and closes it. A close failure counts as
// a write failure since buffered data may not have reached the disk.
func (p *Provisioner) write(file io.WriteCloser, resp *http.Response) (int64, error) {
	body := newProgressReader(resp.Body, p.asset.Label(), resp.ContentLength, p.reporter)

	written, copyErr := io.Copy(file, body)
	closeErr := file.Close()

	if copyErr != nil {
		return written, copyErr
	}
	if closeErr != nil {
		return written, closeErr
	}

	body.finish()
	return written, nil
}
