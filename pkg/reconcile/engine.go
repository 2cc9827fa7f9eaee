package reconcile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/buildsync/pkg/cache"
	bserrors "github.com/matzehuels/buildsync/pkg/errors"
	"github.com/matzehuels/buildsync/pkg/imports"
	"github.com/matzehuels/buildsync/pkg/installer"
	"github.com/matzehuels/buildsync/pkg/manifest"
	"github.com/matzehuels/buildsync/pkg/observability"
	"github.com/matzehuels/buildsync/pkg/registry"
	"github.com/matzehuels/buildsync/pkg/transform"
	"github.com/matzehuels/buildsync/pkg/workspace"
)

// Workspace names the two directories a reconciliation touches.
type Workspace struct {
	BuildRoot  string // scanned; receives the build manifest and transform config
	SourceRoot string // the user's project; receives reflected manifests
}

// Options configure an Engine. Zero values select the defaults noted.
type Options struct {
	Collector imports.Collector        // default imports.NewScanner()
	Resolver  registry.VersionResolver // default registry.Static
	Installer installer.Installer      // default installer.NewCommand("")
	Logger    *log.Logger              // default log.Default()

	ManifestName  string           // default "package.json"
	TransformName string           // default ".babelrc"
	BaseTransform transform.Config // default transform.Base()
	Ignore        []string         // extra doublestar scan ignores

	// Strict turns a non-zero installer exit into an INSTALL_FAILED error
	// returned before the source manifest is updated.
	Strict bool

	// Concurrency bounds parallel import collection.
	Concurrency int
}

// Report summarizes one reconciliation.
type Report struct {
	RunID     string
	Started   time.Time
	Duration  time.Duration
	Files     int
	Deps      []string // dependency set found in the build workspace
	Decision  Decision
	Install   *installer.Result // nil when no install ran
	Added     []string          // packages newly declared in the build manifest
	Reflected bool              // source manifest rewritten
	Transform transform.Source
}

// Installed reports whether the installer ran.
func (r *Report) Installed() bool { return r.Install != nil }

// Engine reconciles one build workspace. Calls to Reconcile are serialized.
type Engine struct {
	ws     Workspace
	opts   Options
	logger *log.Logger

	mu       sync.Mutex
	firstRun bool   // true until the first install has run
	digest   string // build manifest digest after the last pass
	last     *Report
}

// New returns an Engine for ws. A new engine treats its first
// reconciliation as a cold start and always installs.
func New(ws Workspace, opts Options) (*Engine, error) {
	if ws.BuildRoot == "" || ws.SourceRoot == "" {
		return nil, bserrors.New(bserrors.ErrCodeInvalidPath, "build root and source root are required")
	}
	var err error
	if ws.BuildRoot, err = filepath.Abs(ws.BuildRoot); err != nil {
		return nil, bserrors.Wrap(bserrors.ErrCodeInvalidPath, err, "resolve build root")
	}
	if ws.SourceRoot, err = filepath.Abs(ws.SourceRoot); err != nil {
		return nil, bserrors.Wrap(bserrors.ErrCodeInvalidPath, err, "resolve source root")
	}
	if ws.BuildRoot == ws.SourceRoot {
		return nil, bserrors.New(bserrors.ErrCodeInvalidPath, "build root and source root must differ")
	}

	if opts.ManifestName == "" {
		opts.ManifestName = workspace.ManifestName
	}
	if opts.TransformName == "" {
		opts.TransformName = transform.Filename
	}
	for _, name := range []string{opts.ManifestName, opts.TransformName} {
		if err := bserrors.ValidateFilename(name); err != nil {
			return nil, err
		}
	}
	if err := (workspace.Options{Ignore: opts.Ignore}).Validate(); err != nil {
		return nil, err
	}
	if opts.Collector == nil {
		opts.Collector = imports.NewScanner()
	}
	if opts.Resolver == nil {
		opts.Resolver = registry.Static{}
	}
	if opts.Installer == nil {
		opts.Installer = installer.NewCommand("")
	}
	if opts.BaseTransform == nil {
		opts.BaseTransform = transform.Base()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Engine{ws: ws, opts: opts, logger: logger, firstRun: true}, nil
}

// Workspace returns the engine's resolved workspace.
func (e *Engine) Workspace() Workspace { return e.ws }

// FirstRun reports whether the next reconciliation is a cold start.
func (e *Engine) FirstRun() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.firstRun
}

// LastReport returns the report of the most recent completed pass, or nil.
func (e *Engine) LastReport() *Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// ManifestPath returns the build manifest path.
func (e *Engine) ManifestPath() string {
	return filepath.Join(e.ws.BuildRoot, e.opts.ManifestName)
}

// Reconcile runs one pass. filter optionally restricts import collection to
// the given absolute paths.
//
// When the installer cannot be started, times out, is cancelled, or exits
// non-zero in strict mode, the transform config is still written and the
// report is returned together with the installer's error (INSTALL_FAILED,
// TIMEOUT or the context error). Any other error aborts the pass and returns
// a nil report.
func (e *Engine) Reconcile(ctx context.Context, filter []string) (*Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rep := &Report{RunID: uuid.NewString(), Started: time.Now()}
	logger := e.logger.With("run", rep.RunID[:8])
	hooks := observability.Reconcile()
	root := e.ws.BuildRoot

	files, err := workspace.Scan(ctx, root, workspace.Options{Ignore: e.opts.Ignore})
	if err != nil {
		return nil, err
	}
	built, err := BuildDependencySet(ctx, files, e.opts.Collector, BuildOptions{
		ManifestName:   e.opts.ManifestName,
		ManifestDigest: e.digest,
		Filter:         filter,
		Concurrency:    e.opts.Concurrency,
	})
	if err != nil {
		return nil, err
	}
	rep.Files = built.Files
	rep.Deps = built.Deps.Names()
	hooks.OnScanComplete(ctx, root, built.Files, built.Deps.Len(), time.Since(rep.Started))
	logger.Debug("scanned build workspace", "files", built.Files, "deps", built.Deps.Len())

	rep.Decision = Decide(manifest.LoadOrNil(e.ManifestPath()), built.Deps, built.ManifestChanged, e.firstRun)
	hooks.OnDecision(ctx, root, rep.Decision.Install, rep.Decision.Reason)
	logger.Debug("staleness decided", "install", rep.Decision.Install, "reason", rep.Decision.Reason)

	var installErr error
	if rep.Decision.Install {
		if err := e.install(ctx, logger, rep, built.Deps); err != nil {
			if !installerFailure(err) {
				return nil, err
			}
			installErr = err
		}
	}
	e.digest = fileDigest(e.ManifestPath())

	tres := transform.Synthesize(e.opts.BaseTransform, filepath.Join(e.ws.SourceRoot, e.opts.TransformName))
	if tres.Err != nil {
		logger.Warn("ignoring transform override", "err", tres.Err)
	}
	if err := transform.Write(filepath.Join(root, e.opts.TransformName), tres.Config); err != nil {
		return nil, err
	}
	rep.Transform = tres.Source

	rep.Duration = time.Since(rep.Started)
	e.last = rep
	logger.Info("reconciled", "deps", len(rep.Deps), "install", rep.Installed(), "reason", rep.Decision.Reason, "duration", rep.Duration.Round(time.Millisecond))
	return rep, installErr
}

func (e *Engine) install(ctx context.Context, logger *log.Logger, rep *Report, deps *DependencySet) error {
	hooks := observability.Reconcile()
	root := e.ws.BuildRoot

	synth, err := SynthesizeManifest(ctx, e.ManifestPath(), deps, e.opts.Resolver)
	if err != nil {
		return err
	}
	rep.Added = synth.Added
	if synth.NewlyFound {
		logger.Info("new dependencies", "added", synth.Added)
	}

	hooks.OnInstallStart(ctx, root, len(synth.Deps))
	start := time.Now()
	res, err := e.opts.Installer.Install(ctx, root)
	exit := -1
	if res != nil {
		exit = res.ExitCode
	}
	hooks.OnInstallComplete(ctx, root, exit, time.Since(start), err)
	if err != nil {
		rep.Install = res
		return err
	}
	rep.Install = res
	e.firstRun = false

	if !res.OK() {
		logger.Warn("installer exited with non-zero status", "exit", res.ExitCode)
		if e.opts.Strict {
			return bserrors.New(bserrors.ErrCodeInstall, "installer exited with status %d", res.ExitCode)
		}
	}

	if !synth.NewlyFound {
		return nil
	}
	sourcePath := filepath.Join(e.ws.SourceRoot, e.opts.ManifestName)
	logger.Info("Updating package.json", "path", sourcePath)
	if _, err := Reflect(sourcePath, synth.Manifest); err != nil {
		return err
	}
	rep.Reflected = true
	hooks.OnReflect(ctx, sourcePath, synth.Added)
	return nil
}

// installerFailure reports whether err came from running the installer:
// a start failure, a timeout or cancellation while it ran.
func installerFailure(err error) bool {
	return bserrors.Is(err, bserrors.ErrCodeInstall) ||
		bserrors.Is(err, bserrors.ErrCodeTimeout) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func fileDigest(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
