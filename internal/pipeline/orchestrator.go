package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/hbtools/deckybuild/internal/config"
	"github.com/hbtools/deckybuild/internal/deploy"
	"github.com/hbtools/deckybuild/internal/deps"
	"github.com/hbtools/deckybuild/internal/errors"
	"github.com/hbtools/deckybuild/internal/exec"
	"github.com/hbtools/deckybuild/internal/fetch"
	"github.com/hbtools/deckybuild/internal/frontend"
	"github.com/hbtools/deckybuild/internal/fsutil"
	"github.com/hbtools/deckybuild/internal/hostenv"
	"github.com/hbtools/deckybuild/internal/log"
	"github.com/hbtools/deckybuild/internal/pack"
	"github.com/hbtools/deckybuild/internal/stage"
	"github.com/hbtools/deckybuild/internal/workspace"
)

// Request is the single input of a build run. The release reference may
// be a tag, a branch, or the sentinel, which the fetch stage resolves to
// a concrete tag when it can.
type Request struct {
	ReleaseRef string
}

// Orchestrator sequences the build stages: strictly sequential,
// fail-fast, one terminal outcome. Cross-stage state is limited to the
// resolved release and the temporary-artifact set, both owned here.
type Orchestrator struct {
	Config     *config.Config
	Layout     *workspace.Layout
	Runner     exec.Runner
	Env        *deps.Env
	Logger     *log.Logger
	Remover    *fsutil.Remover
	Artifacts  *workspace.ArtifactSet
	Integrator hostenv.Integrator

	// resolved release, rewritten once by the fetch stage
	release string
}

// New wires an orchestrator with real collaborators.
func New(cfg *config.Config, layout *workspace.Layout, logger *log.Logger) *Orchestrator {
	runner := exec.NewCommandRunner()
	env := deps.NewEnv()
	remover := fsutil.NewRemover(logger)
	return &Orchestrator{
		Config:     cfg,
		Layout:     layout,
		Runner:     runner,
		Env:        env,
		Logger:     logger,
		Remover:    remover,
		Artifacts:  workspace.NewArtifactSet(remover),
		Integrator: hostenv.NewIntegrator(runner, env),
	}
}

type pipelineStage struct {
	name string
	run  func() error
}

// Run executes the whole pipeline for a request. Temporary artifacts
// are released on every exit path.
func (o *Orchestrator) Run(req Request) error {
	defer o.Artifacts.Release()

	o.release = req.ReleaseRef
	if o.release == "" {
		o.release = fetch.Sentinel
	}

	manifest := &RunManifest{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	o.Logger.Info("starting build", "release", o.release)

	for _, s := range o.stages() {
		o.Logger.Info("stage started", "stage", s.name)
		start := time.Now()

		if err := s.run(); err != nil {
			manifest.RecordStage(s.name, "failed", time.Since(start))
			o.Logger.LogError(err)
			return fmt.Errorf("stage %q: %w", s.name, err)
		}

		manifest.RecordStage(s.name, "ok", time.Since(start))
		o.Logger.Info("stage completed", "stage", s.name, "duration", time.Since(start))
	}

	manifest.Release = o.release
	manifest.EndedAt = time.Now()
	o.writeManifest(manifest)

	o.Logger.Info("build completed", "release", o.release, "runtime_tree", o.Layout.UserHomebrewDir)
	return nil
}

func (o *Orchestrator) stages() []pipelineStage {
	checker := &deps.Checker{
		Runner: o.Runner,
		Env:    o.Env,
		Config: o.Config,
		Logger: o.Logger,
		Installer: deps.NewNodeInstaller(o.Runner, o.Env, o.Config, o.Logger,
			o.Artifacts, o.Layout.TempDir),
	}
	fetcher := &fetch.Fetcher{
		Runner:  o.Runner,
		Env:     o.Env,
		Remover: o.Remover,
		Logger:  o.Logger,
		RepoURL: o.Config.RepoURL,
	}
	builder := &frontend.Builder{
		Runner:    o.Runner,
		Env:       o.Env,
		Logger:    o.Logger,
		Artifacts: o.Artifacts,
	}
	stager := &stage.Stager{
		Layout: o.Layout,
		Runner: o.Runner,
		Env:    o.Env,
		Logger: o.Logger,
	}
	packager := &pack.Packager{
		Layout:    o.Layout,
		Runner:    o.Runner,
		Env:       o.Env,
		Logger:    o.Logger,
		Artifacts: o.Artifacts,
	}
	publisher := &deploy.Publisher{
		Layout: o.Layout,
		Logger: o.Logger,
	}
	setup := hostenv.NewSetup(o.Integrator, o.Layout, o.Logger)

	return []pipelineStage{
		{"check dependencies", checker.Check},
		{"clean workspace", o.cleanWorkspace},
		{"fetch sources", func() error {
			resolved, err := fetcher.Fetch(o.Layout.AppDir, o.release)
			if err != nil {
				return err
			}
			o.release = resolved
			return nil
		}},
		{"ensure runtime trees", o.ensureRuntimeTrees},
		{"build frontend", func() error {
			return builder.Build(o.Layout.FrontendDir(), o.release)
		}},
		{"stage backend", func() error {
			return stager.Stage(o.release)
		}},
		{"install backend requirements", stager.InstallRequirements},
		{"package executables", packager.Package},
		{"publish artifacts", publisher.Publish},
		{"host integration", setup.Configure},
	}
}

// cleanWorkspace wipes the scratch trees for a clean slate. Removal is
// advisory; a locked leftover never aborts the run.
func (o *Orchestrator) cleanWorkspace() error {
	for _, path := range []string{o.Layout.AppDir, o.Layout.SrcDir, o.Layout.HomebrewDir} {
		o.Remover.Remove(path)
	}
	if err := os.MkdirAll(o.Layout.SrcDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "create staging directory", err)
	}
	return nil
}

// ensureRuntimeTrees creates the staging and per-user runtime forests,
// a no-op for subtrees already present.
func (o *Orchestrator) ensureRuntimeTrees() error {
	if err := os.MkdirAll(filepath.Join(o.Layout.HomebrewDir, "dist"), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "create staging dist tree", err)
	}
	for _, root := range []string{o.Layout.HomebrewDir, o.Layout.UserHomebrewDir} {
		if err := workspace.EnsureTree(root, o.Config.RuntimeSubtrees); err != nil {
			return errors.Wrap(errors.ErrCodeDirectoryFailed, "create runtime tree", err)
		}
	}
	return nil
}

// writeManifest records the run under the dist tree. Failure here is
// advisory: the build already succeeded.
func (o *Orchestrator) writeManifest(manifest *RunManifest) {
	for _, name := range []string{pack.ConsoleName, pack.DetachedName} {
		path := filepath.Join(o.Layout.DistDir, name+pack.ExeSuffix())
		if err := manifest.AddArtifactHash(name, path); err != nil {
			o.Logger.Debug("could not hash artifact", "path", path, "error", err.Error())
		}
	}
	markerPath := filepath.Join(o.Layout.UserHomebrewDir, workspace.MarkerName)
	if err := manifest.AddArtifactHash("version_marker", markerPath); err != nil {
		o.Logger.Debug("could not hash artifact", "path", markerPath, "error", err.Error())
	}

	path, err := manifest.Save(o.Layout.DistDir)
	if err != nil {
		o.Logger.Warn("could not write run manifest", "error", err.Error())
		return
	}
	o.Logger.Info("wrote run manifest", "path", path)
}

// Release returns the resolved release after a run.
func (o *Orchestrator) Release() string {
	return o.release
}
