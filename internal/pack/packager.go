package pack

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hbtools/deckybuild/internal/deps"
	"github.com/hbtools/deckybuild/internal/errors"
	"github.com/hbtools/deckybuild/internal/exec"
	"github.com/hbtools/deckybuild/internal/log"
	"github.com/hbtools/deckybuild/internal/workspace"
)

// Executable names produced by the packager. The detached variant runs
// without an attached console window.
const (
	ConsoleName  = "PluginLoader"
	DetachedName = "PluginLoader_noconsole"
)

// ExeSuffix is the host executable extension.
func ExeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

// Packager invokes the single-file packager on the staged entrypoint,
// once per variant. Both variants are mandatory; the first failure
// aborts the run and the remaining variant is not attempted.
type Packager struct {
	Layout    *workspace.Layout
	Runner    exec.Runner
	Env       *deps.Env
	Logger    *log.Logger
	Artifacts *workspace.ArtifactSet
}

// Package builds the console-attached and console-detached executables.
func (p *Packager) Package() error {
	if err := p.packageVariant(ConsoleName, false); err != nil {
		return err
	}
	return p.packageVariant(DetachedName, true)
}

func (p *Packager) packageVariant(name string, detached bool) error {
	p.Logger.Info("packaging executable", "variant", name)

	args := []string{"pyinstaller"}
	if detached {
		args = append(args, "--noconsole")
	}
	args = append(args, p.commonArgs(name)...)

	result, err := p.Runner.Run(exec.Step{
		Name: "package " + name,
		Argv: args,
		Dir:  p.Layout.Root,
		Env:  p.Env.Environ(),
	})
	if err != nil {
		return errors.NewPackagerFailedError(name, err)
	}
	if result.ExitCode != 0 {
		return errors.NewPackagerFailedError(name,
			fmt.Errorf("exit code %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr)))
	}

	// Intermediates the packager leaves next to the entrypoint.
	p.Artifacts.Register(filepath.Join(p.Layout.Root, "build"))
	p.Artifacts.Register(filepath.Join(p.Layout.Root, name+".spec"))

	built := filepath.Join(p.Layout.DistDir, name+ExeSuffix())
	if _, err := os.Stat(built); err != nil {
		return errors.NewPackagerFailedError(name,
			fmt.Errorf("expected artifact missing: %s", built))
	}

	p.Logger.Info("packaged executable", "path", built)
	return nil
}

// commonArgs builds the shared packager arguments: single-file output
// and the declared data subtrees embedded by reference.
func (p *Packager) commonArgs(name string) []string {
	src := p.Layout.SrcDir
	args := []string{
		"--noconfirm",
		"--onefile",
		"--name", name,
		"--distpath", p.Layout.DistDir,
	}
	for _, data := range []string{"static", "locales", "plugin"} {
		args = append(args,
			"--add-data", fmt.Sprintf("%s%cdecky_loader/%s",
				filepath.Join(src, "decky_loader", data), dataSeparator(), data))
	}
	args = append(args,
		"--hidden-import=logging.handlers",
		"--hidden-import=sqlite3",
		filepath.Join(src, "main.py"),
	)
	return args
}

// dataSeparator is the packager's src/dest separator, which follows the
// host path list convention.
func dataSeparator() rune {
	if runtime.GOOS == "windows" {
		return ';'
	}
	return ':'
}
