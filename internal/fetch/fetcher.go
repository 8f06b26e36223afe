package fetch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/hbtools/deckybuild/internal/deps"
	"github.com/hbtools/deckybuild/internal/errors"
	"github.com/hbtools/deckybuild/internal/exec"
	"github.com/hbtools/deckybuild/internal/fsutil"
	"github.com/hbtools/deckybuild/internal/log"
)

// Sentinel is the placeholder release reference resolved to a concrete
// tag when possible.
const Sentinel = "main"

// Fetcher clones the loader repository at a requested reference.
type Fetcher struct {
	Runner  exec.Runner
	Env     *deps.Env
	Remover *fsutil.Remover
	Logger  *log.Logger
	RepoURL string
}

// Fetch removes any stale destination, clones at full history, and
// checks out ref. For the sentinel reference it attempts to resolve the
// most recent reachable tag and returns it as the effective release;
// resolution failure keeps the sentinel and is not fatal. A checkout
// failure on a bad reference is fatal.
func (f *Fetcher) Fetch(dest, ref string) (string, error) {
	f.Remover.Remove(dest)

	f.Logger.Info("cloning repository", "url", f.RepoURL, "ref", ref)
	result, err := f.Runner.Run(exec.Step{
		Name: "git clone",
		Argv: []string{"git", "clone", f.RepoURL, dest},
		Env:  f.Env.Environ(),
	})
	if err != nil {
		return "", errors.NewCloneFailedError(f.RepoURL, err)
	}
	if result.ExitCode != 0 {
		return "", errors.NewCloneFailedError(f.RepoURL, resultErr(result))
	}

	result, err = f.Runner.Run(exec.Step{
		Name: "git checkout",
		Argv: []string{"git", "checkout", ref},
		Dir:  dest,
		Env:  f.Env.Environ(),
	})
	if err != nil {
		return "", errors.NewCheckoutFailedError(ref, err)
	}
	if result.ExitCode != 0 {
		return "", errors.NewCheckoutFailedError(ref, resultErr(result))
	}

	if ref != Sentinel {
		return ref, nil
	}

	if tag, ok := f.resolveLatestTag(dest); ok {
		f.Logger.Info("resolved sentinel release", "tag", tag)
		return tag, nil
	}

	f.Logger.Warn("could not resolve a release tag, keeping sentinel", "ref", ref)
	return ref, nil
}

// resolveLatestTag picks the newest reachable tag: semver ordering over
// the merged tag list, falling back to git describe when no tag parses.
func (f *Fetcher) resolveLatestTag(dest string) (string, bool) {
	result, err := f.Runner.Run(exec.Step{
		Name: "git tag list",
		Argv: []string{"git", "tag", "--merged"},
		Dir:  dest,
		Env:  f.Env.Environ(),
	})
	if err == nil && result.ExitCode == 0 {
		if tag, ok := highestSemverTag(result.Stdout); ok {
			return tag, true
		}
	}

	result, err = f.Runner.Run(exec.Step{
		Name: "git describe",
		Argv: []string{"git", "describe", "--tags", "--abbrev=0"},
		Dir:  dest,
		Env:  f.Env.Environ(),
	})
	if err != nil || result.ExitCode != 0 {
		return "", false
	}
	tag := strings.TrimSpace(result.Stdout)
	return tag, tag != ""
}

// highestSemverTag returns the largest semver-parseable tag from a
// newline-separated list, keeping the original spelling ("v" prefix
// included).
func highestSemverTag(list string) (string, bool) {
	type parsed struct {
		raw string
		ver *semver.Version
	}

	var tags []parsed
	for _, line := range strings.Split(list, "\n") {
		raw := strings.TrimSpace(line)
		if raw == "" {
			continue
		}
		ver, err := semver.NewVersion(strings.TrimPrefix(raw, "v"))
		if err != nil {
			continue
		}
		tags = append(tags, parsed{raw: raw, ver: ver})
	}
	if len(tags) == 0 {
		return "", false
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].ver.LessThan(tags[j].ver)
	})
	return tags[len(tags)-1].raw, true
}

func resultErr(result *exec.Result) error {
	return fmt.Errorf("exit code %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
}
