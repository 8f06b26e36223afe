package deps

import (
	"os"
	"strings"
)

// Env is the explicit search-path context threaded through the pipeline.
// The tool installer prepends freshly installed tool directories here and
// every later external call observes the mutation for the rest of the
// run; it is never rolled back.
type Env struct {
	base     []string
	prepends []string
}

// NewEnv snapshots the current process environment.
func NewEnv() *Env {
	return NewEnvFrom(os.Environ())
}

// NewEnvFrom builds an Env over an explicit base environment, used by
// tests to keep assertions hermetic.
func NewEnvFrom(base []string) *Env {
	return &Env{base: append([]string(nil), base...)}
}

// Prepend puts dir at the front of the search path unless it is already
// present.
func (e *Env) Prepend(dir string) {
	for _, existing := range e.prepends {
		if existing == dir {
			return
		}
	}
	if strings.Contains(e.basePath(), dir+string(os.PathListSeparator)) {
		return
	}
	e.prepends = append([]string{dir}, e.prepends...)
}

// Prepends returns the directories added to the search path so far.
func (e *Env) Prepends() []string {
	return append([]string(nil), e.prepends...)
}

// Path returns the effective search path value.
func (e *Env) Path() string {
	base := e.basePath()
	if len(e.prepends) == 0 {
		return base
	}
	sep := string(os.PathListSeparator)
	joined := strings.Join(e.prepends, sep)
	if base == "" {
		return joined
	}
	return joined + sep + base
}

// Environ returns the full environment with the effective search path
// substituted, suitable for exec.Step.Env.
func (e *Env) Environ() []string {
	environ := make([]string, 0, len(e.base)+1)
	replaced := false
	for _, kv := range e.base {
		if isPathVar(kv) {
			environ = append(environ, kv[:strings.IndexByte(kv, '=')+1]+e.Path())
			replaced = true
			continue
		}
		environ = append(environ, kv)
	}
	if !replaced {
		environ = append(environ, "PATH="+e.Path())
	}
	return environ
}

func (e *Env) basePath() string {
	for _, kv := range e.base {
		if isPathVar(kv) {
			return kv[strings.IndexByte(kv, '=')+1:]
		}
	}
	return ""
}

// isPathVar matches the search-path variable case-insensitively; Windows
// environments spell it "Path".
func isPathVar(kv string) bool {
	i := strings.IndexByte(kv, '=')
	return i > 0 && strings.EqualFold(kv[:i], "PATH")
}
