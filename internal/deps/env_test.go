package deps

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvPrepend(t *testing.T) {
	sep := string(os.PathListSeparator)
	env := NewEnvFrom([]string{"PATH=/usr/bin" + sep + "/bin", "HOME=/home/u"})

	env.Prepend("/opt/nodejs")
	env.Prepend("/opt/npm")

	// Most recent prepend wins the front slot
	assert.Equal(t, []string{"/opt/npm", "/opt/nodejs"}, env.Prepends())
	assert.Equal(t, "/opt/npm"+sep+"/opt/nodejs"+sep+"/usr/bin"+sep+"/bin", env.Path())
}

func TestEnvPrependDeduplicates(t *testing.T) {
	env := NewEnvFrom([]string{"PATH=/usr/bin"})

	env.Prepend("/opt/nodejs")
	env.Prepend("/opt/nodejs")

	assert.Equal(t, []string{"/opt/nodejs"}, env.Prepends())
}

func TestEnvEnvironSubstitutesPath(t *testing.T) {
	env := NewEnvFrom([]string{"HOME=/home/u", "PATH=/usr/bin"})
	env.Prepend("/opt/tool")

	environ := env.Environ()

	var pathEntry string
	for _, kv := range environ {
		if strings.HasPrefix(kv, "PATH=") {
			pathEntry = kv
		}
	}
	assert.Contains(t, pathEntry, "/opt/tool")
	assert.Contains(t, environ, "HOME=/home/u")
}

func TestEnvEnvironHandlesWindowsSpelling(t *testing.T) {
	env := NewEnvFrom([]string{`Path=C:\Windows`})
	env.Prepend(`C:\Program Files\nodejs`)

	environ := env.Environ()
	assert.Len(t, environ, 1)
	assert.Contains(t, environ[0], `C:\Program Files\nodejs`)
	assert.True(t, strings.HasPrefix(environ[0], "Path="))
}

func TestEnvWithoutPathVariable(t *testing.T) {
	env := NewEnvFrom([]string{"HOME=/home/u"})
	env.Prepend("/opt/tool")

	environ := env.Environ()
	assert.Contains(t, environ, "PATH=/opt/tool")
}
