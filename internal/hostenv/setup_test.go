package hostenv

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbtools/deckybuild/internal/errors"
	"github.com/hbtools/deckybuild/internal/log"
	"github.com/hbtools/deckybuild/internal/pack"
	"github.com/hbtools/deckybuild/internal/workspace"
)

func newTestSetup(t *testing.T, fake *FakeIntegrator) *Setup {
	t.Helper()
	root := t.TempDir()
	return &Setup{
		Integrator: fake,
		Layout:     workspace.NewLayoutWithHome(root, filepath.Join(root, "home")),
		Logger:     log.Default(),
		DesktopDir: filepath.Join(root, "desktop"),
		StartupDir: filepath.Join(root, "startup"),
	}
}

func TestConfigureWiresEverything(t *testing.T) {
	fake := &FakeIntegrator{CompanionDir: filepath.Join("C:", "Steam")}
	setup := newTestSetup(t, fake)

	require.NoError(t, setup.Configure())

	require.Len(t, fake.FlagFiles, 1)
	assert.Equal(t, filepath.Join(fake.CompanionDir, DebugFlagName), fake.FlagFiles[0])

	require.Len(t, fake.Shortcuts, 1)
	sc := fake.Shortcuts[0]
	assert.Equal(t, filepath.Join(setup.DesktopDir, "Steam.lnk"), sc.LinkPath)
	assert.Equal(t, "-dev", sc.Arguments)

	require.Len(t, fake.Autostarts, 1)
	auto := fake.Autostarts[0]
	services := filepath.Join(setup.Layout.UserHomebrewDir, "services")
	assert.Equal(t, filepath.Join(services, pack.DetachedName+pack.ExeSuffix()), auto.Target)
	assert.Equal(t, services, auto.WorkingDir)
	assert.Equal(t, filepath.Join(setup.StartupDir, "PluginLoader.lnk"), auto.LinkPath)
}

func TestConfigureFailuresAreFatal(t *testing.T) {
	tests := []struct {
		name     string
		fake     *FakeIntegrator
		wantCode errors.ErrorCode
	}{
		{
			name:     "companion app not found",
			fake:     &FakeIntegrator{LocateErr: fmt.Errorf("not in registry")},
			wantCode: errors.ErrCodeCompanionNotFound,
		},
		{
			name:     "flag file creation fails",
			fake:     &FakeIntegrator{FlagErr: fmt.Errorf("access denied")},
			wantCode: errors.ErrCodeFlagFileFailed,
		},
		{
			name:     "shortcut creation fails",
			fake:     &FakeIntegrator{ShortcutErr: fmt.Errorf("com error")},
			wantCode: errors.ErrCodeShortcutFailed,
		},
		{
			name:     "autostart creation fails",
			fake:     &FakeIntegrator{AutostartErr: fmt.Errorf("startup folder missing")},
			wantCode: errors.ErrCodeAutostartFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup := newTestSetup(t, tt.fake)

			err := setup.Configure()
			require.Error(t, err)

			var buildErr *errors.BuildError
			require.ErrorAs(t, err, &buildErr)
			assert.Equal(t, tt.wantCode, buildErr.Code)
		})
	}
}
