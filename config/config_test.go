package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpnflow/dse/config"
)

func TestParseFlags_Defaults(t *testing.T) {
	cfg, err := config.ParseFlags("kpnctl", []string{"--platform", "plat.json", "--kpn", "kg.json"})
	require.NoError(t, err)
	require.Equal(t, "plat.json", cfg.PlatformPath)
	require.Equal(t, "kg.json", cfg.KPNPath)
	require.Equal(t, config.RandomWalk, cfg.Mapper)
	require.Equal(t, 100, cfg.RandomWalk.N)
	require.NoError(t, cfg.Validate())
}

func TestParseFlags_RejectsUnknownMapper(t *testing.T) {
	cfg, err := config.ParseFlags("kpnctl", []string{"--mapper", "bogus"})
	require.NoError(t, err)
	require.ErrorIs(t, cfg.Validate(), config.ErrUnknownMapper)
}

func TestParseFlags_RejectsEmptyObjectives(t *testing.T) {
	cfg, err := config.ParseFlags("kpnctl", []string{"--objectives", ""})
	require.NoError(t, err)
	require.ErrorIs(t, cfg.Validate(), config.ErrNoObjectives)
}

func TestValidateAgainstGraph_RejectsOversizedCrossoverRate(t *testing.T) {
	cfg, err := config.ParseFlags("kpnctl", []string{"--mapper", "genetic", "--crossover_rate", "10"})
	require.NoError(t, err)
	require.ErrorIs(t, cfg.ValidateAgainstGraph(2), config.ErrCrossoverRate)
	require.NoError(t, cfg.ValidateAgainstGraph(20))
}

func TestParseFlags_YAMLOverlayFillsUnsetFlagsOnly(t *testing.T) {
	dir := t.TempDir()
	overlayPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(overlayPath, []byte("outdir: from-overlay\nrandom_seed: 99\n"), 0o600))

	cfg, err := config.ParseFlags("kpnctl", []string{
		"--config", overlayPath,
		"--outdir", "from-flag",
	})
	require.NoError(t, err)

	// --outdir was passed explicitly, so it wins over the overlay.
	require.Equal(t, "from-flag", cfg.OutDir)
	// --random_seed was never passed, so the overlay fills it.
	require.Equal(t, uint64(99), cfg.RandomSeed)
}

func TestParseSplinePoints(t *testing.T) {
	points, err := config.ParseSplinePoints("0:0.8, 10:0.3")
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, 0.0, points[0].X)
	require.Equal(t, 0.8, points[0].Y)
	require.Equal(t, 10.0, points[1].X)
	require.Equal(t, 0.3, points[1].Y)
}

func TestParseSplinePoints_RejectsMalformedEntries(t *testing.T) {
	_, err := config.ParseSplinePoints("not-a-point")
	require.Error(t, err)
}
