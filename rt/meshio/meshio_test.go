package meshio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bsegovia/miniq-rt/rt/csg"
	"github.com/bsegovia/miniq-rt/rt/iso"
	"github.com/bsegovia/miniq-rt/rt/mathx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	scene := csg.NewSphere(2, csg.MatSimple)
	mesh := iso.Extract(scene, mathx.Vec3f{X: -3, Y: -3, Z: -3}, 1, 0.75)
	require.NotEmpty(t, mesh.Pos)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, mesh))

	got, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, len(mesh.Pos), len(got.Pos))
	assert.Equal(t, mesh.Index, got.Index)
	assert.Equal(t, mesh.Segments, got.Segments)
	for i := range mesh.Pos {
		assert.InDelta(t, mesh.Pos[i].X, got.Pos[i].X, 1e-5)
		assert.InDelta(t, mesh.Pos[i].Y, got.Pos[i].Y, 1e-5)
		assert.InDelta(t, mesh.Pos[i].Z, got.Pos[i].Z, 1e-5)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("not a gzip stream")))
	assert.Error(t, err)
}

func TestLoadOrBuildRecoversFromMissingCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.bin")
	scene := csg.NewSphere(2, csg.MatSimple)
	org := mathx.Vec3f{X: -3, Y: -3, Z: -3}

	mesh := LoadOrBuild(path, scene, org, 1, 0.75)
	require.NotEmpty(t, mesh.Pos)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "LoadOrBuild should have populated the cache file")

	cached := LoadOrBuild(path, scene, org, 1, 0.75)
	assert.Equal(t, len(mesh.Pos), len(cached.Pos))
}

func TestLoadOrBuildRecoversFromCorruptCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.bin")
	require.NoError(t, os.WriteFile(path, []byte("garbage, not a real cache"), 0o644))

	scene := csg.NewSphere(2, csg.MatSimple)
	org := mathx.Vec3f{X: -3, Y: -3, Z: -3}
	mesh := LoadOrBuild(path, scene, org, 1, 0.75)
	require.NotEmpty(t, mesh.Pos)
}
