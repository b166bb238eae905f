package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/storagecore/storagecore/pkg/lrucache"
)

func TestBuildLogger(t *testing.T) {
	logger, err := BuildLogger("debug")
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestBuildLogger_RejectsUnknownLevel(t *testing.T) {
	_, err := BuildLogger("not-a-level")
	require.Error(t, err)
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	require.Equal(t, 64, cfg.PoolSize)
	require.NotNil(t, cfg.Logger)
}

func TestNewConfig_WithOptions(t *testing.T) {
	logger, err := BuildLogger("warn")
	require.NoError(t, err)

	cfg := NewConfig(WithPoolSize(128), WithLogger(logger))
	require.Equal(t, 128, cfg.PoolSize)
	require.Same(t, logger, cfg.Logger)
}

func TestNewBufferPoolManagerFromConfig(t *testing.T) {
	file := newMemFile()
	disk := NewDiskManager(map[int]DBFile{1: file})
	cfg := NewConfig(WithPoolSize(4))

	pool := NewBufferPoolManagerFromConfig(cfg, disk, lrucache.NewReplacer(cfg.PoolSize))

	handle, err := pool.NewPage(1)
	require.NoError(t, err)
	require.True(t, handle.Unpin(false))
}
