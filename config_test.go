package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfPath(t *testing.T) {
	require.Equal(t, "a.yaml", confPath([]string{"-db", "mysql", "-conf", "a.yaml"}))
	require.Equal(t, "b.yaml", confPath([]string{"--conf=b.yaml"}))
	require.Equal(t, "", confPath([]string{"-db", "conf"}))
	require.Equal(t, "", confPath([]string{"-conf"}))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db: mysql
host: 10.0.0.5
range: 100000
createTempDatabase: true
duration: 30s
concurrency: 32
`), 0o644))

	cfg := defaultConfig()
	require.NoError(t, loadConfig(path, &cfg))

	conn := cfg.conn()
	require.Equal(t, "10.0.0.5", conn.Host)
	require.Equal(t, 3306, conn.Port)

	params := cfg.params()
	require.Equal(t, 100000, params.Range)
	require.True(t, params.CreateTempDatabase)
	require.Equal(t, 30*time.Second, params.Duration)
	require.Equal(t, 32, params.Concurrency)
	require.Equal(t, 100, params.Warmup)
}
