package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Вспомогательные хелперы.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// Полный корректный YAML с заданными значениями (не зависящими от дефолтов).
const sampleYAML = `
env: "prod"
api:
  base_url: "https://mods.example.com/api"
  timeout: "3s"
  user_agent: "modverse-test"
storage:
  kind: "redis"
  redis_url: "redis://localhost:6379/2"
  redis_prefix: "test:"
cooldown:
  verify: "30s"
  reset_email: "2m"
metrics:
  textfile: "/tmp/modverse.prom"
`

// Минимальный YAML: остальное — дефолты.
const minimalYAML = `
storage:
  kind: "memory"
`

// Некорректный YAML — для проверки ошибок парсинга.
const brokenYAML = `
api:
  base_url: [unclosed
`

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "https://mods.example.com/api", cfg.API.BaseURL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, "modverse-test", cfg.API.UserAgent)

	require.Equal(t, StorageRedis, cfg.Storage.Kind)
	require.Equal(t, "redis://localhost:6379/2", cfg.Storage.RedisURL)
	require.Equal(t, "test:", cfg.Storage.RedisPrefix)

	require.Equal(t, 30*time.Second, cfg.Cooldown.Verify)
	require.Equal(t, 2*time.Minute, cfg.Cooldown.ResetEmail)
	require.Equal(t, "/tmp/modverse.prom", cfg.Metrics.Textfile)
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, t.TempDir(), "min.yaml", minimalYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "local", cfg.Env)
	require.Equal(t, "http://127.0.0.1:3000/api", cfg.API.BaseURL)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.Equal(t, "modverse-cli", cfg.API.UserAgent)
	require.Equal(t, "modverse:", cfg.Storage.RedisPrefix)
	require.Equal(t, time.Minute, cfg.Cooldown.Verify)
	require.Equal(t, time.Minute, cfg.Cooldown.ResetEmail)
	require.Empty(t, cfg.Metrics.Textfile)
}

func TestLoad_WithExplicitPath_FileDoesNotExist(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_WithExplicitPath_BrokenYAML(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, t.TempDir(), "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_EnvOverlaysFile(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)
	t.Setenv("API_TIMEOUT", "7s")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, 7*time.Second, cfg.API.Timeout)
}

func TestLoad_WithCONFIG_PATH_OK(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "from_env_path.yaml", minimalYAML)
	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, StorageMemory, cfg.Storage.Kind)
}

func TestLoad_WithLocalYAML_OK(t *testing.T) {
	chdir(t, t.TempDir())
	writeFile(t, ".", "local.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

func TestLoad_EnvOnly(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("TOKEN_STORE", StorageMemory)
	t.Setenv("API_BASE_URL", "http://10.0.0.1:8080/api")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, StorageMemory, cfg.Storage.Kind)
	require.Equal(t, "http://10.0.0.1:8080/api", cfg.API.BaseURL)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "bad scheme",
			yaml: "api:\n  base_url: \"ftp://host/api\"\nstorage:\n  kind: memory\n",
			want: "api.base_url",
		},
		{
			name: "negative timeout",
			yaml: "api:\n  timeout: \"-5s\"\nstorage:\n  kind: memory\n",
			want: "api.timeout",
		},
		{
			name: "unknown storage",
			yaml: "storage:\n  kind: etcd\n",
			want: "unknown storage.kind",
		},
		{
			name: "redis without url",
			yaml: "storage:\n  kind: redis\n",
			want: "storage.redis_url",
		},
		{
			name: "negative cooldown",
			yaml: "storage:\n  kind: memory\ncooldown:\n  verify: \"-1s\"\n",
			want: "cooldown",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfgPath := writeFile(t, t.TempDir(), "c.yaml", tt.yaml)

			_, err := Load(cfgPath)
			require.ErrorIs(t, err, ErrInvalidConfig)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStorageConfig_TokenFile(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	p, err := StorageConfig{FilePath: "~/.modverse/tokens.json"}.TokenFile()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".modverse", "tokens.json"), p)

	p, err = StorageConfig{FilePath: "/var/lib/modverse/t.json"}.TokenFile()
	require.NoError(t, err)
	require.Equal(t, "/var/lib/modverse/t.json", p)
}

func TestMustLoad_OK(t *testing.T) {
	t.Parallel()

	cfg := MustLoad(writeFile(t, t.TempDir(), "ok.yaml", minimalYAML))
	require.NotNil(t, cfg)
	require.Equal(t, StorageMemory, cfg.Storage.Kind)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_ = MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}
