package e2e_test

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	binaryPath     string
	binaryBuildErr error
	binaryOnce     sync.Once
	sharedTempDir  string
)

// TestMain sets up and tears down shared test resources.
func TestMain(m *testing.M) {
	var err error
	sharedTempDir, err = os.MkdirTemp("", "folio-e2e-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if testCleanup != nil {
		testCleanup()
	}
	_ = os.RemoveAll(sharedTempDir)

	os.Exit(code)
}

const (
	testRootFolder = "e2e-gallery"
	testAPIKey     = "e2e-key"
	testAPISecret  = "e2e-secret"
	testAdminUser  = "curator"
	testAdminPass  = "e2e-admin-pass"
)

// ServerConfig holds configuration for starting the folio server with the
// local media store.
type ServerConfig struct {
	Port          int
	DBType        string // sqlite, postgres
	DBDSN         string
	StoragePath   string
	ProtectWrites bool
}

// buildBinary compiles the folio binary once per test run.
func buildBinary(t *testing.T) string {
	t.Helper()

	binaryOnce.Do(func() {
		binaryPath = filepath.Join(sharedTempDir, "folio")

		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/folio")
		cmd.Dir = getProjectRoot(t)
		output, err := cmd.CombinedOutput()
		if err != nil {
			binaryBuildErr = fmt.Errorf("build binary: %w\nOutput: %s", err, output)
			return
		}
	})

	if binaryBuildErr != nil {
		t.Fatalf("failed to build binary: %v", binaryBuildErr)
	}

	return binaryPath
}

// getProjectRoot returns the directory holding go.mod.
func getProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// createConfigFile writes a config file for the server and returns its path.
func createConfigFile(t *testing.T, cfg ServerConfig) string {
	t.Helper()

	var sb strings.Builder
	fmt.Fprintf(&sb, `env: development

server:
  port: %d
  public_url: "http://localhost:%d"

gallery:
  root_folder: %s

media:
  backend: local

local:
  cloud_name: local
  api_key: %s
  api_secret: %s
  signature_ttl: 1h

database:
  type: %s
  dsn: "%s"

storage:
  type: filesystem
  path: "%s"

admin:
  username: %s
  password: %s
  protect_writes: %t

log:
  level: error
`,
		cfg.Port, cfg.Port,
		testRootFolder,
		testAPIKey, testAPISecret,
		cfg.DBType, cfg.DBDSN,
		cfg.StoragePath,
		testAdminUser, testAdminPass, cfg.ProtectWrites,
	)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(configPath, []byte(sb.String()), 0o600)
	require.NoError(t, err, "write config file")

	return configPath
}

// serverEnv strips variables that would override the test config.
func serverEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "FOLIO_") || strings.HasPrefix(name, "CLOUDINARY_") ||
			strings.HasPrefix(name, "ADMIN_") || name == "NEXT_PUBLIC_CLOUDINARY_CLOUD_NAME" {
			continue
		}
		env = append(env, kv)
	}
	return env
}

// runCommand runs a folio subcommand against the config and fails the test
// on a non-zero exit.
func runCommand(t *testing.T, configPath string, args ...string) string {
	t.Helper()

	args = append(args, "--config", configPath, "--env-file", "")
	cmd := exec.Command(buildBinary(t), args...)
	cmd.Env = serverEnv()
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "folio %s: %s", args[0], output)
	return string(output)
}

// startServer migrates the catalog and starts folio serve. Returns the base
// URL; the server is stopped when the test ends.
func startServer(t *testing.T, cfg ServerConfig) string {
	t.Helper()

	configPath := createConfigFile(t, cfg)
	runCommand(t, configPath, "migrate")

	cmd := exec.Command(buildBinary(t), "serve", "--config", configPath, "--env-file", "")
	cmd.Env = serverEnv()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	require.NoError(t, cmd.Start(), "start server")

	t.Cleanup(func() {
		if cmd.Process != nil {
			_ = cmd.Process.Signal(syscall.SIGTERM)
			_ = cmd.Wait()
		}
	})

	baseURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
	waitForServer(t, baseURL, 10*time.Second)

	return baseURL
}

// waitForServer polls the health endpoint until it answers or times out.
func waitForServer(t *testing.T, baseURL string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 1 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server failed to start within %v", timeout)
}

// getOpenPort finds an available TCP port.
func getOpenPort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err, "find open port")

	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close(), "close port")

	return port
}

// writePNG writes a solid w x h PNG into dir and returns its path.
func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}
