//go:build integration

// Package testutils provides shared test infrastructure for integration tests.
package testutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// nginxConf serves /data as autoindex listings, the same page format the
// production archive servers emit.
const nginxConf = `worker_processes 1;
events { worker_connections 64; }
http {
    server {
        listen 80;
        location / {
            root /data;
            autoindex on;
        }
    }
}
`

// NginxEnv is a running nginx container serving autoindex listings over a
// seeded file tree.
type NginxEnv struct {
	Container testcontainers.Container

	// BaseURL is the listing root, without a trailing slash.
	BaseURL string
}

// Close terminates the nginx container.
func (e *NginxEnv) Close(ctx context.Context) error {
	if e.Container != nil {
		return e.Container.Terminate(ctx)
	}
	return nil
}

// GenerateTestData generates test data of the given size using a
// deterministic pattern, so downloads can be verified byte for byte.
func GenerateTestData(t *testing.T, size int64) []byte {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 256)
	}
	return data
}

// SeedTree writes files into root, creating parents as needed. Paths are
// slash-separated and relative to root. Everything is made world-readable
// because the nginx worker inside the container runs unprivileged.
func SeedTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()

	if err := os.Chmod(root, 0o755); err != nil {
		t.Fatalf("chmod %s: %v", root, err)
	}

	for rel, data := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
		// MkdirAll is umask-filtered, so chmod each level explicitly.
		for d := dir; strings.HasPrefix(d, root); d = filepath.Dir(d) {
			if err := os.Chmod(d, 0o755); err != nil {
				t.Fatalf("chmod %s: %v", d, err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		if err := os.Chmod(path, 0o644); err != nil {
			t.Fatalf("chmod %s: %v", path, err)
		}
	}
}

// StartNginxAutoindex starts an nginx container serving autoindex
// listings over dataDir and waits until the root listing responds.
func StartNginxAutoindex(t *testing.T, ctx context.Context, dataDir string) *NginxEnv {
	t.Helper()

	confDir := t.TempDir()
	confPath := filepath.Join(confDir, "nginx.conf")
	if err := os.WriteFile(confPath, []byte(nginxConf), 0o644); err != nil {
		t.Fatalf("write nginx conf: %v", err)
	}
	if err := os.Chmod(confDir, 0o755); err != nil {
		t.Fatalf("chmod %s: %v", confDir, err)
	}
	if err := os.Chmod(confPath, 0o644); err != nil {
		t.Fatalf("chmod %s: %v", confPath, err)
	}

	req := testcontainers.ContainerRequest{
		Image:        "nginx:1.27-alpine",
		ExposedPorts: []string{"80/tcp"},
		HostConfigModifier: func(hc *container.HostConfig) {
			hc.Binds = append(hc.Binds,
				fmt.Sprintf("%s:/data:ro", dataDir),
				fmt.Sprintf("%s:/etc/nginx/nginx.conf:ro", confPath),
			)
		},
		WaitingFor: wait.ForHTTP("/").WithPort("80").WithStartupTimeout(time.Minute),
	}

	nginxContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start nginx container: %v", err)
	}

	host, err := nginxContainer.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}

	port, err := nginxContainer.MappedPort(ctx, "80")
	if err != nil {
		t.Fatalf("get container port: %v", err)
	}

	return &NginxEnv{
		Container: nginxContainer,
		BaseURL:   fmt.Sprintf("http://%s:%s", host, port.Port()),
	}
}
