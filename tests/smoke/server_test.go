//go:build smoke

package smoke

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/codr1/Courtside/internal/testutil"
)

type runningServer struct {
	port   int
	dbPath string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func (s *runningServer) url(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, path)
}

func (s *runningServer) output() string {
	return fmt.Sprintf("stdout:\n%s\nstderr:\n%s", s.stdout.String(), s.stderr.String())
}

// startServer builds cmd/server, writes a config.yaml into a temp dir and
// runs the binary from there. seed runs against the database file before
// the server opens it.
func startServer(t *testing.T, seed func(dbPath string)) *runningServer {
	t.Helper()

	repoRoot := findRepoRoot(t)
	tempDir := t.TempDir()

	binPath := filepath.Join(tempDir, "courtside-server")
	buildCmd := exec.Command("go", "build", "-o", binPath, "./cmd/server")
	buildCmd.Dir = repoRoot
	buildOutput, err := buildCmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build server: %v\n%s", err, buildOutput)
	}

	dbPath := filepath.Join(tempDir, "db", "smoke.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("failed to create db directory: %v", err)
	}
	if seed != nil {
		seed(dbPath)
	}

	port := reservePort(t)
	configPath := filepath.Join(tempDir, "config.yaml")
	configBody := fmt.Sprintf(`app:
  name: "Courtside"
  environment: "development"
  port: %d
  base_url: "http://localhost:%d"

database:
  driver: "sqlite"
  filename: "%s"

scheduler:
  orphan_cleanup_cron: "*/5 * * * *"
  overdue_sweep_cron: "0 * * * *"

features:
  enable_debug: true
`, port, port, filepath.ToSlash(dbPath))

	if err := os.WriteFile(configPath, []byte(configBody), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cmd := exec.Command(binPath)
	cmd.Dir = tempDir
	srv := &runningServer{port: port, dbPath: dbPath, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	cmd.Stdout = srv.stdout
	cmd.Stderr = srv.stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	waitDone := make(chan struct{})
	var waitErr error
	go func() {
		waitErr = cmd.Wait()
		close(waitDone)
	}()

	t.Cleanup(func() {
		if cmd.Process == nil {
			return
		}
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-waitDone:
			return
		case <-time.After(5 * time.Second):
		}
		_ = cmd.Process.Kill()
		select {
		case <-waitDone:
		case <-time.After(5 * time.Second):
			t.Logf("server process did not exit after kill")
		}
	})

	client := &http.Client{Timeout: 500 * time.Millisecond}
	deadline := time.Now().Add(10 * time.Second)
	for {
		select {
		case <-waitDone:
			t.Fatalf("server exited before health check: %v\n%s", waitErr, srv.output())
		default:
		}

		resp, err := client.Get(srv.url("/health"))
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}

		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for health check\n%s", srv.output())
		}

		time.Sleep(100 * time.Millisecond)
	}

	return srv
}

func TestServerStartup(t *testing.T) {
	srv := startServer(t, nil)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(srv.url("/api/v1/payments"))
	if err != nil {
		t.Fatalf("list payments request failed: %v\n%s", err, srv.output())
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous list payments: got %d want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func reservePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}

func findRepoRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	t.Fatal("failed to locate repo root with go.mod")
	return ""
}

func TestMigrationsApplied(t *testing.T) {
	db := testutil.NewTestDB(t)

	expectedTables := []string{
		"users",
		"reservations",
		"payments",
		"court_usage_reports",
		"financial_reports",
		"coin_transactions",
	}

	for _, table := range expectedTables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name = ?",
			table,
		).Scan(&name)
		if err == sql.ErrNoRows {
			t.Fatalf("missing expected table %q after migrations", table)
		}
		if err != nil {
			t.Fatalf("query table %q existence: %v", table, err)
		}
	}
}

func TestForeignKeyIntegrity(t *testing.T) {
	db := testutil.NewTestDB(t)

	var foreignKeysEnabled int
	if err := db.QueryRow("PRAGMA foreign_keys;").Scan(&foreignKeysEnabled); err != nil {
		t.Fatalf("query foreign_keys pragma: %v", err)
	}
	if foreignKeysEnabled != 1 {
		t.Fatalf("expected foreign_keys pragma enabled, got %d", foreignKeysEnabled)
	}

	_, err := db.Exec(
		`INSERT INTO payments (user_id, amount, payment_method, due_date, reference_number)
		 VALUES (9999, '100', 'cash', CURRENT_TIMESTAMP, 'PAY-BAD-FK')`,
	)
	if err == nil {
		t.Fatal("expected foreign key constraint failure for invalid user_id")
	}
}
