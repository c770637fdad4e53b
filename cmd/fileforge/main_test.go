package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"fileforge/internal/daemon"
	"fileforge/internal/ipc"
	"fileforge/internal/logging"
	"fileforge/internal/manager"
	"fileforge/internal/queue"
	"fileforge/internal/testsupport"
)

type cliTestEnv struct {
	daemon     *daemon.Daemon
	socketPath string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(cfg.Paths.LogDir, "config.toml")
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	d, err := daemon.Bootstrap(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := d.Start(ctx); err != nil {
		t.Fatalf("start daemon: %v", err)
	}
	t.Cleanup(d.Stop)

	socket := filepath.Join(cfg.Paths.LogDir, "cli-test.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping cli test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	return &cliTestEnv{daemon: d, socketPath: socket, configPath: configPath}
}

func (env *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	full := append([]string{"--socket", env.socketPath, "--config", env.configPath}, args...)
	root.SetArgs(full)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func (env *cliTestEnv) submitAndWait(t *testing.T) string {
	t.Helper()
	handle, err := env.daemon.Manager().Submit(context.Background(), manager.SubmitRequest{
		Data:         []byte(`[{"city":"bergen","rain":220}]`),
		DeclaredName: "weather.json",
		OutputFormat: "csv",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		job, err := env.daemon.Jobs().Describe(context.Background(), handle.JobKey)
		if err == nil && queue.IsTerminal(queue.Status(job.Status)) {
			if job.Status != string(queue.StatusCompleted) {
				t.Fatalf("job ended %s: %s", job.Status, job.ErrorMessage)
			}
			return handle.JobKey
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("job did not complete in time")
	return ""
}

func TestCLIDaemonStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "status")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Running") || !strings.Contains(out, "Queue Status") {
		t.Fatalf("unexpected status output:\n%s", out)
	}
	if !strings.Contains(out, "Dependencies") {
		t.Fatalf("expected dependency section:\n%s", out)
	}
}

func TestCLIJobsAndShowCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	jobKey := env.submitAndWait(t)

	out, err := env.run(t, "jobs")
	if err != nil {
		t.Fatalf("jobs: %v\n%s", err, out)
	}
	if !strings.Contains(out, jobKey) || !strings.Contains(out, "json -> csv") {
		t.Fatalf("jobs output missing job:\n%s", out)
	}

	out, err = env.run(t, "jobs", "--status", "failed")
	if err != nil {
		t.Fatalf("jobs --status failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "No jobs found") {
		t.Fatalf("expected empty failed listing:\n%s", out)
	}

	out, err = env.run(t, "show", jobKey)
	if err != nil {
		t.Fatalf("show: %v\n%s", err, out)
	}
	if !strings.Contains(out, "completed") || !strings.Contains(out, "Artifacts") {
		t.Fatalf("show output incomplete:\n%s", out)
	}
	if !strings.Contains(out, "converted.csv") {
		t.Fatalf("expected artifact listing:\n%s", out)
	}

	if _, err := env.run(t, "show", "no-such-job"); err == nil {
		t.Fatal("expected error for unknown job key")
	}
}

func TestCLIJobsJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	jobKey := env.submitAndWait(t)

	out, err := env.run(t, "jobs", "--json")
	if err != nil {
		t.Fatalf("jobs --json: %v\n%s", err, out)
	}
	var resp ipc.JobsResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode jobs json: %v\n%s", err, out)
	}
	if len(resp.Jobs) != 1 || resp.Jobs[0].JobKey != jobKey {
		t.Fatalf("unexpected jobs payload: %+v", resp)
	}
}

func TestCLIStatsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.submitAndWait(t)

	out, err := env.run(t, "stats")
	if err != nil {
		t.Fatalf("stats: %v\n%s", err, out)
	}
	if !strings.Contains(out, "completed") {
		t.Fatalf("stats output missing counters:\n%s", out)
	}

	out, err = env.run(t, "stats", "--json")
	if err != nil {
		t.Fatalf("stats --json: %v\n%s", err, out)
	}
	var resp ipc.StatsResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode stats json: %v\n%s", err, out)
	}
	if resp.Stats.Completed != 1 {
		t.Fatalf("expected one completed job, got %+v", resp.Stats)
	}
}

func TestCLIAuditCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	jobKey := env.submitAndWait(t)

	out, err := env.run(t, "audit", "--job", jobKey)
	if err != nil {
		t.Fatalf("audit: %v\n%s", err, out)
	}
	for _, event := range []string{"submitted", "scan", "started", "completed"} {
		if !strings.Contains(out, event) {
			t.Fatalf("audit trail missing %q:\n%s", event, out)
		}
	}
}

func TestCLIFormatsAndQualityCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "formats")
	if err != nil {
		t.Fatalf("formats: %v\n%s", err, out)
	}
	for _, want := range []string{"Document", "Image", "Data", "Model"} {
		if !strings.Contains(out, want) {
			t.Fatalf("formats output missing %q:\n%s", want, out)
		}
	}

	out, err = env.run(t, "quality")
	if err != nil {
		t.Fatalf("quality: %v\n%s", err, out)
	}
	if !strings.Contains(out, "standard (default)") || !strings.Contains(out, "enterprise") {
		t.Fatalf("quality output incomplete:\n%s", out)
	}
}

func TestCLIConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "conf", "fileforge.toml")

	root := newRootCommand()
	root.SetArgs([]string{"config", "init", "--path", target})
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	if err := root.Execute(); err != nil {
		t.Fatalf("config init: %v\n%s", err, buf.String())
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	root = newRootCommand()
	root.SetArgs([]string{"config", "init", "--path", target})
	root.SetOut(&buf)
	root.SetErr(&buf)
	if err := root.Execute(); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestBuildJobRows(t *testing.T) {
	rows := buildJobRows(nil)
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	out := renderTable(
		[]string{"Status", "Count"},
		[][]string{{"queued", "3"}, {"completed", "11"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	if !strings.Contains(out, "queued") || !strings.Contains(out, "11") {
		t.Fatalf("unexpected table output:\n%s", out)
	}
	if !strings.Contains(out, "Status") {
		t.Fatalf("missing header:\n%s", out)
	}
}
