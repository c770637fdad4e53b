package ipc_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fileforge/internal/daemon"
	"fileforge/internal/ipc"
	"fileforge/internal/logging"
	"fileforge/internal/manager"
	"fileforge/internal/testsupport"
)

func startIPC(t *testing.T) (*daemon.Daemon, *ipc.Client) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
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

	socket := filepath.Join(cfg.Paths.LogDir, "fileforge.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping ipc test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return d, client
}

func TestStatusOverIPC(t *testing.T) {
	_, client := startIPC(t)

	status, err := client.Status()
	if err != nil {
		t.Fatalf("status call: %v", err)
	}
	if !status.Running {
		t.Fatal("expected running daemon")
	}
	if status.JobDBPath == "" || status.LockPath == "" {
		t.Fatalf("status missing paths: %+v", status)
	}
	if len(status.Dependencies) == 0 {
		t.Fatal("expected dependency report")
	}
}

func TestJobsAndDescribeOverIPC(t *testing.T) {
	d, client := startIPC(t)

	handle, err := d.Manager().Submit(context.Background(), manager.SubmitRequest{
		Data:         []byte(`[{"sensor":"a1","value":9}]`),
		DeclaredName: "sensor.json",
		OutputFormat: "csv",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(15 * time.Second)
	for {
		resp, err := client.Describe(handle.JobKey)
		if err != nil {
			t.Fatalf("describe: %v", err)
		}
		if resp.Job.Status == "completed" {
			break
		}
		if resp.Job.Status == "failed" {
			t.Fatalf("job failed: %s", resp.Job.ErrorMessage)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job stuck at %s", resp.Job.Status)
		}
		time.Sleep(25 * time.Millisecond)
	}

	jobs, err := client.Jobs(nil)
	if err != nil {
		t.Fatalf("jobs call: %v", err)
	}
	if len(jobs.Jobs) != 1 || jobs.Jobs[0].JobKey != handle.JobKey {
		t.Fatalf("jobs = %+v", jobs.Jobs)
	}

	if _, err := client.Jobs([]string{"bogus"}); err == nil {
		t.Fatal("expected error for unknown status filter")
	}
	if _, err := client.Describe("ghost"); err == nil {
		t.Fatal("expected error for unknown job key")
	}

	stats, err := client.Stats()
	if err != nil {
		t.Fatalf("stats call: %v", err)
	}
	if stats.Stats.Completed != 1 {
		t.Fatalf("stats = %+v", stats.Stats)
	}

	trail, err := client.Audit(ipc.AuditRequest{JobKey: handle.JobKey})
	if err != nil {
		t.Fatalf("audit call: %v", err)
	}
	if len(trail.Entries) < 4 {
		t.Fatalf("audit entries = %d, want at least 4", len(trail.Entries))
	}

	watch, err := client.Watch(ipc.WatchRequest{Since: 0, Limit: 50})
	if err != nil {
		t.Fatalf("watch call: %v", err)
	}
	if len(watch.Events) == 0 || watch.Next == 0 {
		t.Fatalf("watch = %+v", watch)
	}
}
