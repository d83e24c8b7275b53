package daemon_test

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/config"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/daemon"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/testsupport"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/workflow"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/youtube"
)

func newDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	platform := &testsupport.FakePlatform{
		Pages:    [][]youtube.Comment{testsupport.Comments("c1")},
		Snapshot: youtube.Video{ID: "test-video", ChannelID: "chan", LikeCount: 10},
	}
	mgr := workflow.NewManager(cfg, workflow.Deps{
		Platform:  platform,
		Generator: &testsupport.FakeGenerator{},
		Store:     store,
	}, logging.NewNop(), workflow.WithPollInterval(10*time.Millisecond))
	d, err := daemon.New(cfg, store, logging.NewNop(), mgr, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})
	return d
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if !strings.HasSuffix(status.LedgerPath, "replied_to_test-video.json") {
		t.Fatalf("unexpected ledger path %q", status.LedgerPath)
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	status = d.Status()
	if status.Running || status.Workflow.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonLockPreventsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := newDaemon(t, cfg)
	second := newDaemon(t, cfg)

	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer first.Stop()

	err := second.Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected lock conflict, got %v", err)
	}
}

func TestDaemonServesMetricsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Metrics.Bind = "127.0.0.1:0"
	d := newDaemon(t, cfg)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	addr := d.Status().MetricsAddr
	if addr == "" {
		t.Fatal("expected metrics address")
	}
	deadline := time.Now().Add(2 * time.Second)
	for d.Status().Workflow.Cycles == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no cycle completed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp, err := http.Get("http://" + addr + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected healthy, got %d", resp.StatusCode)
	}

	resp, err = http.Get("http://" + addr + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "autoreply_cycles_total") {
		t.Fatalf("expected cycle counter in metrics output")
	}
}

func TestDaemonStatusReportsLedgerLocation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)

	status := d.Status()
	want := filepath.Join(cfg.Paths.RootFolder, "replied_to_test-video.json")
	if status.LedgerPath != want {
		t.Fatalf("ledger path = %q, want %q", status.LedgerPath, want)
	}
	if status.LockFilePath != cfg.LockPath() {
		t.Fatalf("lock path = %q, want %q", status.LockFilePath, cfg.LockPath())
	}
	if status.Running || status.MetricsAddr != "" {
		t.Fatalf("unexpected status before start: %+v", status)
	}
}
