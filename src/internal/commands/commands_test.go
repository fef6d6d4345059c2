package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/maksimkurb/netctl/src/internal/config"
	"github.com/maksimkurb/netctl/src/internal/core"
	"github.com/maksimkurb/netctl/src/internal/domain"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/events"
	"github.com/maksimkurb/netctl/src/internal/mocks"
)

func missingConfig(t *testing.T) *AppContext {
	t.Helper()
	return &AppContext{ConfigPath: filepath.Join(t.TempDir(), "netctl.toml"), Verbose: true}
}

func TestCheckConfigCommand(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		ctx := missingConfig(t)
		if err := os.WriteFile(ctx.ConfigPath, []byte("[dns]\nforwarders = [\"1.1.1.1\"]\n"), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		cmd := CreateCheckConfigCommand()
		var out bytes.Buffer
		cmd.out = &out
		if err := cmd.Init(nil, ctx); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if err := cmd.Run(); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if !strings.Contains(out.String(), "configuration is valid") || !strings.Contains(out.String(), "1.1.1.1") {
			t.Errorf("unexpected output:\n%s", out.String())
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		ctx := missingConfig(t)
		if err := os.WriteFile(ctx.ConfigPath, []byte("[bus]\nsubscriber_buffer = 100000\n"), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		err := CreateCheckConfigCommand().Init(nil, ctx)
		if !errors.IsCode(err, errors.ErrCodeConfig) {
			t.Errorf("expected CONFIG_ERROR, got %v", err)
		}
	})
}

func TestClassifyCommand(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "mon0", "wireless"), 0755); err != nil {
		t.Fatalf("Failed to create sysfs tree: %v", err)
	}

	cmd := CreateClassifyCommand()
	var out bytes.Buffer
	cmd.out = &out
	if err := cmd.Init([]string{"-sysfs", root, "eth0", "mon0", "veth1234567"}, missingConfig(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), out.String())
	}
	for i, want := range []string{": ethernet", ": wifi", ": container"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d: expected %q in %q", i, want, lines[i])
		}
	}

	if err := CreateClassifyCommand().Init(nil, missingConfig(t)); !errors.IsCode(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("expected INVALID_PARAMETER without names, got %v", err)
	}
}

func TestDevicesCommand(t *testing.T) {
	newCommand := func(t *testing.T, args ...string) (*DevicesCommand, *bytes.Buffer) {
		t.Helper()
		cfg := config.Default()
		cfg.Metrics.Enabled = false
		deps, err := core.NewAppDependencies(core.AppConfig{
			Config: cfg,
			Interfaces: mocks.NewMockInterfaceController(
				&domain.InterfaceInfo{Name: "eth0", Flags: []string{"UP"}, MTU: 1500, Addresses: []domain.Address{{IP: "192.168.1.2", PrefixLen: 24}}},
			),
			Supplicant: mocks.NewMockSupplicant(),
			Routes:     &mocks.MockRouteBackend{},
		})
		if err != nil {
			t.Fatalf("NewAppDependencies failed: %v", err)
		}

		cmd := CreateDevicesCommand()
		cmd.deps = deps
		var out bytes.Buffer
		cmd.out = &out
		if err := cmd.Init(args, missingConfig(t)); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		return cmd, &out
	}

	t.Run("text", func(t *testing.T) {
		cmd, out := newCommand(t)
		if err := cmd.Run(); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if !strings.Contains(out.String(), "eth0") || !strings.Contains(out.String(), "IP Address (IPv4): 192.168.1.2/24") {
			t.Errorf("unexpected output:\n%s", out.String())
		}
	})

	t.Run("yaml", func(t *testing.T) {
		cmd, out := newCommand(t, "-format", "yaml")
		if err := cmd.Run(); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if !strings.Contains(out.String(), "name: eth0") {
			t.Errorf("expected JSON field names in YAML output:\n%s", out.String())
		}
	})

	t.Run("bad format", func(t *testing.T) {
		err := CreateDevicesCommand().Init([]string{"-format", "xml"}, missingConfig(t))
		if !errors.IsCode(err, errors.ErrCodeInvalidParameter) {
			t.Errorf("expected INVALID_PARAMETER, got %v", err)
		}
	})
}

func TestMarshalOutput(t *testing.T) {
	v := map[string]interface{}{"network_state": "Connected"}

	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{formatJSON, `"network_state": "Connected"`, false},
		{formatYAML, "network_state: Connected", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			data, err := marshalOutput(v, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("marshalOutput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("expected %q in %q", tt.want, data)
			}
		})
	}
}

func TestRunnerClosesOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRestartableRunner(RunnerConfig{Name: "test"}, func(runCtx context.Context) error {
		<-runCtx.Done()
		return nil
	})
	if err := runner.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := runner.Start(ctx); !errors.IsCode(err, errors.ErrCodeInvalidState) {
		t.Errorf("expected INVALID_STATE on second start, got %v", err)
	}
	cancel()
	if err := runner.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if runner.IsRunning() {
		t.Error("runner still running after Stop")
	}
}

type restartLog struct {
	mu      sync.Mutex
	reasons []string
}

func (l *restartLog) RunnerRestarted(runner, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reasons = append(l.reasons, runner+":"+reason)
}

func (l *restartLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.reasons...)
}

func TestRunnerRestartsAfterPanic(t *testing.T) {
	pub := &mocks.MockPublisher{}
	restarts := &restartLog{}

	var mu sync.Mutex
	calls := 0
	runner := NewRestartableRunner(RunnerConfig{
		Name:           "api",
		RestartBackoff: time.Millisecond,
		Events:         pub,
		Recorder:       restarts,
	}, func(runCtx context.Context) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		switch n {
		case 1:
			panic("listener exploded")
		case 2:
			return errors.NewServiceError("bind failed", nil)
		}
		return nil
	})

	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for pub.Count(events.ServerStopped) < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("runner did not finish, events: %v", pub.Kinds())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := runner.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if n := runner.RestartCount(); n != 2 {
		t.Errorf("expected 2 restarts, got %d", n)
	}
	if err := runner.LastError(); err != nil {
		t.Errorf("expected a clean last exit, got %v", err)
	}
	want := []string{"api:" + RestartReasonPanic, "api:" + RestartReasonError}
	if got := restarts.snapshot(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("recorded restarts = %v, want %v", got, want)
	}

	evs := pub.Events()
	if n := pub.Count(events.ServerStarted); n != 3 {
		t.Errorf("expected 3 ServerStarted, got %d", n)
	}
	first := evs[1]
	if first.Domain != events.DomainNetwork || first.Key != "api" || first.Kind != events.ServerStopped {
		t.Fatalf("unexpected event %+v", first)
	}
	if first.Args["panic"] != true || !strings.Contains(first.Args["error"].(string), "listener exploded") {
		t.Errorf("unexpected stop args %v", first.Args)
	}
}
