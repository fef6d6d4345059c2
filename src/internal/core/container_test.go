package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/maksimkurb/netctl/src/internal/config"
	"github.com/maksimkurb/netctl/src/internal/domain"
	"github.com/maksimkurb/netctl/src/internal/events"
	"github.com/maksimkurb/netctl/src/internal/mocks"
	"github.com/maksimkurb/netctl/src/internal/state"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig(t *testing.T) AppConfig {
	t.Helper()
	return AppConfig{
		Config: config.Default(),
		Interfaces: mocks.NewMockInterfaceController(
			&domain.InterfaceInfo{Name: "eth0", Flags: []string{"UP"}},
			&domain.InterfaceInfo{Name: "wlan0"},
		),
		Supplicant:   mocks.NewMockSupplicant(),
		Routes:       &mocks.MockRouteBackend{},
		Connectivity: &mocks.MockConnectivityChecker{Result: state.ConnectivityFull},
	}
}

func TestNewAppDependencies(t *testing.T) {
	t.Run("Default configuration", func(t *testing.T) {
		deps, err := NewAppDependencies(testConfig(t))
		if err != nil {
			t.Fatalf("NewAppDependencies failed: %v", err)
		}
		defer deps.Close(context.Background())

		if deps.Control() == nil || deps.Bus() == nil || deps.Scheduler() == nil {
			t.Fatal("Expected all components to be created")
		}
		if deps.Metrics() == nil {
			t.Error("Expected metrics to be enabled by default")
		}
		if !deps.Control().SupplicantAvailable() {
			t.Error("Expected the supplicant to be wired")
		}
		if deps.ConfigHasher() != nil {
			t.Error("A config built in code has no file to hash")
		}
	})

	t.Run("Metrics disabled", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Config.Metrics.Enabled = false

		deps, err := NewAppDependencies(cfg)
		if err != nil {
			t.Fatalf("NewAppDependencies failed: %v", err)
		}
		defer deps.Close(context.Background())

		if deps.Metrics() != nil {
			t.Error("Expected no metrics collector")
		}
	})

	t.Run("Config loaded from a file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "netctl.toml")
		if err := os.WriteFile(configFile, []byte("[bus]\nsubscriber_buffer = 8\n"), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}
		conf, err := config.LoadConfig(configFile)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}

		cfg := testConfig(t)
		cfg.Config = conf
		deps, err := NewAppDependencies(cfg)
		if err != nil {
			t.Fatalf("NewAppDependencies failed: %v", err)
		}
		defer deps.Close(context.Background())

		if deps.ConfigHasher() == nil || deps.ConfigHasher().Active() == "" {
			t.Error("Expected the active config to be hashed")
		}
	})
}

func TestDiscoveryReachesSubscribersAndMetrics(t *testing.T) {
	deps, err := NewAppDependencies(testConfig(t))
	if err != nil {
		t.Fatalf("NewAppDependencies failed: %v", err)
	}
	defer deps.Close(context.Background())

	sub := deps.Bus().Subscribe(events.ForDomains(events.DomainDevices))
	defer sub.Close()

	n, err := deps.Control().Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 devices, got %d", n)
	}

	select {
	case e := <-sub.C():
		if e.Kind != events.DeviceAdded {
			t.Errorf("expected DeviceAdded, got %s", e.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	added := testutil.ToFloat64(deps.Metrics().EventsPublished.WithLabelValues(string(events.DeviceAdded)))
	if added != 2 {
		t.Errorf("expected 2 DeviceAdded published, got %v", added)
	}

	got, err := deps.Control().CheckConnectivity(context.Background())
	if err != nil || got != state.ConnectivityFull {
		t.Errorf("expected the configured checker to be used, got %s (%v)", got, err)
	}
}

func TestScheduleJobs(t *testing.T) {
	t.Run("both schedules", func(t *testing.T) {
		deps, err := NewAppDependencies(testConfig(t))
		if err != nil {
			t.Fatalf("NewAppDependencies failed: %v", err)
		}
		defer deps.Close(context.Background())

		if err := deps.ScheduleJobs(); err != nil {
			t.Fatalf("ScheduleJobs failed: %v", err)
		}
		entries := deps.Scheduler().Entries()
		if len(entries) != 2 || entries[0].Name != JobConnectivity || entries[1].Name != JobDiscovery {
			t.Errorf("unexpected jobs %+v", entries)
		}
	})

	t.Run("disabled schedules", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Config.General.DiscoverySchedule = ""
		cfg.Config.General.ConnectivitySchedule = ""
		deps, err := NewAppDependencies(cfg)
		if err != nil {
			t.Fatalf("NewAppDependencies failed: %v", err)
		}
		defer deps.Close(context.Background())

		if err := deps.ScheduleJobs(); err != nil {
			t.Fatalf("ScheduleJobs failed: %v", err)
		}
		if n := len(deps.Scheduler().Entries()); n != 0 {
			t.Errorf("expected no jobs, got %d", n)
		}
	})
}
