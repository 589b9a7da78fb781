package plugin

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/HerbHall/lankaportal/internal/config"
	pkgplugin "github.com/HerbHall/lankaportal/pkg/plugin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type fakeModule struct {
	name    string
	health  string
	initErr error
	events  *[]string
	cfg     *config.Config
}

func (f *fakeModule) Name() string    { return f.name }
func (f *fakeModule) Version() string { return "0.1.0" }

func (f *fakeModule) Init(_ context.Context, deps Dependencies) error {
	f.cfg = deps.Config
	*f.events = append(*f.events, "init:"+f.name)
	return f.initErr
}

func (f *fakeModule) Start(context.Context) error {
	*f.events = append(*f.events, "start:"+f.name)
	return nil
}

func (f *fakeModule) Stop() error {
	*f.events = append(*f.events, "stop:"+f.name)
	return nil
}

func (f *fakeModule) Routes() []Route {
	return []Route{{Method: "GET", Path: "/ping", Handler: func(http.ResponseWriter, *http.Request) {}}}
}

func (f *fakeModule) Health(context.Context) pkgplugin.HealthStatus {
	return pkgplugin.HealthStatus{Status: f.health}
}

func TestRegistryLifecycleOrder(t *testing.T) {
	var events []string
	reg := NewRegistry(zap.NewNop())
	for _, name := range []string{"catalog", "auth", "favorites"} {
		if err := reg.Register(&fakeModule{name: name, health: pkgplugin.HealthOK, events: &events}); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}

	ctx := context.Background()
	if err := reg.InitAll(ctx, Dependencies{Config: config.New(nil)}); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	if err := reg.StartAll(ctx); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	reg.StopAll()

	want := []string{
		"init:catalog", "init:auth", "init:favorites",
		"start:catalog", "start:auth", "start:favorites",
		"stop:favorites", "stop:auth", "stop:catalog",
	}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestRegistryDuplicate(t *testing.T) {
	var events []string
	reg := NewRegistry(zap.NewNop())
	reg.Register(&fakeModule{name: "catalog", events: &events})
	if err := reg.Register(&fakeModule{name: "catalog", events: &events}); err == nil {
		t.Fatal("duplicate Register should fail")
	}
}

func TestRegistryDisabledModule(t *testing.T) {
	var events []string
	reg := NewRegistry(zap.NewNop())
	reg.Register(&fakeModule{name: "catalog", events: &events})
	reg.Register(&fakeModule{name: "insight", events: &events})

	v := viper.New()
	v.Set("modules.insight.enabled", false)
	v.Set("modules.catalog.page_size", 9)

	ctx := context.Background()
	if err := reg.InitAll(ctx, Dependencies{Config: config.New(v)}); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	reg.StartAll(ctx)

	for _, e := range events {
		if e == "init:insight" || e == "start:insight" {
			t.Errorf("disabled module saw %q", e)
		}
	}
	if reg.Enabled("insight") {
		t.Error("Enabled(insight) = true, want false")
	}
	if !reg.Enabled("catalog") {
		t.Error("Enabled(catalog) = false, want true")
	}
	if _, ok := reg.AllRoutes()["insight"]; ok {
		t.Error("disabled module routes should not be mounted")
	}

	p, _ := reg.Get("catalog")
	if got := p.(*fakeModule).cfg.GetInt("page_size"); got != 9 {
		t.Errorf("module config page_size = %d, want 9", got)
	}

	infos := reg.Infos()
	if len(infos) != 2 || infos[1].Name != "insight" || infos[1].Enabled {
		t.Errorf("Infos() = %+v", infos)
	}
}

func TestRegistryInitError(t *testing.T) {
	var events []string
	reg := NewRegistry(zap.NewNop())
	reg.Register(&fakeModule{name: "contact", initErr: errors.New("boom"), events: &events})

	if err := reg.InitAll(context.Background(), Dependencies{}); err == nil {
		t.Fatal("InitAll should surface module init errors")
	}
}

func TestRegistryHealthWorstWins(t *testing.T) {
	var events []string
	reg := NewRegistry(zap.NewNop())
	reg.Register(&fakeModule{name: "catalog", health: pkgplugin.HealthOK, events: &events})
	reg.Register(&fakeModule{name: "insight", health: pkgplugin.HealthDegraded, events: &events})

	status, details := reg.Health(context.Background())
	if status != pkgplugin.HealthDegraded {
		t.Errorf("overall = %q, want degraded", status)
	}
	if len(details) != 2 {
		t.Errorf("details len = %d, want 2", len(details))
	}
}
