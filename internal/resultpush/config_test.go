package resultpush

import (
	"os"
	"path/filepath"
	"testing"

	"lucky-wheel/internal/config"
)

func TestConfigFromServerFiltersTargets(t *testing.T) {
	scfg := config.ServerConfig{
		ResultPushEnabled:     true,
		ResultPushWorkers:     2,
		ResultPushRetryMax:    3,
		ResultPushRetryBaseMS: 200,
		ResultPushConfigJSON: `[
		  {"platform":"Discord","endpoint":"https://a","enabled":true,"event_allowlist":[" Spin_Committed "]},
		  {"platform":"feishu","endpoint":"","enabled":true},
		  {"platform":"feishu","endpoint":"https://b","enabled":false}
		]`,
	}
	cfg, err := ConfigFromServer(scfg)
	if err != nil {
		t.Fatalf("config parse failed: %v", err)
	}
	if len(cfg.Targets) != 1 {
		t.Fatalf("expected 1 filtered target, got %d", len(cfg.Targets))
	}
	if cfg.Targets[0].Platform != "discord" {
		t.Fatalf("expected lowercased platform, got %s", cfg.Targets[0].Platform)
	}
	if cfg.Targets[0].EventAllowlist[0] != "spin_committed" {
		t.Fatalf("expected normalized allowlist, got %#v", cfg.Targets[0].EventAllowlist)
	}
}

func TestConfigFromServerUsesConfigPathFirst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.json")
	fileJSON := `[{"platform":"discord","endpoint":"https://from-file","enabled":true}]`
	if err := os.WriteFile(path, []byte(fileJSON), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	scfg := config.ServerConfig{
		ResultPushEnabled:    true,
		ResultPushConfigPath: path,
		ResultPushConfigJSON: `[{"platform":"discord","endpoint":"https://from-env","enabled":true}]`,
	}
	cfg, err := ConfigFromServer(scfg)
	if err != nil {
		t.Fatalf("config parse failed: %v", err)
	}
	if len(cfg.Targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(cfg.Targets))
	}
	if cfg.Targets[0].Endpoint != "https://from-file" {
		t.Fatalf("expected endpoint from file, got %s", cfg.Targets[0].Endpoint)
	}
}

func TestConfigFromServerConfigPathReadError(t *testing.T) {
	scfg := config.ServerConfig{
		ResultPushEnabled:    true,
		ResultPushConfigPath: "/tmp/not-exist-result-push.json",
	}
	if _, err := ConfigFromServer(scfg); err == nil {
		t.Fatal("expected read error for missing config path")
	}
}

func TestConfigFromServerDisabledSkipsTargetLoad(t *testing.T) {
	scfg := config.ServerConfig{
		ResultPushEnabled:    false,
		ResultPushConfigPath: "/tmp/not-exist-result-push.json",
	}
	cfg, err := ConfigFromServer(scfg)
	if err != nil {
		t.Fatalf("disabled config should not touch the path: %v", err)
	}
	if cfg.Enabled {
		t.Fatal("expected disabled config")
	}
}

func TestConfigFromServerAppliesDefaults(t *testing.T) {
	cfg, err := ConfigFromServer(config.ServerConfig{ResultPushEnabled: true})
	if err != nil {
		t.Fatalf("config parse failed: %v", err)
	}
	if cfg.Workers != 4 {
		t.Fatalf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.RetryBase <= 0 {
		t.Fatalf("RetryBase = %v, want positive default", cfg.RetryBase)
	}
	if cfg.ConfigReload <= 0 {
		t.Fatalf("ConfigReload = %v, want positive default", cfg.ConfigReload)
	}
}
