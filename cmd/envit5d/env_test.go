package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct{ in string; want []string }{
		{"a,b,c", []string{"a","b","c"}},
		{" a , b , c ", []string{"a","b","c"}},
		{"a,,c", []string{"a","c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) != len(c.want) { t.Fatalf("%q -> %v, want %v", c.in, got, c.want) }
		for i := range got {
			if got[i] != c.want[i] { t.Fatalf("%q -> %v, want %v", c.in, got, c.want) }
		}
	}
}

func TestEnvStr(t *testing.T) {
	t.Setenv("ENVIT5D_TEST_STR", "x")
	if got := envStr("ENVIT5D_TEST_STR", "d"); got != "x" { t.Fatalf("set var: got %q", got) }
	if got := envStr("ENVIT5D_TEST_STR_UNSET", "d"); got != "d" { t.Fatalf("unset var: got %q", got) }
}

func TestEnvInt(t *testing.T) {
	t.Setenv("ENVIT5D_TEST_INT", "42")
	if got := envInt("ENVIT5D_TEST_INT", 7); got != 42 { t.Fatalf("set var: got %d", got) }
	t.Setenv("ENVIT5D_TEST_INT", "nope")
	if got := envInt("ENVIT5D_TEST_INT", 7); got != 7 { t.Fatalf("bad value should fall back: got %d", got) }
	if got := envInt64("ENVIT5D_TEST_INT64_UNSET", 9); got != 9 { t.Fatalf("unset int64: got %d", got) }
}

func TestEnvBool(t *testing.T) {
	t.Setenv("ENVIT5D_TEST_BOOL", "true")
	if !envBool("ENVIT5D_TEST_BOOL", false) { t.Fatalf("expected true") }
	t.Setenv("ENVIT5D_TEST_BOOL", "maybe")
	if envBool("ENVIT5D_TEST_BOOL", false) { t.Fatalf("bad value should fall back to false") }
}

func TestServeConfigPrecedence(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "cfg.yaml")
	if err := os.WriteFile(p, []byte("addr: :7777\ndevice: cpu\nbeams: 2\n"), 0o644); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	cmd, sf := newServeCmd()
	if err := cmd.ParseFlags([]string{"--config", p, "--device", "cuda"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := resolveConfig(cmd, *sf)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Addr != ":7777" {
		t.Fatalf("file value should apply to unchanged flag, got addr %q", cfg.Addr)
	}
	if cfg.Device != "cuda" {
		t.Fatalf("explicit flag should win over file, got device %q", cfg.Device)
	}
	if cfg.Beams != 2 {
		t.Fatalf("expected beams 2 from file, got %d", cfg.Beams)
	}
}

func TestServeFlagEnvDefaults(t *testing.T) {
	t.Setenv("ENVIT5D_ADDR", ":9000")
	t.Setenv("ENVIT5D_CORS_ORIGINS", "https://a.example, https://b.example")
	cmd, sf := newServeCmd()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := resolveConfig(cmd, *sf)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("env default should apply, got addr %q", cfg.Addr)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://a.example" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestResolveConfigBadFile(t *testing.T) {
	cmd, sf := newServeCmd()
	if err := cmd.ParseFlags([]string{"--config", "/definitely/not/here.yaml"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := resolveConfig(cmd, *sf); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
