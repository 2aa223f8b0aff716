package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name       string
		argv       []string
		env        string
		wantCmd    string
		wantArgs   int
		wantConfig string
	}{
		{name: "empty", argv: nil},
		{name: "command only", argv: []string{"nfts"}, wantCmd: "nfts"},
		{name: "config before command", argv: []string{"-config", "studio.yaml", "mint", "https://x/a.png"}, wantCmd: "mint", wantArgs: 1, wantConfig: "studio.yaml"},
		{name: "config after command", argv: []string{"estimate", "-name", "Gold", "--config", "s.toml"}, wantCmd: "estimate", wantArgs: 2, wantConfig: "s.toml"},
		{name: "env fallback", argv: []string{"caps"}, env: "from-env.json", wantCmd: "caps", wantConfig: "from-env.json"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(configEnv, tc.env)
			old := os.Args
			os.Args = append([]string{"nft-studio"}, tc.argv...)
			defer func() { os.Args = old }()

			cmd, args, cfg := parseArgs()
			if cmd != tc.wantCmd || len(args) != tc.wantArgs || cfg != tc.wantConfig {
				t.Fatalf("parseArgs() = %q %v %q", cmd, args, cfg)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil || cfg == nil {
		t.Fatalf("loadConfig(\"\") = %v, %v", cfg, err)
	}

	path := filepath.Join(t.TempDir(), "studio.yaml")
	if err := os.WriteFile(path, []byte("network:\n  name: devnet\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.RPCAddr != "https://fullnode.devnet.sui.io:443" {
		t.Fatalf("unexpected fullnode %s", cfg.RPCAddr)
	}

	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
