package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caltechlibrary/distillery-sub000/internal/config"
	"github.com/caltechlibrary/distillery-sub000/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nsource_dir = %q\ncompleted_dir = %q\nwork_dir = %q\nlog_dir = %q\n\n"+
			"[catalog]\nbase_url = %q\nusername = %q\npassword = %q\n\n"+
			"[storage]\nbucket = %q\n\n"+
			"[tools]\nmagick_binary = %q\nexiftool_binary = %q\n",
		cfg.Paths.SourceDir,
		cfg.Paths.CompletedDir,
		cfg.Paths.WorkDir,
		cfg.Paths.LogDir,
		cfg.Catalog.BaseURL,
		cfg.Catalog.Username,
		cfg.Catalog.Password,
		cfg.Storage.Bucket,
		cfg.Tools.MagickBinary,
		cfg.Tools.ExifToolBinary,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}
