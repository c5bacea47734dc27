package main

import (
	"testing"

	"github.com/caltechlibrary/distillery-sub000/internal/testsupport"
)

func TestCheckReportsStubbedTools(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "ImageMagick")
	requireContains(t, out, "ExifTool")
	requireContains(t, out, "yes")
}

func TestCheckFailsWhenToolsMissing(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Tools.MagickBinary = "definitely-not-a-real-binary"
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail when a required tool is missing")
	}
	requireContains(t, err.Error(), "missing required tools")
}
