package magick

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func stubCommand(t *testing.T, mode string, captured *[][]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append(*captured, append([]string{name}, args...))
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "MAGICK_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/magick"))
	if cli.binary != "/opt/magick" {
		t.Fatalf("binary override not applied: %q", cli.binary)
	}
}

func TestConvertRequiresPaths(t *testing.T) {
	cli := NewCLI()
	if err := cli.Convert(context.Background(), "", "/tmp/out.jp2"); err == nil {
		t.Fatal("expected error for empty source")
	}
	if err := cli.Convert(context.Background(), "/tmp/in.tif", ""); err == nil {
		t.Fatal("expected error for empty destination")
	}
}

func TestConvertPassesLosslessQuality(t *testing.T) {
	var captured [][]string
	stubCommand(t, "success", &captured)

	cli := NewCLI()
	if err := cli.Convert(context.Background(), "/scans/page.tif", "/work/page.jp2"); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(captured) != 1 {
		t.Fatalf("expected one invocation, got %d", len(captured))
	}
	joined := strings.Join(captured[0], " ")
	if !strings.Contains(joined, "-quality 0") {
		t.Fatalf("quality flag missing: %v", captured[0])
	}
}

func TestConvertSurfacesToolFailure(t *testing.T) {
	stubCommand(t, "fail", nil)

	cli := NewCLI()
	err := cli.Convert(context.Background(), "/scans/corrupt.tif", "/work/out.jp2")
	if err == nil {
		t.Fatal("expected conversion failure")
	}
	if !strings.Contains(err.Error(), "improper image header") {
		t.Fatalf("stderr detail not propagated: %v", err)
	}
}

func TestSignatureTrimsOutput(t *testing.T) {
	stubCommand(t, "signature", nil)

	cli := NewCLI()
	sig, err := cli.Signature(context.Background(), "/scans/page.tif")
	if err != nil {
		t.Fatalf("Signature: %v", err)
	}
	if sig != "a1b2c3d4" {
		t.Fatalf("unexpected signature %q", sig)
	}
}

func TestSignatureRejectsEmptyOutput(t *testing.T) {
	stubCommand(t, "empty", nil)

	cli := NewCLI()
	if _, err := cli.Signature(context.Background(), "/scans/page.tif"); err == nil {
		t.Fatal("expected error for empty signature")
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("MAGICK_HELPER_MODE") {
	case "success":
		os.Exit(0)
	case "signature":
		fmt.Println("a1b2c3d4")
		os.Exit(0)
	case "empty":
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "magick: improper image header")
		os.Exit(1)
	}
	os.Exit(2)
}
