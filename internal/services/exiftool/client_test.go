package exiftool

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
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "EXIFTOOL_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestStampWritesAllFiveFields(t *testing.T) {
	var captured [][]string
	stubCommand(t, "success", &captured)

	cli := NewCLI()
	desc := Description{
		Title:      "Letters, 1901 image 3",
		Identifier: "abcd-efgh",
		Source:     "ABC Papers",
		Publisher:  "University Archives",
		Rights:     "No known restrictions",
	}
	if err := cli.Stamp(context.Background(), "/work/page.jp2", desc); err != nil {
		t.Fatalf("Stamp: %v", err)
	}

	joined := strings.Join(captured[0], "\n")
	for _, want := range []string{
		"-overwrite_original",
		"-XMP-dc:Title=Letters, 1901 image 3",
		"-XMP-dc:Identifier=abcd-efgh",
		"-XMP-dc:Source=ABC Papers",
		"-XMP-dc:Publisher=University Archives",
		"-XMP-dc:Rights=No known restrictions",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("argument %q missing from %v", want, captured[0])
		}
	}
}

func TestStampSurfacesToolFailure(t *testing.T) {
	stubCommand(t, "fail", nil)

	cli := NewCLI()
	err := cli.Stamp(context.Background(), "/work/page.jp2", Description{})
	if err == nil {
		t.Fatal("expected stamp failure")
	}
	if !strings.Contains(err.Error(), "not a valid JP2") {
		t.Fatalf("stderr detail not propagated: %v", err)
	}
}

func TestReadTechnicalParsesJSON(t *testing.T) {
	stubCommand(t, "technical", nil)

	cli := NewCLI()
	tech, err := cli.ReadTechnical(context.Background(), "/work/page.jp2")
	if err != nil {
		t.Fatalf("ReadTechnical: %v", err)
	}
	if tech.FileSize != 4194304 || tech.ImageWidth != 2400 || tech.ImageHeight != 3600 {
		t.Fatalf("unexpected technical values: %+v", tech)
	}
	if tech.Standard != "JPEG 2000 Part 1" {
		t.Fatalf("unexpected standard: %q", tech.Standard)
	}
	if tech.Transformation != "5-3 reversible" || tech.Quantization != "no quantization" {
		t.Fatalf("unexpected codestream values: %+v", tech)
	}
}

func TestReadTechnicalRejectsEmptyOutput(t *testing.T) {
	stubCommand(t, "empty", nil)

	cli := NewCLI()
	if _, err := cli.ReadTechnical(context.Background(), "/work/page.jp2"); err == nil {
		t.Fatal("expected error for empty record list")
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("EXIFTOOL_HELPER_MODE") {
	case "success":
		os.Exit(0)
	case "technical":
		fmt.Println(`[{"FileSize":4194304,"ImageWidth":2400,"ImageHeight":3600,"Standard":"JPEG 2000 Part 1","Transformation":"5-3 reversible","Quantization":"no quantization"}]`)
		os.Exit(0)
	case "empty":
		fmt.Println(`[]`)
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "Error: not a valid JP2 (looks more like a TIFF)")
		os.Exit(1)
	}
	os.Exit(2)
}
