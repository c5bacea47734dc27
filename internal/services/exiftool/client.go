package exiftool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Description carries the descriptive fields stamped onto a derivative.
type Description struct {
	Title      string
	Identifier string
	Source     string
	Publisher  string
	Rights     string
}

// Technical is the technical image metadata read back from a derivative.
type Technical struct {
	FileSize       int64  `json:"FileSize"`
	ImageWidth     int    `json:"ImageWidth"`
	ImageHeight    int    `json:"ImageHeight"`
	Standard       string `json:"Standard"`
	Transformation string `json:"Transformation"`
	Quantization   string `json:"Quantization"`
}

// Client defines the metadata operations the verifier needs.
type Client interface {
	// Stamp rewrites the file in place with the descriptive fields. File
	// bytes change; pixel content does not.
	Stamp(ctx context.Context, path string, desc Description) error
	// ReadTechnical extracts size, dimensions, and codestream metadata.
	ReadTechnical(ctx context.Context, path string) (Technical, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the exiftool command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "exiftool"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

func (c *CLI) Stamp(ctx context.Context, path string, desc Description) error {
	if path == "" {
		return errors.New("path required")
	}

	args := []string{
		"-overwrite_original",
		"-XMP-dc:Title=" + desc.Title,
		"-XMP-dc:Identifier=" + desc.Identifier,
		"-XMP-dc:Source=" + desc.Source,
		"-XMP-dc:Publisher=" + desc.Publisher,
		"-XMP-dc:Rights=" + desc.Rights,
		path,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("exiftool stamp %s: %w: %s", path, err, detail)
		}
		return fmt.Errorf("exiftool stamp %s: %w", path, err)
	}
	return nil
}

func (c *CLI) ReadTechnical(ctx context.Context, path string) (Technical, error) {
	if path == "" {
		return Technical{}, errors.New("path required")
	}

	args := []string{
		"-json",
		"-FileSize#",
		"-ImageWidth",
		"-ImageHeight",
		"-Standard",
		"-Transformation",
		"-Quantization",
		path,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return Technical{}, fmt.Errorf("exiftool read %s: %w: %s", path, err, detail)
		}
		return Technical{}, fmt.Errorf("exiftool read %s: %w", path, err)
	}

	var records []Technical
	if err := json.Unmarshal(stdout.Bytes(), &records); err != nil {
		return Technical{}, fmt.Errorf("exiftool read %s: decode output: %w", path, err)
	}
	if len(records) == 0 {
		return Technical{}, fmt.Errorf("exiftool read %s: no records returned", path)
	}
	return records[0], nil
}

var _ Client = (*CLI)(nil)
