package magick

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Client defines the image conversion and pixel-signature operations the
// verifier needs.
type Client interface {
	// Convert writes a lossless derivative of src to dst. Quality 0 selects
	// the tool's lossless mode for the target codec.
	Convert(ctx context.Context, src, dst string) error
	// Signature returns a deterministic hash over the decoded pixel samples
	// of the image, invariant to container metadata.
	Signature(ctx context.Context, path string) (string, error)
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

// CLI wraps the ImageMagick command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "magick"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

func (c *CLI) Convert(ctx context.Context, src, dst string) error {
	if src == "" {
		return errors.New("source path required")
	}
	if dst == "" {
		return errors.New("destination path required")
	}

	cmd := commandContext(ctx, c.binary, src, "-quality", "0", dst) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("magick convert %s: %w: %s", src, err, detail)
		}
		return fmt.Errorf("magick convert %s: %w", src, err)
	}
	return nil
}

func (c *CLI) Signature(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", errors.New("path required")
	}

	cmd := commandContext(ctx, c.binary, "identify", "-quiet", "-format", "%#", path) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("magick identify %s: %w: %s", path, err, detail)
		}
		return "", fmt.Errorf("magick identify %s: %w", path, err)
	}

	signature := strings.TrimSpace(stdout.String())
	if signature == "" {
		return "", fmt.Errorf("magick identify %s: empty signature", path)
	}
	return signature, nil
}

var _ Client = (*CLI)(nil)
