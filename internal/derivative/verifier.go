package derivative

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caltechlibrary/distillery-sub000/internal/logging"
	"github.com/caltechlibrary/distillery-sub000/internal/services/exiftool"
	"github.com/caltechlibrary/distillery-sub000/internal/services/magick"
)

// Typed failures a file task can hit during conversion and verification.
var (
	ErrConversionFailed  = errors.New("conversion failed")
	ErrSignatureMismatch = errors.New("pixel signature mismatch")
)

// Request describes one conversion-and-verification task.
type Request struct {
	SourcePath  string
	OutputPath  string
	ImageID     string
	Description exiftool.Description
}

// Verifier runs the conversion tool, stamps descriptive metadata, and
// enforces pixel-signature equality between source and derivative before an
// artifact is considered valid.
type Verifier struct {
	magick   magick.Client
	exiftool exiftool.Client
	logger   *slog.Logger
}

// NewVerifier constructs a verifier from tool clients.
func NewVerifier(magickClient magick.Client, exiftoolClient exiftool.Client, logger *slog.Logger) *Verifier {
	return &Verifier{
		magick:   magickClient,
		exiftool: exiftoolClient,
		logger:   logging.NewComponentLogger(logger, "derivative"),
	}
}

// Process executes the verification stages strictly in order: convert (with
// the source signature computed concurrently), stamp, re-signature, compare,
// extract. On any failure the derivative is discarded and an error naming
// the image identifier is returned; nothing reaches upload.
func (v *Verifier) Process(ctx context.Context, req Request) (*Artifact, error) {
	type signatureResult struct {
		signature string
		err       error
	}
	// Source signature and conversion are independent; run them together.
	sourceSig := make(chan signatureResult, 1)
	go func() {
		sig, err := v.magick.Signature(ctx, req.SourcePath)
		sourceSig <- signatureResult{signature: sig, err: err}
	}()

	if err := v.magick.Convert(ctx, req.SourcePath, req.OutputPath); err != nil {
		return nil, fmt.Errorf("%w: image %s: %w", ErrConversionFailed, req.ImageID, err)
	}

	// Stamping mutates file bytes, so it must happen before the derivative
	// signature is computed. The signature covers pixel samples only, which
	// is why stamping cannot break verification.
	if err := v.exiftool.Stamp(ctx, req.OutputPath, req.Description); err != nil {
		v.discard(req.OutputPath)
		return nil, fmt.Errorf("stamp image %s: %w", req.ImageID, err)
	}

	derivedSig, err := v.magick.Signature(ctx, req.OutputPath)
	if err != nil {
		v.discard(req.OutputPath)
		return nil, fmt.Errorf("signature of derivative for image %s: %w", req.ImageID, err)
	}

	source := <-sourceSig
	if source.err != nil {
		v.discard(req.OutputPath)
		return nil, fmt.Errorf("signature of source for image %s: %w", req.ImageID, source.err)
	}

	if source.signature != derivedSig {
		v.discard(req.OutputPath)
		return nil, fmt.Errorf("%w: image %s: source %s, derivative %s",
			ErrSignatureMismatch, req.ImageID, source.signature, derivedSig)
	}

	tech, err := v.exiftool.ReadTechnical(ctx, req.OutputPath)
	if err != nil {
		v.discard(req.OutputPath)
		return nil, fmt.Errorf("technical metadata for image %s: %w", req.ImageID, err)
	}

	checksum, err := fileChecksum(req.OutputPath)
	if err != nil {
		v.discard(req.OutputPath)
		return nil, fmt.Errorf("checksum for image %s: %w", req.ImageID, err)
	}

	v.logger.Debug("derivative verified",
		logging.String(logging.FieldImage, req.ImageID),
		logging.Int64("size", tech.FileSize),
		logging.String("transformation", tech.Transformation),
	)

	return &Artifact{
		Path:           req.OutputPath,
		Size:           tech.FileSize,
		Width:          tech.ImageWidth,
		Height:         tech.ImageHeight,
		Standard:       tech.Standard,
		Transformation: tech.Transformation,
		Quantization:   tech.Quantization,
		Signature:      derivedSig,
		Checksum:       checksum,
	}, nil
}

func (v *Verifier) discard(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		v.logger.Warn("discard derivative failed", logging.String("path", path), logging.Error(err))
	}
}

func fileChecksum(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	hasher := md5.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return nil, err
	}
	return hasher.Sum(nil), nil
}
