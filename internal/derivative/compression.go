package derivative

import "fmt"

const (
	transformReversible   = "5-3 reversible"
	transformIrreversible = "9-7 irreversible"
	quantizationNone      = "no quantization"
	quantizationScalarExp = "scalar expounded"
)

// Caption builds the human-readable file-version caption for a derivative.
// The transform/quantization pair decides whether a compression claim is
// made; unrecognized pairs claim nothing.
func Caption(width, height int, transformation, quantization string) string {
	base := fmt.Sprintf("width: %d; height: %d", width, height)
	switch {
	case transformation == transformReversible && quantization == quantizationNone:
		return base + "; compression: lossless"
	case transformation == transformIrreversible && quantization == quantizationScalarExp:
		return base + "; compression: lossy"
	default:
		return base
	}
}

// FormatVersion builds the permanent format-version string recorded in the
// catalog. Unrecognized transform/quantization pairs fall back to the codec
// standard tag alone.
func FormatVersion(standard, transformation, quantization string) string {
	switch {
	case transformation == transformReversible && quantization == quantizationNone:
		return standard + "; lossless (wavelet transformation: 5/3 reversible with no quantization)"
	case transformation == transformIrreversible && quantization == quantizationScalarExp:
		return standard + "; lossy (wavelet transformation: 9/7 irreversible with scalar expounded quantization)"
	default:
		return standard
	}
}
