package derivative

import "testing"

func TestCaption(t *testing.T) {
	tests := []struct {
		name           string
		transformation string
		quantization   string
		want           string
	}{
		{
			name:           "lossless",
			transformation: "5-3 reversible",
			quantization:   "no quantization",
			want:           "width: 2400; height: 3000; compression: lossless",
		},
		{
			name:           "lossy",
			transformation: "9-7 irreversible",
			quantization:   "scalar expounded",
			want:           "width: 2400; height: 3000; compression: lossy",
		},
		{
			name:           "mixed fields make no claim",
			transformation: "5-3 reversible",
			quantization:   "scalar expounded",
			want:           "width: 2400; height: 3000",
		},
		{
			name: "unknown fields make no claim",
			want: "width: 2400; height: 3000",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Caption(2400, 3000, tc.transformation, tc.quantization)
			if got != tc.want {
				t.Fatalf("Caption() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatVersion(t *testing.T) {
	lossless := FormatVersion("ISO/IEC 15444-1", "5-3 reversible", "no quantization")
	want := "ISO/IEC 15444-1; lossless (wavelet transformation: 5/3 reversible with no quantization)"
	if lossless != want {
		t.Fatalf("FormatVersion() = %q, want %q", lossless, want)
	}

	lossy := FormatVersion("ISO/IEC 15444-1", "9-7 irreversible", "scalar expounded")
	want = "ISO/IEC 15444-1; lossy (wavelet transformation: 9/7 irreversible with scalar expounded quantization)"
	if lossy != want {
		t.Fatalf("FormatVersion() = %q, want %q", lossy, want)
	}

	unknown := FormatVersion("ISO/IEC 15444-1", "custom", "custom")
	if unknown != "ISO/IEC 15444-1" {
		t.Fatalf("FormatVersion() = %q, want bare standard", unknown)
	}
}
