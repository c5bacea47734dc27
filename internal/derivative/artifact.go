package derivative

import (
	"encoding/base64"
	"encoding/hex"
)

// Artifact is the verified output of one conversion: the derivative file on
// disk plus the technical metadata and integrity tokens the gateway needs.
// The artifact file is deleted only after successful registration.
type Artifact struct {
	Path           string
	Size           int64
	Width          int
	Height         int
	Standard       string
	Transformation string
	Quantization   string
	// Signature is the pixel-sample digest, equal to the source's.
	Signature string
	// Checksum is the binary content digest of the derivative file, used as
	// the storage integrity token. Independent of Signature.
	Checksum []byte
}

// ChecksumHex returns the content checksum in hex form, as compared against
// the storage service's integrity token.
func (a *Artifact) ChecksumHex() string {
	return hex.EncodeToString(a.Checksum)
}

// ChecksumBase64 returns the content checksum in the base64 form the storage
// service's integrity header expects.
func (a *Artifact) ChecksumBase64() string {
	return base64.StdEncoding.EncodeToString(a.Checksum)
}
