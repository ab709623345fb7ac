package record

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// DomainPayload is the domain prefix for payload fingerprints.
// Version suffix enables future algorithm migration.
const DomainPayload = "devsync/payload/v1"

// Fingerprint computes the content fingerprint of a payload.
//
// Format: SHA256(domain + 0x00 + NFC(payload)), hex-encoded. The null byte
// separator prevents domain/data boundary ambiguity. Payloads are NFC
// normalized first so that devices submitting canonically-equal Unicode
// derive identical fingerprints.
func Fingerprint(payload string) string {
	h := sha256.New()
	h.Write([]byte(DomainPayload))
	h.Write([]byte{0x00})
	h.Write([]byte(norm.NFC.String(payload)))
	return hex.EncodeToString(h.Sum(nil))
}
