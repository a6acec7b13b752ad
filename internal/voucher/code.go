// Package voucher generates the client-facing voucher codes and the final
// document locations derived from them.
package voucher

import (
	"crypto/rand"
	"fmt"
)

// CodeLength is the fixed length of a voucher code
const CodeLength = 8

// alphabet is the 36-symbol alphabet voucher codes are drawn from
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewCode generates a voucher code: CodeLength characters drawn uniformly
// from the alphabet. Codes are scoped per transaction; collisions are not
// checked, their probability being accepted as negligible at this length.
func NewCode() string {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform source is broken
		panic(fmt.Sprintf("voucher: rand.Read failed: %v", err))
	}

	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf)
}

// FinalDocumentURL returns the deterministic location of the certified
// document for a voucher code. Rendering and hosting the document is an
// external concern; the core only emits the location string.
func FinalDocumentURL(voucherCode string) string {
	return fmt.Sprintf("/docs/certified-%s.pdf", voucherCode)
}
