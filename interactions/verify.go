package interactions

import (
	"crypto/ed25519"
	"encoding/hex"
)

// verifySignature checks the detached signature over timestamp || raw body.
// Missing or malformed headers fail verification, they never panic.
func verifySignature(publicKey ed25519.PublicKey, timestamp, signature string, body []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || timestamp == "" || signature == "" {
		return false
	}

	decoded, err := hex.DecodeString(signature)
	if err != nil || len(decoded) != ed25519.SignatureSize {
		return false
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)

	return ed25519.Verify(publicKey, msg, decoded)
}
