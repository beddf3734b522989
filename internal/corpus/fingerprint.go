package corpus

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// fingerprintPrefixBytes bounds how much of the source file contributes to
// the cache fingerprint.
const fingerprintPrefixBytes = 1 << 20

// fileFingerprint hashes a fixed-size prefix of the file at path.
func fileFingerprint(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open corpus for fingerprint: %w", err)
	}
	defer file.Close()

	hasher := md5.New()
	if _, err := io.CopyN(hasher, file, fingerprintPrefixBytes); err != nil && err != io.EOF {
		return "", fmt.Errorf("hash corpus prefix: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
