package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainRecord separates record digests from any other hash of the same
// bytes. The suffix tracks RecordVersion.
const DomainRecord = "mutsweep/record/v" + RecordVersion

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RecordDigest returns a stable content digest of rec. Equal records have
// equal digests regardless of how their maps were built.
func RecordDigest(rec SweepRecord) (string, error) {
	data, err := MarshalRecord(rec)
	if err != nil {
		return "", fmt.Errorf("RecordDigest: %w", err)
	}
	return hashWithDomain(DomainRecord, data), nil
}

// MustRecordDigest is like RecordDigest but panics on error.
// Use only in tests.
func MustRecordDigest(rec SweepRecord) string {
	d, err := RecordDigest(rec)
	if err != nil {
		panic(err)
	}
	return d
}
