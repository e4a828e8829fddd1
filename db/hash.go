package db

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"syscall"
)

// Hash returns the binary digest of buf using algo.
func Hash(algo string, buf []byte) (binhash []byte, err error) {
	h, err := newHash(algo)
	if err != nil {
		return
	}
	h.Write(buf)
	return h.Sum(nil), nil
}

// HexHash returns the lowercase hex digest of buf using algo.  This is
// the address of a blob holding buf.
func HexHash(algo string, buf []byte) (hexhash string, err error) {
	binhash, err := Hash(algo, buf)
	if err != nil {
		return
	}
	return bin2hex(binhash), nil
}

func newHash(algo string) (h hash.Hash, err error) {
	switch algo {
	case "sha256":
		h = sha256.New()
	case "sha512":
		h = sha512.New()
	default:
		err = fmt.Errorf("%w: %s", syscall.ENOSYS, algo)
	}
	return
}

// hexLen is the width of a hex digest for algo, or 0 if unknown.
func hexLen(algo string) int {
	switch algo {
	case "sha256":
		return sha256.Size * 2
	case "sha512":
		return sha512.Size * 2
	}
	return 0
}

func bin2hex(buf []byte) string {
	return hex.EncodeToString(buf)
}

// validHash reports whether s looks like a full digest for this db.
func (db *Db) validHash(s string) bool {
	if len(s) != hexLen(db.Algo) {
		return false
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// IsHash reports whether s is a full hash for this db's algorithm.
func (db *Db) IsHash(s string) bool {
	return db.validHash(s)
}
