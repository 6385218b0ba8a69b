// Package types defines the fixed-width scalar primitives used across the
// rollup core: L1 addresses, 32-byte roots and commitments, and packed
// public key hashes.
package types

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	HashLength       = 32
	AddressLength    = 20
	PubKeyHashLength = 20
)

// Hash represents a 32-byte value: a state root, a block commitment, or an
// auth fact digest.
type Hash [HashLength]byte

// Address represents the 20-byte address of an L1 account.
type Address [AddressLength]byte

// PubKeyHash is the packed 20-byte hash of a rollup account public key.
type PubKeyHash [PubKeyHashLength]byte

// BytesToHash converts bytes to Hash, left-padding if shorter than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash converts a hex string to Hash.
func HexToHash(s string) Hash {
	return BytesToHash(fromHex(s))
}

// Bytes returns the byte representation of the hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the hex string representation of the hash.
func (h Hash) Hex() string { return fmt.Sprintf("0x%x", h[:]) }

// SetBytes sets the hash from a byte slice, left-padding if necessary.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// IsZero returns whether the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// BytesToAddress converts bytes to Address, left-padding if shorter than
// 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress converts a hex string to Address.
func HexToAddress(s string) Address {
	return BytesToAddress(fromHex(s))
}

// Bytes returns the byte representation of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the hex string representation of the address.
func (a Address) Hex() string { return fmt.Sprintf("0x%x", a[:]) }

// SetBytes sets the address from a byte slice.
func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// IsZero returns whether the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// BytesToPubKeyHash converts bytes to PubKeyHash, left-padding if shorter
// than 20 bytes.
func BytesToPubKeyHash(b []byte) PubKeyHash {
	var p PubKeyHash
	if len(b) > PubKeyHashLength {
		b = b[len(b)-PubKeyHashLength:]
	}
	copy(p[PubKeyHashLength-len(b):], b)
	return p
}

// Bytes returns the byte representation of the pubkey hash.
func (p PubKeyHash) Bytes() []byte { return p[:] }

// Hex returns the hex string representation of the pubkey hash.
func (p PubKeyHash) Hex() string { return fmt.Sprintf("0x%x", p[:]) }

// IsZero returns whether the pubkey hash is all zeros.
func (p PubKeyHash) IsZero() bool {
	return p == PubKeyHash{}
}

// String implements fmt.Stringer.
func (p PubKeyHash) String() string { return p.Hex() }

// PubKeyHashFromPubKey derives the packed pubkey hash from an uncompressed
// public key: the last 20 bytes of Keccak-256 over the key bytes.
func PubKeyHashFromPubKey(pubKey []byte) PubKeyHash {
	d := sha3.NewLegacyKeccak256()
	d.Write(pubKey)
	sum := d.Sum(nil)
	return BytesToPubKeyHash(sum[12:])
}

// fromHex decodes a hex string, stripping an optional "0x" prefix. Odd
// length strings are left-padded with a zero nibble.
func fromHex(s string) []byte {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
