package types

import (
	"bytes"
	"testing"
)

func TestBytesToHashPadding(t *testing.T) {
	h := BytesToHash([]byte{0x01, 0x02})
	if h[30] != 0x01 || h[31] != 0x02 {
		t.Fatalf("expected left-padded bytes, got %x", h)
	}
	for i := 0; i < 30; i++ {
		if h[i] != 0 {
			t.Fatalf("expected zero padding at %d, got %x", i, h[i])
		}
	}
}

func TestBytesToHashTruncation(t *testing.T) {
	long := make([]byte, 40)
	for i := range long {
		long[i] = byte(i)
	}
	h := BytesToHash(long)
	if !bytes.Equal(h.Bytes(), long[8:]) {
		t.Fatalf("expected rightmost 32 bytes, got %x", h)
	}
}

func TestHexToHashRoundTrip(t *testing.T) {
	h := HexToHash("0x0102030405060708091011121314151617181920212223242526272829303132")
	if h.Hex() != "0x0102030405060708091011121314151617181920212223242526272829303132" {
		t.Fatalf("round trip mismatch: %s", h.Hex())
	}
}

func TestHashIsZero(t *testing.T) {
	var h Hash
	if !h.IsZero() {
		t.Fatal("zero hash should report IsZero")
	}
	h[0] = 1
	if h.IsZero() {
		t.Fatal("non-zero hash should not report IsZero")
	}
}

func TestAddressSetBytes(t *testing.T) {
	a := BytesToAddress([]byte{0xAA, 0xBB})
	if a[18] != 0xAA || a[19] != 0xBB {
		t.Fatalf("expected left-padded address, got %x", a)
	}
	if a.IsZero() {
		t.Fatal("address should not be zero")
	}
}

func TestHexToAddress(t *testing.T) {
	a := HexToAddress("0x52312ad6f01657413b2eae9287f6b9adad93d5fe")
	if a.Hex() != "0x52312ad6f01657413b2eae9287f6b9adad93d5fe" {
		t.Fatalf("round trip mismatch: %s", a.Hex())
	}
}

func TestPubKeyHashFromPubKey(t *testing.T) {
	pk := []byte("test public key bytes")
	p := PubKeyHashFromPubKey(pk)
	if p.IsZero() {
		t.Fatal("derived pubkey hash should not be zero")
	}
	// Deterministic.
	if p != PubKeyHashFromPubKey(pk) {
		t.Fatal("pubkey hash derivation not deterministic")
	}
	if p == PubKeyHashFromPubKey([]byte("other key")) {
		t.Fatal("distinct keys should hash differently")
	}
}

func TestBytesToPubKeyHash(t *testing.T) {
	p := BytesToPubKeyHash([]byte{0x01})
	if p[19] != 0x01 {
		t.Fatalf("expected left-padded pubkey hash, got %x", p)
	}
}
