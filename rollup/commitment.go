package rollup

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/matter-labs/zksync-sub001/types"
)

// The block commitment binds the block number, fee account, state-root
// transition, and the full pubdata blob into one 32-byte value, built as an
// iterated SHA-256:
//
//	c0 = H(pad32(number) || pad32(feeAccount))
//	c1 = H(c0 || [pad32(timestamp) ||] oldRoot)
//	c2 = H(c1 || newRoot)
//	c  = H(c2 || pubdata)
//
// The timestamp round participates only when the chain runs with
// TimestampedCommitments. Chaining oldRoot in binds every commitment to the
// whole root history.

func pad32(v uint64) [32]byte {
	var b [32]byte
	binary.BigEndian.PutUint64(b[24:], v)
	return b
}

func blockCommitment(number uint32, feeAccount uint32, timestamp uint64, withTimestamp bool, oldRoot, newRoot types.Hash, pubdata []byte) types.Hash {
	h := sha256.New()
	num := pad32(uint64(number))
	fee := pad32(uint64(feeAccount))
	h.Write(num[:])
	h.Write(fee[:])
	c := h.Sum(nil)

	h = sha256.New()
	h.Write(c)
	if withTimestamp {
		ts := pad32(timestamp)
		h.Write(ts[:])
	}
	h.Write(oldRoot.Bytes())
	c = h.Sum(nil)

	h = sha256.New()
	h.Write(c)
	h.Write(newRoot.Bytes())
	c = h.Sum(nil)

	h = sha256.New()
	h.Write(c)
	h.Write(pubdata)
	return types.BytesToHash(h.Sum(nil))
}

// CommitmentToFieldElement masks a commitment into the proof system's
// scalar field by clearing the top 3 bits. This is the exact value fed to
// the external verifier as the public input; it is part of the interface
// contract with the proof system, not of the stored commitment.
func CommitmentToFieldElement(c types.Hash) types.Hash {
	c[0] &= 0x1F
	return c
}
