package pubdata

import (
	"bytes"

	"github.com/holiman/uint256"

	"github.com/matter-labs/zksync-sub001/types"
)

// Operation opcodes. The opcode is always the first byte of a record.
const (
	OpNoop          = 0x00
	OpDeposit       = 0x01
	OpTransferToNew = 0x02
	OpPartialExit   = 0x03
	OpCloseAccount  = 0x04
	OpTransfer      = 0x05
	OpFullExit      = 0x06
	OpChangePubKey  = 0x07
)

// Per-opcode chunk counts. These are fixed a priori; the stream never
// carries a length field.
const (
	NoopChunks          = 1
	DepositChunks       = 6
	TransferToNewChunks = 5
	PartialExitChunks   = 6
	CloseAccountChunks  = 1
	TransferChunks      = 2
	FullExitChunks      = 6
	ChangePubKeyChunks  = 6
)

// ChunksByOpcode returns the fixed chunk count for an opcode, or false for
// an unsupported opcode.
func ChunksByOpcode(op uint8) (int, bool) {
	switch op {
	case OpNoop:
		return NoopChunks, true
	case OpDeposit:
		return DepositChunks, true
	case OpTransferToNew:
		return TransferToNewChunks, true
	case OpPartialExit:
		return PartialExitChunks, true
	case OpCloseAccount:
		return CloseAccountChunks, true
	case OpTransfer:
		return TransferChunks, true
	case OpFullExit:
		return FullExitChunks, true
	case OpChangePubKey:
		return ChangePubKeyChunks, true
	default:
		return 0, false
	}
}

// Op is a single decoded operation record.
type Op interface {
	// OpCode returns the operation's wire opcode.
	OpCode() uint8

	// Chunks returns the fixed chunk count of the operation.
	Chunks() int
}

// NoopOp fills unused chunk space at the end of a block. Its whole chunk
// must be zero on the wire.
type NoopOp struct{}

func (NoopOp) OpCode() uint8 { return OpNoop }
func (NoopOp) Chunks() int   { return NoopChunks }

// DepositOp moves funds from an L1 priority request into a rollup account.
type DepositOp struct {
	AccountID uint32
	TokenID   uint16
	Amount    *uint256.Int
	Owner     types.Address
}

func (*DepositOp) OpCode() uint8 { return OpDeposit }
func (*DepositOp) Chunks() int   { return DepositChunks }

// PartialExitOp withdraws part of a rollup balance to an L1 recipient. The
// credit is applied at verify time, never at commit time.
type PartialExitOp struct {
	AccountID uint32
	TokenID   uint16
	Amount    *uint256.Int
	Fee       uint16
	Recipient types.Address
}

func (*PartialExitOp) OpCode() uint8 { return OpPartialExit }
func (*PartialExitOp) Chunks() int   { return PartialExitChunks }

// FullExitOp empties a rollup account's balance for one token to its L1
// owner. The amount is operator-supplied at commit: it was unknown when
// the priority request was made and is therefore excluded from request
// matching.
type FullExitOp struct {
	AccountID uint32
	Owner     types.Address
	TokenID   uint16
	Nonce     uint32
	Amount    *uint256.Int
}

func (*FullExitOp) OpCode() uint8 { return OpFullExit }
func (*FullExitOp) Chunks() int   { return FullExitChunks }

// ChangePubKeyOp rotates a rollup account's signing key. The authorizing
// signature travels out-of-band in the commit witness.
type ChangePubKeyOp struct {
	AccountID     uint32
	NewPubKeyHash types.PubKeyHash
	Owner         types.Address
	Nonce         uint32
}

func (*ChangePubKeyOp) OpCode() uint8 { return OpChangePubKey }
func (*ChangePubKeyOp) Chunks() int   { return ChangePubKeyChunks }

// SkipOp is an operation with no onchain side effect (Transfer,
// TransferToNew, CloseAccount). The parser only advances over it; the raw
// record bytes are retained for commitment hashing callers that want them.
type SkipOp struct {
	Code uint8
	Raw  []byte
}

func (s *SkipOp) OpCode() uint8 { return s.Code }
func (s *SkipOp) Chunks() int {
	n, _ := ChunksByOpcode(s.Code)
	return n
}

// IsPriorityOp reports whether the opcode consumes a priority request
// (Deposit or FullExit).
func IsPriorityOp(op uint8) bool {
	return op == OpDeposit || op == OpFullExit
}

// ParseOp decodes the single operation starting at offset off. It returns
// the typed record and the number of bytes consumed, which is always the
// opcode's full chunk length. Decoded records must have zero padding; skip
// records are opaque beyond their length.
func ParseOp(buf []byte, off int) (Op, int, error) {
	if off >= len(buf) {
		return nil, 0, ErrShortBuffer
	}
	code := buf[off]
	chunks, ok := ChunksByOpcode(code)
	if !ok {
		return nil, 0, ErrUnknownOpcode
	}
	size := chunks * ChunkBytes
	if off+size > len(buf) {
		return nil, 0, ErrShortBuffer
	}
	record := buf[off : off+size]
	r := NewReader(record)
	r.off = 1 // opcode already inspected

	switch code {
	case OpNoop:
		if !allZero(record[1:]) {
			return nil, 0, ErrNonZeroPadding
		}
		return NoopOp{}, size, nil

	case OpDeposit:
		op := &DepositOp{}
		op.AccountID, _ = r.U24()
		op.TokenID, _ = r.U16()
		op.Amount, _ = r.Amount()
		op.Owner, _ = r.Address()
		if !allZero(record[r.Offset():]) {
			return nil, 0, ErrNonZeroPadding
		}
		return op, size, nil

	case OpPartialExit:
		op := &PartialExitOp{}
		op.AccountID, _ = r.U24()
		op.TokenID, _ = r.U16()
		op.Amount, _ = r.Amount()
		op.Fee, _ = r.U16()
		op.Recipient, _ = r.Address()
		if !allZero(record[r.Offset():]) {
			return nil, 0, ErrNonZeroPadding
		}
		return op, size, nil

	case OpFullExit:
		op := &FullExitOp{}
		op.AccountID, _ = r.U24()
		op.Owner, _ = r.Address()
		op.TokenID, _ = r.U16()
		op.Nonce, _ = r.U32()
		op.Amount, _ = r.Amount()
		if !allZero(record[r.Offset():]) {
			return nil, 0, ErrNonZeroPadding
		}
		return op, size, nil

	case OpChangePubKey:
		op := &ChangePubKeyOp{}
		op.AccountID, _ = r.U24()
		op.NewPubKeyHash, _ = r.PubKeyHash()
		op.Owner, _ = r.Address()
		op.Nonce, _ = r.U32()
		return op, size, nil

	default: // Transfer, TransferToNew, CloseAccount
		raw := make([]byte, size)
		copy(raw, record)
		return &SkipOp{Code: code, Raw: raw}, size, nil
	}
}

// WalkBlock decodes an entire block pubdata stream. The stream length must
// be a whole number of chunks and the operations must tile it exactly; any
// remainder, overrun, or unknown opcode rejects the whole stream.
func WalkBlock(pubdata []byte) ([]Op, error) {
	if len(pubdata)%ChunkBytes != 0 {
		return nil, ErrBadLength
	}
	var ops []Op
	off := 0
	for off < len(pubdata) {
		op, n, err := ParseOp(pubdata, off)
		if err != nil {
			if err == ErrShortBuffer {
				// An op declared more chunks than the stream holds.
				return nil, ErrBadLength
			}
			return nil, err
		}
		ops = append(ops, op)
		off += n
	}
	return ops, nil
}

func allZero(b []byte) bool {
	return bytes.Count(b, []byte{0}) == len(b)
}
