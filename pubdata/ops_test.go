package pubdata

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"

	"github.com/matter-labs/zksync-sub001/types"
)

var (
	testOwner     = types.HexToAddress("0x8888f1f195afa192cfee860698584c030f4c9db1")
	testRecipient = types.HexToAddress("0x9999d1c6736f05e48a1a6db2af5bf2fafcdacf9a")
)

func testAmount(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func makeDepositOp() *DepositOp {
	return &DepositOp{
		AccountID: 0x0102,
		TokenID:   7,
		Amount:    testAmount(1_000_000),
		Owner:     testOwner,
	}
}

func TestDepositOpRoundTrip(t *testing.T) {
	orig := makeDepositOp()
	enc := orig.Encode()
	if len(enc) != DepositChunks*ChunkBytes {
		t.Fatalf("encoded length = %d, want %d", len(enc), DepositChunks*ChunkBytes)
	}

	op, n, err := ParseOp(enc, 0)
	if err != nil {
		t.Fatalf("ParseOp: %v", err)
	}
	if n != len(enc) {
		t.Fatalf("consumed %d, want %d", n, len(enc))
	}
	dec, ok := op.(*DepositOp)
	if !ok {
		t.Fatalf("decoded type %T, want *DepositOp", op)
	}
	if dec.AccountID != orig.AccountID || dec.TokenID != orig.TokenID ||
		!dec.Amount.Eq(orig.Amount) || dec.Owner != orig.Owner {
		t.Fatalf("round trip mismatch: %+v vs %+v", dec, orig)
	}
}

func TestPartialExitOpRoundTrip(t *testing.T) {
	orig := &PartialExitOp{
		AccountID: 42,
		TokenID:   3,
		Amount:    testAmount(5555),
		Fee:       17,
		Recipient: testRecipient,
	}
	enc := orig.Encode()
	op, _, err := ParseOp(enc, 0)
	if err != nil {
		t.Fatalf("ParseOp: %v", err)
	}
	dec := op.(*PartialExitOp)
	if dec.AccountID != orig.AccountID || dec.TokenID != orig.TokenID ||
		!dec.Amount.Eq(orig.Amount) || dec.Fee != orig.Fee || dec.Recipient != orig.Recipient {
		t.Fatalf("round trip mismatch: %+v vs %+v", dec, orig)
	}
}

func TestFullExitOpRoundTrip(t *testing.T) {
	orig := &FullExitOp{
		AccountID: 9,
		Owner:     testOwner,
		TokenID:   2,
		Nonce:     77,
		Amount:    testAmount(123456789),
	}
	enc := orig.Encode()
	if len(enc) != FullExitChunks*ChunkBytes {
		t.Fatalf("encoded length = %d, want %d", len(enc), FullExitChunks*ChunkBytes)
	}
	op, _, err := ParseOp(enc, 0)
	if err != nil {
		t.Fatalf("ParseOp: %v", err)
	}
	dec := op.(*FullExitOp)
	if dec.AccountID != orig.AccountID || dec.Owner != orig.Owner ||
		dec.TokenID != orig.TokenID || dec.Nonce != orig.Nonce || !dec.Amount.Eq(orig.Amount) {
		t.Fatalf("round trip mismatch: %+v vs %+v", dec, orig)
	}
}

func TestChangePubKeyOpRoundTrip(t *testing.T) {
	orig := &ChangePubKeyOp{
		AccountID:     3,
		NewPubKeyHash: types.BytesToPubKeyHash([]byte{0xCC, 0xDD}),
		Owner:         testOwner,
		Nonce:         11,
	}
	enc := orig.Encode()
	// ChangePubKey fills its chunk run exactly.
	if len(enc) != ChangePubKeyChunks*ChunkBytes {
		t.Fatalf("encoded length = %d, want %d", len(enc), ChangePubKeyChunks*ChunkBytes)
	}
	op, _, err := ParseOp(enc, 0)
	if err != nil {
		t.Fatalf("ParseOp: %v", err)
	}
	dec := op.(*ChangePubKeyOp)
	if *dec != *orig {
		t.Fatalf("round trip mismatch: %+v vs %+v", dec, orig)
	}
}

func TestParseOpUnknownOpcode(t *testing.T) {
	chunk := make([]byte, ChunkBytes)
	chunk[0] = 0x7F
	if _, _, err := ParseOp(chunk, 0); err != ErrUnknownOpcode {
		t.Fatalf("expected ErrUnknownOpcode, got %v", err)
	}
}

func TestParseOpNonZeroPadding(t *testing.T) {
	enc := makeDepositOp().Encode()
	enc[len(enc)-1] = 0xFF
	if _, _, err := ParseOp(enc, 0); err != ErrNonZeroPadding {
		t.Fatalf("expected ErrNonZeroPadding, got %v", err)
	}
}

func TestParseOpNoopMustBeZero(t *testing.T) {
	chunk := make([]byte, ChunkBytes)
	chunk[3] = 0x01
	if _, _, err := ParseOp(chunk, 0); err != ErrNonZeroPadding {
		t.Fatalf("expected ErrNonZeroPadding, got %v", err)
	}
}

func TestWalkBlockExactConsumption(t *testing.T) {
	var stream []byte
	stream = append(stream, NoopOp{}.Encode()...)
	stream = append(stream, makeDepositOp().Encode()...)
	transfer := make([]byte, TransferChunks*ChunkBytes)
	transfer[0] = OpTransfer
	stream = append(stream, transfer...)

	ops, err := WalkBlock(stream)
	if err != nil {
		t.Fatalf("WalkBlock: %v", err)
	}
	if len(ops) != 3 {
		t.Fatalf("decoded %d ops, want 3", len(ops))
	}
	if _, ok := ops[0].(NoopOp); !ok {
		t.Fatalf("op 0 type %T, want NoopOp", ops[0])
	}
	if _, ok := ops[1].(*DepositOp); !ok {
		t.Fatalf("op 1 type %T, want *DepositOp", ops[1])
	}
	skip, ok := ops[2].(*SkipOp)
	if !ok || skip.Code != OpTransfer {
		t.Fatalf("op 2 = %+v, want Transfer SkipOp", ops[2])
	}
	if !bytes.Equal(skip.Raw, transfer) {
		t.Fatal("skip op must retain raw record bytes")
	}
}

func TestWalkBlockRaggedLength(t *testing.T) {
	stream := append(NoopOp{}.Encode(), 0x00) // one stray byte
	if _, err := WalkBlock(stream); err != ErrBadLength {
		t.Fatalf("expected ErrBadLength, got %v", err)
	}
}

func TestWalkBlockTruncatedOp(t *testing.T) {
	// A Deposit opcode with only two chunks behind it: the declared six
	// chunks overrun the stream.
	stream := make([]byte, 2*ChunkBytes)
	stream[0] = OpDeposit
	if _, err := WalkBlock(stream); err != ErrBadLength {
		t.Fatalf("expected ErrBadLength, got %v", err)
	}
}

func TestWalkBlockUnknownOpcode(t *testing.T) {
	stream := make([]byte, ChunkBytes)
	stream[0] = 0x30
	if _, err := WalkBlock(stream); err != ErrUnknownOpcode {
		t.Fatalf("expected ErrUnknownOpcode, got %v", err)
	}
}

func TestWalkBlockEmpty(t *testing.T) {
	ops, err := WalkBlock(nil)
	if err != nil {
		t.Fatalf("WalkBlock(nil): %v", err)
	}
	if len(ops) != 0 {
		t.Fatalf("expected no ops, got %d", len(ops))
	}
}

func TestChunksByOpcodeTable(t *testing.T) {
	cases := []struct {
		op     uint8
		chunks int
	}{
		{OpNoop, 1},
		{OpDeposit, 6},
		{OpTransferToNew, 5},
		{OpPartialExit, 6},
		{OpCloseAccount, 1},
		{OpTransfer, 2},
		{OpFullExit, 6},
		{OpChangePubKey, 6},
	}
	for _, c := range cases {
		got, ok := ChunksByOpcode(c.op)
		if !ok || got != c.chunks {
			t.Errorf("ChunksByOpcode(%#x) = %d, %v; want %d", c.op, got, ok, c.chunks)
		}
	}
	if _, ok := ChunksByOpcode(0x08); ok {
		t.Error("opcode 0x08 must be unsupported")
	}
}
