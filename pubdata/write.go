package pubdata

// Encoders for the operation records the core itself produces or matches.
// Each encoder emits the full zero-padded chunk run for its opcode.

// Encode serializes a NoopOp: one all-zero chunk.
func (NoopOp) Encode() []byte {
	return make([]byte, NoopChunks*ChunkBytes)
}

// Encode serializes a DepositOp record.
func (op *DepositOp) Encode() []byte {
	w := NewWriter()
	w.U8(OpDeposit)
	w.U24(op.AccountID)
	w.U16(op.TokenID)
	w.Amount(op.Amount)
	w.Address(op.Owner)
	w.PadToChunks(DepositChunks)
	return w.Bytes()
}

// Encode serializes a PartialExitOp record.
func (op *PartialExitOp) Encode() []byte {
	w := NewWriter()
	w.U8(OpPartialExit)
	w.U24(op.AccountID)
	w.U16(op.TokenID)
	w.Amount(op.Amount)
	w.U16(op.Fee)
	w.Address(op.Recipient)
	w.PadToChunks(PartialExitChunks)
	return w.Bytes()
}

// Encode serializes a FullExitOp record.
func (op *FullExitOp) Encode() []byte {
	w := NewWriter()
	w.U8(OpFullExit)
	w.U24(op.AccountID)
	w.Address(op.Owner)
	w.U16(op.TokenID)
	w.U32(op.Nonce)
	w.Amount(op.Amount)
	w.PadToChunks(FullExitChunks)
	return w.Bytes()
}

// Encode serializes a ChangePubKeyOp record. The record fills its chunk
// run exactly, with no padding.
func (op *ChangePubKeyOp) Encode() []byte {
	w := NewWriter()
	w.U8(OpChangePubKey)
	w.U24(op.AccountID)
	w.PubKeyHash(op.NewPubKeyHash)
	w.Address(op.Owner)
	w.U32(op.Nonce)
	w.PadToChunks(ChangePubKeyChunks)
	return w.Bytes()
}
