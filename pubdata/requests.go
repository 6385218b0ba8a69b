package pubdata

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/matter-labs/zksync-sub001/types"
)

// Priority requests are recorded on L1 before any block references them.
// They carry strictly more fields than the pubdata slice of the operation
// that eventually consumes them: the L1 sender is known only to the
// request. Matching a committed operation against its queued request
// therefore compares only the shared fields.

// ErrBadRequestPayload reports a priority request payload of the wrong size.
var ErrBadRequestPayload = errors.New("pubdata: malformed priority request payload")

// DepositRequest is the queued form of a Deposit priority operation.
type DepositRequest struct {
	Sender  types.Address // L1 account that funded the deposit
	Owner   types.Address // rollup account to credit
	TokenID uint16
	Amount  *uint256.Int
}

// depositRequestBytes is sender + owner + token + amount.
const depositRequestBytes = 2*types.AddressLength + 2 + AmountBytes

// Encode serializes the request payload for queue storage.
func (dr *DepositRequest) Encode() []byte {
	w := NewWriter()
	w.Address(dr.Sender)
	w.Address(dr.Owner)
	w.U16(dr.TokenID)
	w.Amount(dr.Amount)
	return w.Bytes()
}

// DecodeDepositRequest parses a queued Deposit request payload.
func DecodeDepositRequest(payload []byte) (*DepositRequest, error) {
	if len(payload) != depositRequestBytes {
		return nil, ErrBadRequestPayload
	}
	r := NewReader(payload)
	dr := &DepositRequest{}
	dr.Sender, _ = r.Address()
	dr.Owner, _ = r.Address()
	dr.TokenID, _ = r.U16()
	dr.Amount, _ = r.Amount()
	return dr, nil
}

// Matches reports whether a committed Deposit operation consumes this
// request. Owner, token, and amount must agree byte for byte; the sender
// exists only on the request side.
func (dr *DepositRequest) Matches(op *DepositOp) bool {
	return dr.Owner == op.Owner &&
		dr.TokenID == op.TokenID &&
		dr.Amount.Eq(op.Amount)
}

// FullExitRequest is the queued form of a FullExit priority operation. It
// has no amount: the exact balance is known only to the operator at commit
// time, so the amount field of the committed operation is not matched.
type FullExitRequest struct {
	Sender    types.Address
	AccountID uint32
	Owner     types.Address
	TokenID   uint16
	Nonce     uint32
}

// fullExitRequestBytes is sender + accountId + owner + token + nonce.
const fullExitRequestBytes = 2*types.AddressLength + 3 + 2 + 4

// Encode serializes the request payload for queue storage.
func (fr *FullExitRequest) Encode() []byte {
	w := NewWriter()
	w.Address(fr.Sender)
	w.U24(fr.AccountID)
	w.Address(fr.Owner)
	w.U16(fr.TokenID)
	w.U32(fr.Nonce)
	return w.Bytes()
}

// DecodeFullExitRequest parses a queued FullExit request payload.
func DecodeFullExitRequest(payload []byte) (*FullExitRequest, error) {
	if len(payload) != fullExitRequestBytes {
		return nil, ErrBadRequestPayload
	}
	r := NewReader(payload)
	fr := &FullExitRequest{}
	fr.Sender, _ = r.Address()
	fr.AccountID, _ = r.U24()
	fr.Owner, _ = r.Address()
	fr.TokenID, _ = r.U16()
	fr.Nonce, _ = r.U32()
	return fr, nil
}

// Matches reports whether a committed FullExit operation consumes this
// request. Account id, owner, token, and nonce must agree; the amount is
// operator-supplied and excluded.
func (fr *FullExitRequest) Matches(op *FullExitOp) bool {
	return fr.AccountID == op.AccountID &&
		fr.Owner == op.Owner &&
		fr.TokenID == op.TokenID &&
		fr.Nonce == op.Nonce
}
