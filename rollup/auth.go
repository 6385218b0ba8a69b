package rollup

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/matter-labs/zksync-sub001/pubdata"
	"github.com/matter-labs/zksync-sub001/types"
)

// ethSignatureBytes is the length of a packed secp256k1 signature
// (r || s || v).
const ethSignatureBytes = 65

// AuthPubkeyHash stores an authorization fact for a future ChangePubKey
// operation: the Keccak-256 of the new pubkey hash, keyed by the L1 sender
// and the account nonce the change will use. A block may then commit the
// ChangePubKey without an inline signature. Facts are write-once per
// (sender, nonce).
func (c *Chain) AuthPubkeyHash(sender types.Address, fact types.PubKeyHash, nonce uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := authKey{owner: sender, nonce: nonce}
	if _, exists := c.authFacts[key]; exists {
		return ErrAuthFactExists
	}
	c.authFacts[key] = types.BytesToHash(crypto.Keccak256(fact.Bytes()))
	c.lg.Info("pubkey hash authorized", "sender", sender, "nonce", nonce)
	return nil
}

// verifyChangePubKeyLocked checks the authorization of one ChangePubKey
// operation. A non-empty witness chunk selects the signature path: the
// chunk must be a 65-byte secp256k1 signature over the change message,
// recovering to the operation's owner. An empty chunk selects the
// auth-fact path: a fact stored under (owner, nonce) must match the new
// pubkey hash.
func (c *Chain) verifyChangePubKeyLocked(op *pubdata.ChangePubKeyOp, witness []byte) error {
	if len(witness) == 0 {
		fact, ok := c.authFacts[authKey{owner: op.Owner, nonce: op.Nonce}]
		if !ok || fact != types.BytesToHash(crypto.Keccak256(op.NewPubKeyHash.Bytes())) {
			return ErrChangePubKeyAuth
		}
		return nil
	}
	if len(witness) != ethSignatureBytes {
		return ErrChangePubKeyAuth
	}
	pub, err := crypto.Ecrecover(changePubKeyMessage(op), witness)
	if err != nil {
		return ErrChangePubKeyAuth
	}
	// The recovered key is uncompressed (0x04 prefix); its address is the
	// last 20 bytes of the Keccak-256 of the key body.
	signer := types.BytesToAddress(crypto.Keccak256(pub[1:])[12:])
	if signer != op.Owner {
		return ErrChangePubKeyAuth
	}
	return nil
}

// changePubKeyMessage is the digest a ChangePubKey witness signature must
// cover: Keccak-256 over the new pubkey hash, the account id, and the
// nonce, in their wire encodings.
func changePubKeyMessage(op *pubdata.ChangePubKeyOp) []byte {
	w := pubdata.NewWriter()
	w.PubKeyHash(op.NewPubKeyHash)
	w.U24(op.AccountID)
	w.U32(op.Nonce)
	return crypto.Keccak256(w.Bytes())
}
