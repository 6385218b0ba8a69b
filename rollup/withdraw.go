package rollup

import (
	"github.com/holiman/uint256"

	"github.com/matter-labs/zksync-sub001/types"
)

// WithdrawNative pays out part of the caller's native withdrawable
// balance. Available in exodus mode: balances already settled stay
// claimable forever.
func (c *Chain) WithdrawNative(owner types.Address, amount *uint256.Int) error {
	return c.withdraw(owner, NativeTokenID, types.Address{}, amount)
}

// WithdrawToken pays out part of the caller's withdrawable balance of the
// given ERC-20 token.
func (c *Chain) WithdrawToken(owner types.Address, tokenAddr types.Address, amount *uint256.Int) error {
	tokenID, err := c.tokens.ResolveToken(tokenAddr)
	if err != nil {
		return err
	}
	return c.withdraw(owner, tokenID, tokenAddr, amount)
}

func (c *Chain) withdraw(owner types.Address, tokenID uint16, tokenAddr types.Address, amount *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	key := balanceKey{owner, tokenID}
	bal := c.balanceOf(key)
	if bal.Lt(amount) {
		return ErrInsufficientBalance
	}
	if err := c.transferOut(owner, tokenID, tokenAddr, amount); err != nil {
		return err
	}
	c.balances[key] = new(uint256.Int).Sub(bal, amount)
	return nil
}

// CompleteWithdrawals pops up to n entries from the pending-withdrawal
// ring buffer and pays each recipient their current withdrawable balance
// of the noted token. The entry is a notification, not a reservation: a
// balance already drained by a direct withdraw call pays out nothing. A
// failed transfer leaves the balance claimable and does not stop the
// batch. Returns the number of entries processed.
func (c *Chain) CompleteWithdrawals(n uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var done uint64
	for done < n && c.firstPending < uint64(len(c.pending)) {
		pw := c.pending[c.firstPending]
		c.firstPending++
		done++

		key := balanceKey{pw.recipient, pw.token}
		bal := c.balanceOf(key)
		if bal.IsZero() {
			continue
		}
		var tokenAddr types.Address
		if pw.token != NativeTokenID {
			addr, err := c.tokens.TokenAddress(pw.token)
			if err != nil {
				c.lg.Warn("pending withdrawal skipped: unknown token", "tokenId", pw.token)
				continue
			}
			tokenAddr = addr
		}
		c.balances[key] = uint256.NewInt(0)
		if err := c.transferOut(pw.recipient, pw.token, tokenAddr, bal); err != nil {
			// Leave the funds claimable by a direct withdraw call.
			c.balances[key] = bal
			c.lg.Warn("pending withdrawal transfer failed",
				"recipient", pw.recipient,
				"tokenId", pw.token,
				"err", err)
		}
	}
	c.compactPendingLocked()
	return done
}

// PendingWithdrawalCount returns the number of queued payout
// notifications.
func (c *Chain) PendingWithdrawalCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint64(len(c.pending)) - c.firstPending
}

// transferOut moves value out of custody through the vault. A chain
// without a vault keeps balances internal and treats payout as a no-op.
func (c *Chain) transferOut(to types.Address, tokenID uint16, tokenAddr types.Address, amount *uint256.Int) error {
	if c.vault == nil {
		return nil
	}
	var err error
	if tokenID == NativeTokenID {
		err = c.vault.TransferNative(to, amount)
	} else {
		err = c.vault.TransferToken(tokenAddr, to, amount)
	}
	if err != nil {
		c.lg.Debug("vault transfer rejected", "to", to, "tokenId", tokenID, "err", err)
		return ErrTransferFailed
	}
	return nil
}

// creditLocked adds to a withdrawable balance; an overflowing credit is
// rejected outright.
func (c *Chain) creditLocked(owner types.Address, tokenID uint16, amount *uint256.Int) error {
	key := balanceKey{owner, tokenID}
	next, overflow := new(uint256.Int).AddOverflow(c.balanceOf(key), amount)
	if overflow {
		return ErrBalanceOverflow
	}
	c.balances[key] = next
	return nil
}

// compactPendingLocked releases consumed ring-buffer head space.
func (c *Chain) compactPendingLocked() {
	if c.firstPending < 64 || c.firstPending < uint64(len(c.pending))/2 {
		return
	}
	c.pending = append([]pendingWithdrawal(nil), c.pending[c.firstPending:]...)
	c.firstPending = 0
}
