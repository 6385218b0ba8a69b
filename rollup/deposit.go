package rollup

import (
	"github.com/holiman/uint256"

	"github.com/matter-labs/zksync-sub001/priority"
	"github.com/matter-labs/zksync-sub001/pubdata"
	"github.com/matter-labs/zksync-sub001/types"
)

// processingFee computes the L1 fee charged when a priority request is
// registered: FeeMultiplier × baseGas × current gas price. With no gas
// price source the fee is zero.
func (c *Chain) processingFee(baseGas uint64) *uint256.Int {
	if c.gasPrice == nil {
		return uint256.NewInt(0)
	}
	fee := uint256.NewInt(c.cfg.FeeMultiplier)
	fee.Mul(fee, uint256.NewInt(baseGas))
	fee.Mul(fee, c.gasPrice.GasPrice())
	return fee
}

// DepositNative registers a native-asset deposit to the given rollup
// account owner. The processing fee is deducted from amount; the remainder
// is what the deposit credits on L2. Returns the request id and the fee
// charged.
func (c *Chain) DepositNative(sender types.Address, amount *uint256.Int, owner types.Address) (uint64, *uint256.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.triggerExodusLocked()
	if c.exodus {
		return 0, nil, ErrExodusActive
	}
	fee := c.processingFee(c.cfg.DepositBaseGas)
	if amount == nil || amount.Cmp(fee) <= 0 {
		return 0, nil, ErrDepositTooSmall
	}
	net := new(uint256.Int).Sub(amount, fee)

	req := c.enqueueLocked(priority.Deposit, (&pubdata.DepositRequest{
		Sender:  sender,
		Owner:   owner,
		TokenID: NativeTokenID,
		Amount:  net,
	}).Encode(), fee)
	return req.ID, fee, nil
}

// DepositToken registers an ERC-20 deposit. The token amount is escrowed
// in full by the caller; the processing fee is charged separately in the
// native asset and only reported here.
func (c *Chain) DepositToken(sender types.Address, tokenAddr types.Address, amount *uint256.Int, owner types.Address) (uint64, *uint256.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.triggerExodusLocked()
	if c.exodus {
		return 0, nil, ErrExodusActive
	}
	if amount == nil || amount.IsZero() {
		return 0, nil, ErrZeroAmount
	}
	tokenID, err := c.tokens.ResolveToken(tokenAddr)
	if err != nil {
		return 0, nil, err
	}
	fee := c.processingFee(c.cfg.DepositBaseGas)

	req := c.enqueueLocked(priority.Deposit, (&pubdata.DepositRequest{
		Sender:  sender,
		Owner:   owner,
		TokenID: tokenID,
		Amount:  amount.Clone(),
	}).Encode(), fee)
	return req.ID, fee, nil
}

// FullExit registers a request to drain accountID's balance of the given
// token back to the sender on L1. The exact amount is unknown here; the
// operator supplies it in the block that processes the exit.
func (c *Chain) FullExit(sender types.Address, accountID uint32, tokenAddr types.Address, nonce uint32) (uint64, *uint256.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.triggerExodusLocked()
	if c.exodus {
		return 0, nil, ErrExodusActive
	}
	var tokenID uint16
	if !tokenAddr.IsZero() {
		var err error
		tokenID, err = c.tokens.ResolveToken(tokenAddr)
		if err != nil {
			return 0, nil, err
		}
	}
	fee := c.processingFee(c.cfg.FullExitBaseGas)

	req := c.enqueueLocked(priority.FullExit, (&pubdata.FullExitRequest{
		Sender:    sender,
		AccountID: accountID,
		Owner:     sender,
		TokenID:   tokenID,
		Nonce:     nonce,
	}).Encode(), fee)
	return req.ID, fee, nil
}

// enqueueLocked appends a priority request and announces it.
func (c *Chain) enqueueLocked(op priority.OpType, payload []byte, fee *uint256.Int) *priority.Request {
	req := c.queue.Enqueue(op, payload, fee, c.height.HeightNow())
	c.lg.Info("priority request queued",
		"id", req.ID,
		"opType", op.String(),
		"expirationHeight", req.ExpirationHeight)
	c.publish(EventNewPriorityRequest, NewPriorityRequestData{
		ID:               req.ID,
		OpType:           op,
		Payload:          req.Payload,
		ExpirationHeight: req.ExpirationHeight,
		Fee:              req.Fee,
	})
	return req
}
