package rollup

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/matter-labs/zksync-sub001/pubdata"
	"github.com/matter-labs/zksync-sub001/types"
)

// Test doubles for the injected collaborators.

var (
	testValidator = types.HexToAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	testIntruder  = types.HexToAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	testSender    = types.HexToAddress("0x1111111111111111111111111111111111111111")
	testOwner     = types.HexToAddress("0x8888f1f195afa192cfee860698584c030f4c9db1")
	testTokenAddr = types.HexToAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")

	testGenesisRoot = types.HexToHash("0x2c5b6c10dcfb881b2d8a4e2f6ef8f30d5bd0d8a53b14c7a32bcde56b0a9fa3e1")
	testRootOne     = types.HexToHash("0x91f4e2ce3d08c2eebcfdef62bd939f17b0a03b21de34b32e6a71c0e3b934c8b7")
	testRootTwo     = types.HexToHash("0x4e07408562bedb8b60ce05c1decfe3ad16b72230967de01f640b7e4729b49fce")
)

type stubVerifier struct {
	blockOK bool
	exitOK  bool
}

func (v *stubVerifier) VerifyBlockProof(types.Hash, []byte) bool {
	return v.blockOK
}

func (v *stubVerifier) VerifyExitProof(types.Hash, types.Address, uint16, *uint256.Int, []byte) bool {
	return v.exitOK
}

type stubValidators struct{}

func (stubValidators) IsActiveValidator(addr types.Address) bool {
	return addr == testValidator
}

type stubTokens struct{}

func (stubTokens) ResolveToken(addr types.Address) (uint16, error) {
	if addr == testTokenAddr {
		return 1, nil
	}
	return 0, errors.New("governance: unknown token")
}

func (stubTokens) TokenAddress(tokenID uint16) (types.Address, error) {
	if tokenID == 1 {
		return testTokenAddr, nil
	}
	return types.Address{}, errors.New("governance: unknown token id")
}

type transfer struct {
	token  types.Address
	to     types.Address
	amount uint64
}

type stubVault struct {
	fail      bool
	transfers []transfer
}

func (v *stubVault) TransferNative(to types.Address, amount *uint256.Int) error {
	if v.fail {
		return errors.New("vault: transfer reverted")
	}
	v.transfers = append(v.transfers, transfer{to: to, amount: amount.Uint64()})
	return nil
}

func (v *stubVault) TransferToken(token, to types.Address, amount *uint256.Int) error {
	if v.fail {
		return errors.New("vault: transfer reverted")
	}
	v.transfers = append(v.transfers, transfer{token: token, to: to, amount: amount.Uint64()})
	return nil
}

type fixedGasPrice uint64

func (p fixedGasPrice) GasPrice() *uint256.Int { return uint256.NewInt(uint64(p)) }

// testChain bundles a chain with its mutable host height and doubles.
type testChain struct {
	*Chain
	height   uint64
	verifier *stubVerifier
	vault    *stubVault
	events   *EventBus
}

func newTestChain(t *testing.T, cfg Config) *testChain {
	t.Helper()
	tc := &testChain{
		height:   1,
		verifier: &stubVerifier{blockOK: true, exitOK: true},
		vault:    &stubVault{},
		events:   NewEventBus(16),
	}
	chain, err := New(cfg, testGenesisRoot, Dependencies{
		Verifier:   tc.verifier,
		Validators: stubValidators{},
		Tokens:     stubTokens{},
		Vault:      tc.vault,
		Height:     HeightFunc(func() uint64 { return tc.height }),
		Events:     tc.events,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tc.Chain = chain
	return tc
}

func defaultTestChain(t *testing.T) *testChain {
	t.Helper()
	return newTestChain(t, DefaultConfig())
}

// noopPubdata returns pubdata holding n Noop chunks.
func noopPubdata(n int) []byte {
	return make([]byte, n*pubdata.ChunkBytes)
}

// commitNoop commits the next block with a single Noop chunk.
func (tc *testChain) commitNoop(t *testing.T, number uint32, newRoot types.Hash) types.Hash {
	t.Helper()
	commitment, err := tc.CommitBlock(testValidator, number, 0, 0, newRoot, noopPubdata(1), nil, nil)
	if err != nil {
		t.Fatalf("CommitBlock(%d): %v", number, err)
	}
	return commitment
}

// depositAndCommit registers a native deposit and commits a block whose
// pubdata consumes it, returning the net deposited amount.
func (tc *testChain) depositAndCommit(t *testing.T, number uint32, amount uint64, newRoot types.Hash) *uint256.Int {
	t.Helper()
	if _, _, err := tc.DepositNative(testSender, uint256.NewInt(amount), testOwner); err != nil {
		t.Fatalf("DepositNative: %v", err)
	}
	net := uint256.NewInt(amount) // no gas price source: zero fee
	op := &pubdata.DepositOp{
		AccountID: 4,
		TokenID:   NativeTokenID,
		Amount:    net,
		Owner:     testOwner,
	}
	if _, err := tc.CommitBlock(testValidator, number, 0, 0, newRoot, op.Encode(), nil, nil); err != nil {
		t.Fatalf("CommitBlock(%d): %v", number, err)
	}
	return net
}

// drainEvents returns all events currently buffered for the subscription.
func drainEvents(sub *Subscription) []Event {
	var out []Event
	for {
		select {
		case ev := <-sub.Chan():
			out = append(out, ev)
		default:
			return out
		}
	}
}
