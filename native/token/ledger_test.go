package token

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	vault = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

func TestMintAndTransfer(t *testing.T) {
	l := NewLedger(common.HexToAddress("0x1001"), " rwd ")
	if l.Symbol() != "RWD" {
		t.Fatalf("unexpected symbol %q", l.Symbol())
	}
	if err := l.Mint(alice, big.NewInt(50000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Transfer(alice, bob, big.NewInt(1200)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := l.BalanceOf(alice); got.Cmp(big.NewInt(48800)) != 0 {
		t.Fatalf("unexpected alice balance %s", got)
	}
	if got := l.BalanceOf(bob); got.Cmp(big.NewInt(1200)) != 0 {
		t.Fatalf("unexpected bob balance %s", got)
	}
	if got := l.TotalSupply(); got.Cmp(big.NewInt(50000)) != 0 {
		t.Fatalf("unexpected supply %s", got)
	}
}

func TestTransferRejectsOverdraft(t *testing.T) {
	l := NewLedger(common.HexToAddress("0x1001"), "SOME")
	if err := l.Mint(alice, big.NewInt(10)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	err := l.Transfer(alice, bob, big.NewInt(11))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if l.BalanceOf(alice).Int64() != 10 || l.BalanceOf(bob).Sign() != 0 {
		t.Fatalf("balances changed after failed transfer")
	}
	if err := l.Transfer(alice, bob, big.NewInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if err := l.Transfer(alice, common.Address{}, big.NewInt(1)); !errors.Is(err, ErrZeroAddress) {
		t.Fatalf("expected zero address error, got %v", err)
	}
}

func TestTransferFromSpendsAllowance(t *testing.T) {
	l := NewLedger(common.HexToAddress("0x1001"), "LP")
	if err := l.Mint(alice, big.NewInt(3000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.TransferFrom(vault, alice, vault, big.NewInt(1)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected allowance error, got %v", err)
	}
	if err := l.Approve(alice, vault, big.NewInt(2000)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := l.TransferFrom(vault, alice, vault, big.NewInt(1500)); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}
	if got := l.Allowance(alice, vault); got.Int64() != 500 {
		t.Fatalf("unexpected remaining allowance %s", got)
	}
	if got := l.BalanceOf(vault); got.Int64() != 1500 {
		t.Fatalf("unexpected vault balance %s", got)
	}
	if err := l.TransferFrom(vault, alice, vault, big.NewInt(600)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected allowance error, got %v", err)
	}
}

func TestTransferFromInsufficientBalanceKeepsAllowance(t *testing.T) {
	l := NewLedger(common.HexToAddress("0x1001"), "LP")
	if err := l.Mint(alice, big.NewInt(5)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Approve(alice, vault, big.NewInt(100)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := l.TransferFrom(vault, alice, vault, big.NewInt(50)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected balance error, got %v", err)
	}
	if got := l.Allowance(alice, vault); got.Int64() != 100 {
		t.Fatalf("allowance spent on failed transfer: %s", got)
	}
}

func TestMintSupplyOverflow(t *testing.T) {
	l := NewLedger(common.HexToAddress("0x1001"), "BIG")
	max := new(uint256.Int).SetAllOne().ToBig()
	if err := l.Mint(alice, max); err != nil {
		t.Fatalf("mint max: %v", err)
	}
	if err := l.Mint(bob, big.NewInt(1)); !errors.Is(err, ErrSupplyOverflow) {
		t.Fatalf("expected supply overflow, got %v", err)
	}
	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	if err := l.Mint(bob, tooBig); !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("expected amount overflow, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	lp := NewLedger(common.HexToAddress("0x2002"), "LP")
	rwd := NewLedger(common.HexToAddress("0x1001"), "RWD")
	if err := r.Register(lp); err != nil {
		t.Fatalf("register lp: %v", err)
	}
	if err := r.Register(rwd); err != nil {
		t.Fatalf("register rwd: %v", err)
	}
	if err := r.Register(lp); !errors.Is(err, ErrAssetAlreadyRegistered) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := r.Register(NewLedger(common.Address{}, "ZERO")); !errors.Is(err, ErrZeroAddress) {
		t.Fatalf("expected zero address error, got %v", err)
	}
	got, err := r.Lookup(lp.Address())
	if err != nil || got != Asset(lp) {
		t.Fatalf("lookup lp: %v", err)
	}
	if _, err := r.Lookup(common.HexToAddress("0x9999")); !errors.Is(err, ErrUnknownAsset) {
		t.Fatalf("expected unknown asset, got %v", err)
	}
	addrs := r.Addresses()
	if len(addrs) != 2 || addrs[0] != rwd.Address() || addrs[1] != lp.Address() {
		t.Fatalf("unexpected address order %v", addrs)
	}
}
