package token

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrInvalidAmount          = errors.New("token: amount must not be negative")
	ErrAmountOverflow         = errors.New("token: amount exceeds 256 bits")
	ErrInsufficientBalance    = errors.New("token: transfer amount exceeds balance")
	ErrInsufficientAllowance  = errors.New("token: insufficient allowance")
	ErrZeroAddress            = errors.New("token: zero address")
	ErrSupplyOverflow         = errors.New("token: total supply overflow")
	ErrUnknownAsset           = errors.New("token: unknown asset")
	ErrAssetAlreadyRegistered = errors.New("token: asset already registered")
)

// Asset is the fungible-token surface the staking ledger depends on. Callers
// pass the acting identity explicitly since there is no ambient sender.
type Asset interface {
	Address() common.Address
	BalanceOf(owner common.Address) *big.Int
	// Transfer moves amount from the sender's own balance.
	Transfer(sender, recipient common.Address, amount *big.Int) error
	// TransferFrom moves amount from owner to recipient, spending the
	// allowance owner granted to spender.
	TransferFrom(spender, owner, recipient common.Address, amount *big.Int) error
}

// Ledger is an in-memory fungible token with ERC-20 style allowances. It is
// the asset implementation used by the host process and by test fixtures.
type Ledger struct {
	address common.Address
	symbol  string

	mu         sync.RWMutex
	supply     uint256.Int
	balances   map[common.Address]*uint256.Int
	allowances map[common.Address]map[common.Address]*uint256.Int
}

// NewLedger constructs an empty token ledger reachable at addr.
func NewLedger(addr common.Address, symbol string) *Ledger {
	return &Ledger{
		address:    addr,
		symbol:     strings.ToUpper(strings.TrimSpace(symbol)),
		balances:   make(map[common.Address]*uint256.Int),
		allowances: make(map[common.Address]map[common.Address]*uint256.Int),
	}
}

// Address returns the identity the ledger is registered under.
func (l *Ledger) Address() common.Address { return l.address }

// Symbol returns the upper-cased ticker.
func (l *Ledger) Symbol() string { return l.symbol }

func toUint256(amount *big.Int) (*uint256.Int, error) {
	if amount == nil {
		return new(uint256.Int), nil
	}
	if amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	v, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, ErrAmountOverflow
	}
	return v, nil
}

func (l *Ledger) balance(owner common.Address) *uint256.Int {
	if bal, ok := l.balances[owner]; ok {
		return bal
	}
	return new(uint256.Int)
}

// BalanceOf returns the balance held by owner.
func (l *Ledger) BalanceOf(owner common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance(owner).ToBig()
}

// TotalSupply returns the sum of all minted tokens.
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.supply.ToBig()
}

// Allowance returns the amount spender may still move on behalf of owner.
func (l *Ledger) Allowance(owner, spender common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if byOwner, ok := l.allowances[owner]; ok {
		if v, ok := byOwner[spender]; ok {
			return v.ToBig()
		}
	}
	return big.NewInt(0)
}

// Approve sets the allowance spender may move on behalf of owner.
func (l *Ledger) Approve(owner, spender common.Address, amount *big.Int) error {
	if spender == (common.Address{}) {
		return ErrZeroAddress
	}
	value, err := toUint256(amount)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	byOwner, ok := l.allowances[owner]
	if !ok {
		byOwner = make(map[common.Address]*uint256.Int)
		l.allowances[owner] = byOwner
	}
	byOwner[spender] = value
	return nil
}

// Mint creates amount new tokens for recipient. Used for setup and fixtures only.
func (l *Ledger) Mint(recipient common.Address, amount *big.Int) error {
	if recipient == (common.Address{}) {
		return ErrZeroAddress
	}
	value, err := toUint256(amount)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var supply uint256.Int
	if _, overflow := supply.AddOverflow(&l.supply, value); overflow {
		return ErrSupplyOverflow
	}
	l.supply = supply
	l.balances[recipient] = new(uint256.Int).Add(l.balance(recipient), value)
	return nil
}

// Transfer moves amount from sender to recipient.
func (l *Ledger) Transfer(sender, recipient common.Address, amount *big.Int) error {
	value, err := toUint256(amount)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(sender, recipient, value)
}

// TransferFrom moves amount from owner to recipient using spender's allowance.
func (l *Ledger) TransferFrom(spender, owner, recipient common.Address, amount *big.Int) error {
	value, err := toUint256(amount)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	allowed := new(uint256.Int)
	byOwner := l.allowances[owner]
	if v, ok := byOwner[spender]; ok {
		allowed = v
	}
	if allowed.Lt(value) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientAllowance, allowed.Dec(), value.Dec())
	}
	if err := l.move(owner, recipient, value); err != nil {
		return err
	}
	if byOwner != nil {
		byOwner[spender] = new(uint256.Int).Sub(allowed, value)
	}
	return nil
}

func (l *Ledger) move(from, to common.Address, value *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	fromBal := l.balance(from)
	if fromBal.Lt(value) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, fromBal.Dec(), value.Dec())
	}
	if from == to {
		return nil
	}
	l.balances[from] = new(uint256.Int).Sub(fromBal, value)
	l.balances[to] = new(uint256.Int).Add(l.balance(to), value)
	return nil
}
