package genesis

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// GenesisSpec declares the fungible assets a staking node starts with and
// the balances and allowances seeded into them.
type GenesisSpec struct {
	Assets    []AssetSpec    `yaml:"assets"`
	Mints     []MintSpec     `yaml:"mints"`
	Approvals []ApprovalSpec `yaml:"approvals"`
}

type AssetSpec struct {
	Address string `yaml:"address"`
	Symbol  string `yaml:"symbol"`

	addr common.Address
}

type MintSpec struct {
	Asset  string `yaml:"asset"`
	To     string `yaml:"to"`
	Amount string `yaml:"amount"`

	asset  common.Address
	to     common.Address
	amount *big.Int
}

type ApprovalSpec struct {
	Asset   string `yaml:"asset"`
	Owner   string `yaml:"owner"`
	Spender string `yaml:"spender"`
	Amount  string `yaml:"amount"`

	asset   common.Address
	owner   common.Address
	spender common.Address
	amount  *big.Int
}

func LoadGenesisSpec(path string) (*GenesisSpec, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("genesis spec path must be provided")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis spec %q: %w", path, err)
	}
	spec, err := ParseGenesisSpec(raw)
	if err != nil {
		return nil, fmt.Errorf("genesis spec %q: %w", path, err)
	}
	return spec, nil
}

// ParseGenesisSpec decodes and validates a YAML genesis document. Unknown
// keys are rejected.
func ParseGenesisSpec(raw []byte) (*GenesisSpec, error) {
	var spec GenesisSpec
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("invalid: %w", err)
	}
	return &spec, nil
}

func (s *GenesisSpec) validate() error {
	known := make(map[common.Address]struct{}, len(s.Assets))
	for i := range s.Assets {
		asset := &s.Assets[i]
		addr, err := parseAddress(asset.Address)
		if err != nil {
			return fmt.Errorf("assets[%d].address: %w", i, err)
		}
		if strings.TrimSpace(asset.Symbol) == "" {
			return fmt.Errorf("assets[%d].symbol must be provided", i)
		}
		if _, dup := known[addr]; dup {
			return fmt.Errorf("assets[%d]: duplicate asset %s", i, addr.Hex())
		}
		known[addr] = struct{}{}
		asset.addr = addr
	}
	for i := range s.Mints {
		mint := &s.Mints[i]
		var err error
		if mint.asset, err = parseKnownAsset(mint.Asset, known); err != nil {
			return fmt.Errorf("mints[%d].asset: %w", i, err)
		}
		if mint.to, err = parseAddress(mint.To); err != nil {
			return fmt.Errorf("mints[%d].to: %w", i, err)
		}
		if mint.amount, err = parseAmountString(mint.Amount); err != nil {
			return fmt.Errorf("mints[%d].amount: %w", i, err)
		}
	}
	for i := range s.Approvals {
		approval := &s.Approvals[i]
		var err error
		if approval.asset, err = parseKnownAsset(approval.Asset, known); err != nil {
			return fmt.Errorf("approvals[%d].asset: %w", i, err)
		}
		if approval.owner, err = parseAddress(approval.Owner); err != nil {
			return fmt.Errorf("approvals[%d].owner: %w", i, err)
		}
		if approval.spender, err = parseAddress(approval.Spender); err != nil {
			return fmt.Errorf("approvals[%d].spender: %w", i, err)
		}
		if approval.amount, err = parseAmountString(approval.Amount); err != nil {
			return fmt.Errorf("approvals[%d].amount: %w", i, err)
		}
	}
	return nil
}

func parseAddress(value string) (common.Address, error) {
	trimmed := strings.TrimSpace(value)
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, fmt.Errorf("invalid address %q", value)
	}
	addr := common.HexToAddress(trimmed)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("zero address not allowed")
	}
	return addr, nil
}

func parseKnownAsset(value string, known map[common.Address]struct{}) (common.Address, error) {
	addr, err := parseAddress(value)
	if err != nil {
		return common.Address{}, err
	}
	if _, ok := known[addr]; !ok {
		return common.Address{}, fmt.Errorf("asset %s is not declared", addr.Hex())
	}
	return addr, nil
}

func parseAmountString(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return amount, nil
}
