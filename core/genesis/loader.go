package genesis

import (
	"fmt"

	"stakeplatform/native/token"
)

// BuildRegistry creates one in-memory ledger per declared asset and applies
// the mints and then the approvals in file order.
func BuildRegistry(spec *GenesisSpec) (*token.Registry, error) {
	registry := token.NewRegistry()
	if spec == nil {
		return registry, nil
	}
	ledgers := make(map[string]*token.Ledger, len(spec.Assets))
	for _, asset := range spec.Assets {
		ledger := token.NewLedger(asset.addr, asset.Symbol)
		if err := registry.Register(ledger); err != nil {
			return nil, fmt.Errorf("register %s: %w", ledger.Symbol(), err)
		}
		ledgers[asset.addr.Hex()] = ledger
	}
	for i, mint := range spec.Mints {
		ledger := ledgers[mint.asset.Hex()]
		if err := ledger.Mint(mint.to, mint.amount); err != nil {
			return nil, fmt.Errorf("mints[%d]: %w", i, err)
		}
	}
	for i, approval := range spec.Approvals {
		ledger := ledgers[approval.asset.Hex()]
		if err := ledger.Approve(approval.owner, approval.spender, approval.amount); err != nil {
			return nil, fmt.Errorf("approvals[%d]: %w", i, err)
		}
	}
	return registry, nil
}
