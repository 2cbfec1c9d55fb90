// Package fixtures provides small, hand-built srcast programs for
// cmd/solcmc to drive end to end. Front-end lexing/parsing is explicitly
// out of scope (spec.md §1: "the core consumes an already-annotated AST"),
// so this stands in for the external collaborator that would otherwise
// hand the pipeline a parsed, type-annotated tree.
package fixtures

import "github.com/martin-neuhaeusser/smartace/internal/srcast"

// Registry maps a fixture name to its contract set, for cmd/solcmc's
// `-fixture` flag.
var Registry = map[string][]*srcast.ContractDecl{
	"wallet": wallet(),
}

// wallet is a minimal single-contract program: one uint256 balance, a
// payable deposit function, and a withdraw function taking a uint256
// amount (both with empty bodies) -- enough to exercise struct printing, method lowering, and the payable
// pre-amble end to end.
func wallet() []*srcast.ContractDecl {
	uint256 := &srcast.ElementaryType{Bits: 256}

	balance := &srcast.VariableDecl{Name: "balance", Type: uint256, IsStateVariable: true}
	contract := &srcast.ContractDecl{Name: "Wallet", State: []*srcast.VariableDecl{balance}}

	deposit := &srcast.FunctionDecl{
		Name:       "deposit",
		Contract:   contract,
		Visibility: srcast.VisibilityPublic,
		Payable:    true,
		Body:       &srcast.Block{},
	}

	amount := &srcast.VariableDecl{Name: "amount", Type: uint256}
	withdraw := &srcast.FunctionDecl{
		Name:       "withdraw",
		Contract:   contract,
		Visibility: srcast.VisibilityPublic,
		Params:     []*srcast.VariableDecl{amount},
		Body:       &srcast.Block{},
	}

	contract.Funcs = []*srcast.FunctionDecl{deposit, withdraw}
	return []*srcast.ContractDecl{contract}
}
