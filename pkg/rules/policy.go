package rules

import (
	"github.com/snortt1/snort3/pkg/ipvar"
	"github.com/snortt1/snort3/pkg/ports"
)

// IpsPolicy is a named configuration scope. Each policy owns its variable
// tables; the anonymous port table deduplicates inline port lists so that
// pointer equality of port objects implies set equality within the policy.
type IpsPolicy struct {
	PolicyID PolicyID

	IPVarTable         *ipvar.Table
	PortVarTable       *ports.VarTable
	NonamePortVarTable *ports.Table

	// DefaultRuleState is the enabled state given to newly parsed rules.
	DefaultRuleState bool
}

// NewIpsPolicy creates a policy with empty variable tables. The port-var
// table is seeded with the distinguished "any" object.
func NewIpsPolicy(id PolicyID) *IpsPolicy {
	return &IpsPolicy{
		PolicyID:           id,
		IPVarTable:         ipvar.NewTable(),
		PortVarTable:       ports.NewVarTable(),
		NonamePortVarTable: ports.NewTable(),
		DefaultRuleState:   true,
	}
}
