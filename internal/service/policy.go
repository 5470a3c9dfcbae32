package service

// Operation names a registry call for policy and tracing.
type Operation string

// Registry operations
const (
	OpCreateConfig      Operation = "CreateConfig"
	OpSetValue          Operation = "SetValue"
	OpUpdateDescription Operation = "UpdateDescription"
	OpListByPrefix      Operation = "ListByPrefix"
	OpGetOne            Operation = "GetOne"
	OpGetMany           Operation = "GetMany"
	OpGetByPrefix       Operation = "GetByPrefix"
)

// Policy records which operations require a verified identity.
// Operations absent from the table require one.
type Policy struct {
	exempt map[Operation]bool
}

// DefaultPolicy requires identity everywhere except ListByPrefix, which
// returns only key names.
func DefaultPolicy() Policy {
	return Policy{exempt: map[Operation]bool{OpListByPrefix: true}}
}

// WithIdentity returns a copy of p with op's requirement set to required.
func (p Policy) WithIdentity(op Operation, required bool) Policy {
	exempt := make(map[Operation]bool, len(p.exempt)+1)
	for k, v := range p.exempt {
		exempt[k] = v
	}
	if required {
		delete(exempt, op)
	} else {
		exempt[op] = true
	}
	return Policy{exempt: exempt}
}

// RequiresIdentity reports whether op must pass the identity gate.
func (p Policy) RequiresIdentity(op Operation) bool {
	return !p.exempt[op]
}
