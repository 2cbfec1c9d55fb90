// Package scope implements C7, the Variable Scope Resolver (spec.md §4.7):
// a lexical scope stack pushed on block entry and popped on block exit,
// rewriting every source name into a target identifier that encodes its
// role and disambiguates shadowed scopes.
package scope

import "github.com/martin-neuhaeusser/smartace/internal/names"

// Role is one of the five binding roles spec.md §3's "Scope frame" names.
type Role int

const (
	RoleParameter Role = iota
	RoleLocalStorage
	RoleLocalValue
	RoleStructField
	RoleBuiltinState
)

// Binding is what a frame remembers about one declared name.
type Binding struct {
	Role      Role
	Rewritten string
}

// Resolver is the scope stack itself: an ordered list of frames, innermost
// last, each frame an ordered map from source name to binding.
type Resolver struct {
	frames []map[string]Binding
}

// New returns a resolver with its single top-level frame already pushed.
func New() *Resolver {
	r := &Resolver{}
	r.Push()
	return r
}

// Push enters a new nested block scope.
func (r *Resolver) Push() {
	r.frames = append(r.frames, make(map[string]Binding))
}

// Pop leaves the innermost block scope.
func (r *Resolver) Pop() {
	r.frames = r.frames[:len(r.frames)-1]
}

// Declare binds name in the innermost frame and returns its rewritten
// target name (spec.md §4.7's naming scheme, pinned down by testable
// property S1's literal expected output `func_user_a`):
//
//	struct field          -> user_<name>
//	call-state/built-in   -> model_<name>
//	parameter/local (any) -> func_user_<name>
//
// Storage- vs. value-qualification changes how C8/C9 *type* the binding
// (pointer vs. embedded), not how it is named -- RoleLocalStorage and
// RoleLocalValue both rewrite through the same func_user_ prefix.
func (r *Resolver) Declare(name string, role Role) string {
	var rewritten string
	switch role {
	case RoleStructField:
		rewritten = names.Join("user", name)
	case RoleBuiltinState:
		rewritten = names.Join("model", name)
	default:
		rewritten = names.Join("func", "user", name)
	}
	r.frames[len(r.frames)-1][name] = Binding{Role: role, Rewritten: rewritten}
	return rewritten
}

// Resolve looks up name starting from the innermost frame outward,
// returning the binding for the first (innermost) match.
func (r *Resolver) Resolve(name string) (Binding, bool) {
	for i := len(r.frames) - 1; i >= 0; i-- {
		if b, ok := r.frames[i][name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// ResolveIdentifier returns the rewritten name for the innermost binding of
// name, or ("", false) if name is unresolved in any open scope -- the
// caller (C8) then falls through to a contract-state lookup via `self`
// (spec.md §4.7: "unresolved names fall through to contract-state lookups
// via self").
func (r *Resolver) ResolveIdentifier(name string) (string, bool) {
	b, ok := r.Resolve(name)
	if !ok {
		return "", false
	}
	return b.Rewritten, true
}
