package runtime

import (
	"errors"
	"fmt"
)

var (
	// ErrRedeclared is returned when a name is declared twice in one scope.
	ErrRedeclared = errors.New("already declared")
	// ErrUndefined is returned when a name is not bound in any enclosing scope.
	ErrUndefined = errors.New("undefined identifier")
)

// ScopeID addresses a scope in an Environment.
type ScopeID int32

// NoScope is the parent of the root scope.
const NoScope ScopeID = -1

type scope struct {
	vars   map[string]Value
	parent ScopeID
}

// Environment is an arena of variable scopes. Scopes are pushed and popped
// in stack order; a scope's parent is always below it. The root scope
// (ID 0) lives as long as the environment.
type Environment struct {
	scopes []scope
	live   int // number of scopes in use; entries past live keep their maps for reuse
}

// NewEnvironment creates an environment holding only the root scope.
func NewEnvironment() *Environment {
	e := &Environment{}
	e.Push(NoScope)
	return e
}

// Root returns the root scope.
func (e *Environment) Root() ScopeID {
	return 0
}

// Depth returns the number of live scopes, including the root.
func (e *Environment) Depth() int {
	return e.live
}

// Push creates a child scope of parent and returns its ID.
func (e *Environment) Push(parent ScopeID) ScopeID {
	id := ScopeID(e.live)
	if e.live < len(e.scopes) {
		e.scopes[e.live].parent = parent
	} else {
		e.scopes = append(e.scopes, scope{vars: make(map[string]Value), parent: parent})
	}
	e.live++
	return id
}

// Pop discards the innermost scope and its bindings. The root scope is
// never popped.
func (e *Environment) Pop() {
	if e.live <= 1 {
		return
	}
	e.live--
	clear(e.scopes[e.live].vars)
}

// Declare binds name in scope id. It fails with ErrRedeclared if the name
// is already bound in that same scope; enclosing scopes are not consulted.
func (e *Environment) Declare(id ScopeID, name string, v Value) error {
	vars := e.scopes[id].vars
	if _, exists := vars[name]; exists {
		return fmt.Errorf("%s %w", name, ErrRedeclared)
	}
	vars[name] = v
	return nil
}

// Has reports whether name is bound in scope id itself.
func (e *Environment) Has(id ScopeID, name string) bool {
	_, exists := e.scopes[id].vars[name]
	return exists
}

// Lookup finds name by walking from scope id to the root.
func (e *Environment) Lookup(id ScopeID, name string) (Value, bool) {
	for s := id; s != NoScope; s = e.scopes[s].parent {
		if v, exists := e.scopes[s].vars[name]; exists {
			return v, true
		}
	}
	return nil, false
}

// Resolve returns the innermost scope, walking from scope id to the root,
// that binds name. It fails with ErrUndefined if no scope does.
func (e *Environment) Resolve(id ScopeID, name string) (ScopeID, error) {
	for s := id; s != NoScope; s = e.scopes[s].parent {
		if _, exists := e.scopes[s].vars[name]; exists {
			return s, nil
		}
	}
	return NoScope, fmt.Errorf("%w %s", ErrUndefined, name)
}

// Assign overwrites name in the innermost scope that binds it, walking from
// scope id to the root. It fails with ErrUndefined if no scope does.
func (e *Environment) Assign(id ScopeID, name string, v Value) error {
	owner, err := e.Resolve(id, name)
	if err != nil {
		return err
	}
	e.scopes[owner].vars[name] = v
	return nil
}
