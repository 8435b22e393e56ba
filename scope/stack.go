package scope

import (
	"github.com/cockroachdb/errors"
	"github.com/ironvale/cellheap/internal/utils"
)

// Stack is a stack of lexical scopes over a single memory system. Pushing opens a new
// innermost scope; popping closes one and releases every block its bindings own. A
// Stack always starts with a root scope so that definitions have somewhere to land.
type Stack struct {
	memory  Memory
	options CreateOptions
	mutex   utils.OptionalMutex
	envs    []*Env
}

// NewStack creates a scope stack containing a single root scope.
//
// memory - The memory system that backs every scope's bindings. Must not be nil.
//
// options - Optional parameters: it is valid to leave all the fields blank
func NewStack(memory Memory, options CreateOptions) (*Stack, error) {
	root, err := NewEnv(memory, options)
	if err != nil {
		return nil, err
	}

	stack := &Stack{
		memory:  memory,
		options: options,
		envs:    []*Env{root},
	}
	stack.mutex.UseMutex = options.Flags&StackCreateExternallySynchronized == 0

	return stack, nil
}

// Push opens a new innermost scope and returns it
func (s *Stack) Push() (*Env, error) {
	env, err := NewEnv(s.memory, s.options)
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.envs = append(s.envs, env)
	return env, nil
}

// Pop closes the innermost scope and releases every block its bindings own. Popping
// the root scope is permitted- the stack is simply empty afterward.
func (s *Stack) Pop() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.envs) == 0 {
		return errors.New("cannot pop an empty scope stack")
	}

	top := s.envs[len(s.envs)-1]
	s.envs = s.envs[:len(s.envs)-1]
	top.Free()

	return nil
}

// Current returns the innermost scope, or nil if every scope has been popped
func (s *Stack) Current() *Env {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.envs) == 0 {
		return nil
	}

	return s.envs[len(s.envs)-1]
}

// Depth returns the number of open scopes
func (s *Stack) Depth() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return len(s.envs)
}

// Define binds name in the innermost scope. See Env.Define.
func (s *Stack) Define(name string, value Value) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.envs) == 0 {
		return errors.New("cannot define a variable with no open scope")
	}

	return s.envs[len(s.envs)-1].Define(name, value)
}

// Get resolves name against the innermost scope that binds it, searching outward. It
// returns NotDefinedError (wrapped with the variable name) when no open scope binds
// the name.
func (s *Stack) Get(name string) (Value, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := len(s.envs) - 1; i >= 0; i-- {
		value, err := s.envs[i].Get(name)
		if err == nil {
			return value, nil
		}
	}

	return Value{}, errors.Wrapf(NotDefinedError, "variable %q", name)
}
