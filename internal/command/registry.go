package command

import (
	"errors"
	"fmt"
	"sort"
)

// ErrEmptyName is returned when a command name or alias is empty.
var ErrEmptyName = errors.New("empty command name or alias")

// Collision records a key claimed by more than one command. Winner is the
// command the key resolves to.
type Collision struct {
	Key    string
	Loser  Command
	Winner Command
}

// Registry maps every command name and alias to its command. It is built
// once and only read afterwards, so concurrent lookups need no locking.
type Registry struct {
	commands   map[string]int
	order      []Command
	collisions []Collision
}

// NewRegistry registers cmds in order. A key claimed twice resolves to the
// later registration. Each argument is a distinct registration, whatever
// its dynamic type.
func NewRegistry(cmds ...Command) (*Registry, error) {
	r := &Registry{commands: make(map[string]int, len(cmds))}
	for i, c := range cmds {
		if c.Name() == "" {
			return nil, fmt.Errorf("register %T: %w", c, ErrEmptyName)
		}
		keys := append([]string{c.Name()}, c.Aliases()...)
		for _, key := range keys {
			if key == "" {
				return nil, fmt.Errorf("register %s: %w", c.Name(), ErrEmptyName)
			}
			if prev, ok := r.commands[key]; ok && prev != i {
				r.collisions = append(r.collisions, Collision{Key: key, Loser: r.order[prev], Winner: c})
			}
			r.commands[key] = i
		}
		r.order = append(r.order, c)
	}
	return r, nil
}

// Lookup returns the command registered under key.
func (r *Registry) Lookup(key string) (Command, bool) {
	i, ok := r.commands[key]
	if !ok {
		return nil, false
	}
	return r.order[i], true
}

// Keys returns every registered name and alias, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.commands))
	for k := range r.commands {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Commands returns each distinct command still reachable by at least one
// key, in registration order.
func (r *Registry) Commands() []Command {
	reachable := make([]bool, len(r.order))
	for _, i := range r.commands {
		reachable[i] = true
	}
	var list []Command
	for i, c := range r.order {
		if reachable[i] {
			list = append(list, c)
		}
	}
	return list
}

// Registrable returns the commands to push to the remote command list.
func (r *Registry) Registrable() []Command {
	var list []Command
	for _, c := range r.Commands() {
		if c.Registrable() {
			list = append(list, c)
		}
	}
	return list
}

// Collisions returns the keys that were claimed more than once.
func (r *Registry) Collisions() []Collision {
	return r.collisions
}
