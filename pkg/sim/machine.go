package sim

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"cyclerc/pkg/ast"
	"cyclerc/pkg/memory"
	"cyclerc/pkg/parser"
)

// Machine plays the host interpreter: it names objects, maintains their
// reachability graph and drives the handle API from heap scripts.
type Machine struct {
	heap   *memory.Heap
	graph  *Graph
	out    io.Writer
	logger *slog.Logger

	nextID  memory.ObjectID
	objects map[string]*Object
	handles map[string]*memory.Handle[*Object]
	weaks   map[string]*memory.Weak[*Object]
	dead    map[string]bool
	order   []string // object names in creation order
}

// Option configures a Machine
type Option func(*Machine)

// WithOutput sets where command output is written (default io.Discard)
func WithOutput(w io.Writer) Option {
	return func(m *Machine) {
		m.out = w
	}
}

// WithLogger sets the logger shared by the machine and its heap
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// NewMachine creates a machine with an empty heap
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		graph:   NewGraph(),
		out:     io.Discard,
		objects: make(map[string]*Object),
		handles: make(map[string]*memory.Handle[*Object]),
		weaks:   make(map[string]*memory.Weak[*Object]),
		dead:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	var heapOpts []memory.HeapOption
	if m.logger != nil {
		heapOpts = append(heapOpts, memory.WithLogger(m.logger))
	}
	m.heap = memory.NewHeap(heapOpts...)
	return m
}

// Eval runs a single command form
func (m *Machine) Eval(expr *ast.Value) error {
	if !ast.IsCell(expr) || !ast.IsSym(expr.Car) {
		return fmt.Errorf("%w: %s", ErrSyntax, expr)
	}
	name := expr.Car.Str
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	n := ast.ListLen(expr.Cdr)
	if n < cmd.min || (cmd.max >= 0 && n > cmd.max) {
		return fmt.Errorf("%s: %w: got %d", name, ErrArity, n)
	}
	args := make([]string, 0, n)
	for _, arg := range ast.ListToSlice(expr.Cdr) {
		if !ast.IsSym(arg) {
			return fmt.Errorf("%s: %w: argument %s is not a name", name, ErrSyntax, arg)
		}
		args = append(args, arg.Str)
	}

	if m.logger != nil {
		m.logger.Debug("eval", "command", expr.String())
	}
	if err := cmd.fn(m, args); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Run evaluates commands in order and stops at the first error
func (m *Machine) Run(exprs []*ast.Value) error {
	for _, expr := range exprs {
		if err := m.Eval(expr); err != nil {
			return err
		}
	}
	return nil
}

// RunString parses and runs a heap script
func (m *Machine) RunString(input string) error {
	exprs, err := parser.ParseAllString(input)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	return m.Run(exprs)
}

// Stats returns the heap counters
func (m *Machine) Stats() memory.Stats {
	return m.heap.Stats()
}

// Live returns the number of cells not yet freed
func (m *Machine) Live() int {
	return m.heap.Live()
}

// Alive reports whether the named object exists and has not been destroyed
func (m *Machine) Alive(name string) bool {
	_, ok := m.objects[name]
	return ok && !m.dead[name]
}

// Objects returns every object name in creation order
func (m *Machine) Objects() []string {
	return append([]string(nil), m.order...)
}

// Close releases every handle and then every weak handle still bound,
// in name order.
func (m *Machine) Close() {
	for _, name := range sortedKeys(m.handles) {
		h := m.handles[name]
		delete(m.handles, name)
		h.Release()
	}
	for _, name := range sortedKeys(m.weaks) {
		w := m.weaks[name]
		delete(m.weaks, name)
		w.Release()
	}
}

func (m *Machine) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.out, format, args...)
}

func (m *Machine) newObject(name string) *Object {
	m.nextID++
	obj := &Object{
		id:     m.nextID,
		name:   name,
		graph:  m.graph,
		onDrop: m.onDrop,
	}
	m.objects[name] = obj
	m.order = append(m.order, name)
	return obj
}

func (m *Machine) onDrop(obj *Object) {
	m.dead[obj.name] = true
	if m.logger != nil {
		m.logger.Debug("object destroyed", "object", obj.name, "id", uint64(obj.id))
	}
}

func (m *Machine) bound(name string) bool {
	_, h := m.handles[name]
	_, w := m.weaks[name]
	return h || w
}

func (m *Machine) handle(name string) (*memory.Handle[*Object], error) {
	h, ok := m.handles[name]
	if !ok {
		return nil, fmt.Errorf("%w: handle %s", ErrUnbound, name)
	}
	return h, nil
}

func (m *Machine) object(name string) (*Object, error) {
	obj, ok := m.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: object %s", ErrUnbound, name)
	}
	if m.dead[name] {
		return nil, fmt.Errorf("%w: %s", ErrDead, name)
	}
	return obj, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
