// Package tools defines the callable tools the reasoning agent exposes to
// the model, plus the registry that renders tool metadata into prompts.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/8090-inc/xrx-sample-apps/pkg/session"
)

// Parameter describes one tool argument. Description is the full prose the
// model sees, typically "name (type): explanation".
type Parameter struct {
	Name        string
	Description string
}

// Tool is one callable action. Parameters returns the declared arguments in
// order; Call receives them as decoded JSON values keyed by parameter name.
type Tool interface {
	Name() string
	Description() string
	Parameters() []Parameter
	Call(ctx context.Context, sess *session.Session, params map[string]any) (string, error)
}

// FuncTool adapts a function into a Tool. Used for tools whose state lives
// elsewhere, such as the storefront client's methods.
type FuncTool struct {
	name        string
	description string
	params      []Parameter
	fn          func(ctx context.Context, sess *session.Session, params map[string]any) (string, error)
}

// NewFuncTool builds a FuncTool.
func NewFuncTool(name, description string, params []Parameter, fn func(ctx context.Context, sess *session.Session, params map[string]any) (string, error)) *FuncTool {
	return &FuncTool{name: name, description: description, params: params, fn: fn}
}

func (f *FuncTool) Name() string            { return f.name }
func (f *FuncTool) Description() string     { return f.description }
func (f *FuncTool) Parameters() []Parameter { return f.params }

func (f *FuncTool) Call(ctx context.Context, sess *session.Session, params map[string]any) (string, error) {
	return f.fn(ctx, sess, params)
}

// Registry holds the tools available to one agent in registration order.
// Order matters: it is the order tools are listed in prompts.
type Registry struct {
	names []string
	tools map[string]Tool
}

// NewRegistry builds a registry holding the given tools.
func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing any tool of the same name.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.names = append(r.names, t.Name())
	}
	r.tools[t.Name()] = t
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.names)
}

// Signatures renders one line per tool of the form
// "name(param description, param description)", the compact listing used
// by prompts that only route between tools.
func (r *Registry) Signatures() string {
	lines := make([]string, 0, len(r.names))
	for _, name := range r.names {
		t := r.tools[name]
		descs := make([]string, 0, len(t.Parameters()))
		for _, p := range t.Parameters() {
			descs = append(descs, p.Description)
		}
		lines = append(lines, fmt.Sprintf("%s(%s)", name, strings.Join(descs, ", ")))
	}
	return strings.Join(lines, "\n")
}

// Describe renders the full tool listing used by prompts that must pick a
// tool: name, description and each declared parameter.
func (r *Registry) Describe() string {
	var b strings.Builder
	for i, name := range r.names {
		if i > 0 {
			b.WriteString("\n")
		}
		t := r.tools[name]
		fmt.Fprintf(&b, "### %s\n%s\n", name, t.Description())
		if params := t.Parameters(); len(params) > 0 {
			b.WriteString("Parameters:\n")
			for _, p := range params {
				fmt.Fprintf(&b, "- %s\n", p.Description)
			}
		}
	}
	return b.String()
}
