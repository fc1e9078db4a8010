package graph

// Memory is the traversal-scoped scratch map threaded through node inputs.
// Nodes accumulate tool outputs and widget payloads in it. When a node fans
// out to several successors each branch must receive its own deep copy so
// sibling activations cannot observe each other's writes.
type Memory map[string]any

// Clone returns a deep copy of the memory. Nested maps and slices are
// copied recursively; scalar values are shared.
func (m Memory) Clone() Memory {
	if m == nil {
		return Memory{}
	}
	out := make(Memory, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopyValue(item)
		}
		return out
	case Memory:
		return map[string]any(val.Clone())
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}

// CloneValue deep-copies a JSON-shaped value: maps and slices are copied
// recursively, scalars are shared.
func CloneValue(v any) any {
	return deepCopyValue(v)
}

// CloneMap deep-copies a JSON object. A nil map clones to an empty one.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return deepCopyValue(m).(map[string]any)
}

// Input is the payload handed to a node activation. Which fields are set
// depends on the edge: the tool router sets Tool and Reason, the parameter
// identifier adds Parameters, the tool executor forwards its Output, and
// every edge carries Memory.
type Input struct {
	Tool       string
	Parameters map[string]any
	Output     any
	Reason     string
	Memory     Memory
}
