package models

// ActionTypeTool marks an action that asks the agent to start from a tool
// invocation instead of the router.
const ActionTypeTool = "tool"

// Action describes a frontend-initiated operation accompanying a run request,
// for example the user tapping a widget button that maps to a tool call.
type Action struct {
	Type    string        `json:"type"`
	Details ActionDetails `json:"details"`
}

// ActionDetails carries the tool invocation requested by an action.
type ActionDetails struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
}

// IsZero reports whether the action is absent from the request.
func (a Action) IsZero() bool {
	return a.Type == ""
}
