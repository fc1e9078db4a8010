package agent

import (
	"encoding/json"

	"github.com/8090-inc/xrx-sample-apps/pkg/graph"
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
	"github.com/8090-inc/xrx-sample-apps/pkg/session"
)

// Frame header fragments. The frontend splits on these to separate the
// tool log from the spoken reply.
const (
	toolHeader    = "### Tools Used Before Responding to Customer\n\n"
	audioResponse = "\n\n### Audio Response to Customer\n\n"
)

// FormatResult renders one traversal result as an outbound frame: a
// synthetic assistant message summarizing the tools used this turn, the
// current session contents, and the producing node's output and reason.
// The customer-facing reply is appended to the assistant message so
// downstream speech synthesis reads one block.
func FormatResult(result graph.Result, sess *session.Session) ([]byte, error) {
	content := ""
	if lines := cacheLines(toolCache(result.Memory())); lines != "" {
		content = toolHeader + lines
	}
	if result.Node() == NodeCustomerResponse {
		response, _ := result.Output().(string)
		content += audioResponse + response
	}

	output := result.Output()
	if output == nil {
		output = ""
	}
	return json.Marshal(map[string]any{
		"messages": []models.Message{
			{Role: models.RoleAssistant, Content: content},
		},
		"session": sess,
		"node":    result.Node(),
		"output":  output,
		"reason":  result.Reason(),
	})
}
