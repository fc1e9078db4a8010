package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/8090-inc/xrx-sample-apps/pkg/graph"
	"github.com/8090-inc/xrx-sample-apps/pkg/llm"
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
)

const customerResponsePrompt = `Your job is to generate a response to the customer from the Assistant.
The assistant is a helpful, kind customer service agent for this store.
Use the conversation and previous tool calls (if provided) to generate a response.

## Store information
{store_info}

## Customer Service Task
{customer_service_task}

## Response Tone and Style
* Make sure your response is extremely human-like. This is a casual conversation, not a formal business interaction.
* Never greet the customer unless they initiate a greeting without a request. Get straight to what they want instead of using pleasantries.

## Conversation History

In the conversation, the customer will be able to both hear you and visually see the output from the last tool on the app screen. This should impact how you respond to the customer.

Here is the conversation so far:

{conversation}

## Output Format
You must return a perfectly formatted JSON object which can be serialized with the following keys:
- 'reason': a string explaining what you will talk about in your response.
- 'response': the response to the customer from the assistant.

The 'reason' string should follow a logical step by step pattern like below:

"To address the customer's inquiry about <customer inquiry> The information provided by the tools tells me <analysis of the tool outputs>.
The customer is able to see <last tool call information>.
The tool outputs are missing <missing information> to answer the customer's inquiry.
Based on the tool outputs, I will give the customer a factually grounded response which says <response to the customer>"

In the 'response' key, you should always spell numbers out if you relaying a number to the customer. For example you should not say "this costs $4.95" but instead "this costs four dollars and ninety five cents".

If your response contains information contained in the visual which is available to the customer, you should simply reference the screen "below" instead of repeating the information.

Here are some examples of good and bad response patterns when a tool is visible to the customer:
* Last tool output visible to customer: <A list of products with prices>
    * Bad: "We have four products available. Product a with costs X dollars. Product b which costs Y dollars ..."
    * Good: "Check out these options and let me know what you think"
* Last tool output visible to customer: <An updated cart summary>
    * Bad: "I have added product A to your cart. Your updated cart totals is X dollars and Y cents."
    * Good: "Alright your cart has been updated. Does this look good to you?"
* Last tool output visible to customer: <Order confirmation>
    * Bad: "Thank you for you order. Your order confirmation number is one two three four ..."
    * Good: "Thank you for your order! You can view your order details in the link below."

## Rules
* Your response must be VERY concise. Do not use filler language. More than one sentence is discouraged.
* Do not reference "the screen" in your response. It is implicit that the customer can see the screen.
* You are strictly forbidden from assuming any information about the store that has not been provided to you. Do not use simple assumptions about products, services, or variations available at the store no matter how simple they might be. So, when you stating your "reason", make sure you cite the tool outputs if you are providing details about the store, products, orders, cart, etc.
* If a customer asks a question you cannot answer based on the tool outputs, you should tell them that you do not know.
* Relaying any information to the customer which is not present in the conversational context or previous tool calls will result in a penalty.
`

// CustomerResponse produces the spoken reply to the customer. Terminal.
type CustomerResponse struct {
	graph.BaseNode
	llm    *llm.Client
	prompt string
}

// NewCustomerResponse builds the responder with the store information and
// service task spliced in.
func NewCustomerResponse(client *llm.Client, storeInfo, serviceTask string) *CustomerResponse {
	prompt := strings.ReplaceAll(customerResponsePrompt, "{store_info}", storeInfo)
	prompt = strings.ReplaceAll(prompt, "{customer_service_task}", serviceTask)
	return &CustomerResponse{
		BaseNode: graph.BaseNode{NodeID: NodeCustomerResponse},
		llm:      client,
		prompt:   prompt,
	}
}

func (n *CustomerResponse) Process(ctx context.Context, _ *graph.ExecContext, messages []models.Message, input graph.Input, emit graph.EmitFunc) error {
	system := spliceConversation(n.prompt, messages, input.Memory)
	reply, err := n.llm.CompleteJSON(ctx, promptMessages(system), llm.DefaultTemperature)
	if err != nil {
		return fmt.Errorf("customer response completion: %w", err)
	}

	reason, ok := reply["reason"]
	if !ok {
		return fmt.Errorf("customer response reply missing reason: %v", reply)
	}
	response, ok := reply["response"]
	if !ok {
		return fmt.Errorf("customer response reply missing response: %v", reply)
	}

	reasonStr, _ := reason.(string)
	responseStr, _ := response.(string)
	emit(graph.Result{
		"node":   n.ID(),
		"reason": reasonStr,
		"output": responseStr,
		"memory": input.Memory,
	})
	return nil
}

// Successors returns none; the customer response ends the path.
func (n *CustomerResponse) Successors(graph.Result) ([]graph.Successor, error) {
	return nil, nil
}
