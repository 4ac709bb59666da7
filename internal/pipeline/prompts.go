package pipeline

import (
	"encoding/json"
	"fmt"
)

// renderJSON serializes prompt material; the input types here cannot fail to
// marshal, so errors degrade to an empty document.
func renderJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

const classifierTemplate = `You are an AI model that classifies customer support conversations for an insurance brand.

Analyze the full conversation history together with the latest user message and classify the conversation into exactly one category:
- POLICY_INQUIRY: coverage details, premiums, policy duration, inclusions/exclusions, eligibility, plan comparisons.
- GENERAL_INQUIRY: questions about the company, claim process overview, contact channels, working hours, or casual greetings.
- CLAIM_SUPPORT_REQUEST: filing a claim, claim status, claim documents, rejections, or complaints about the claims process.
- PARTNERSHIP_OPPORTUNITY: business partnerships, affiliate programs, collaborations.
- LEAD_GEN: only when the user shares contact details or explicitly asks to be contacted.
- OTHERS: unrelated to the brand's products or no valid user query.
- CONVERSATION_RESOLVED: the user expresses closure ("Thank you", "Got it", "No further questions").

Return only a valid JSON object:
{"category": "<one of the categories above>", "conversation_history_query": "<a summary of what the conversation is asking, taking the full history into context>"}

Latest Message:
%s

Conversation History:
%s`

func classifierPrompt(latestMessage, historyJSON string) string {
	return fmt.Sprintf(classifierTemplate, latestMessage, historyJSON)
}

const contextValidationTemplate = `You validate whether a customer support query can be answered from the available brand knowledge.

Given the summarized query, the conversation history, and the retrieved knowledge-base context, decide whether context needed to answer the query is missing.

Return only a valid JSON object:
{"is_context_miss": "yes" or "no"}

Answer "yes" when the retrieved context is insufficient or unrelated to the query, "no" when it is sufficient.

Query:
%s

Conversation History:
%s

Retrieved Context:
%s`

func contextValidationPrompt(query, historyJSON, retrieved string) string {
	return fmt.Sprintf(contextValidationTemplate, query, historyJSON, retrieved)
}

const replyTemplate = `You are a customer support representative for an insurance brand. Generate a helpful, friendly reply to the customer on the brand's behalf.

Rules:
- Ground every factual statement in the knowledge base below; do not invent coverage details, prices, or processes.
- If the knowledge base does not cover the question, say so politely and offer to connect the customer with a human agent.
- Keep the reply under 500 characters and conversational in tone.

Knowledge Base:
%s

Query:
%s

Conversation History:
%s

Return only the reply text.`

func replyPrompt(retrievedContext, query, historyJSON string) string {
	return fmt.Sprintf(replyTemplate, retrievedContext, query, historyJSON)
}

const formatTemplate = `Rewrite the following support reply as a direct message addressed to %s. Keep the meaning intact, greet the customer by name, and keep it short and warm.

Reply:
%s

Return only the rewritten message.`

func formatPrompt(userName, draft string) string {
	return fmt.Sprintf(formatTemplate, userName, draft)
}

const consistencyTemplate = `You grade whether a drafted support reply is factually consistent with the retrieved brand context and the conversation history.

A reply is consistent when every factual claim it makes is supported by the context or the history. Politeness, greetings, and offers to help need no support.

Return only a valid JSON object:
{"factual_consistency": "yes"} when the reply is consistent, or
{"factual_consistency": "no", "reason": "<what is unsupported>"} when it is not.

Drafted Reply:
%s

Retrieved Context:
%s

Conversation History:
%s`

func consistencyPrompt(draft, retrievedContext, historyJSON string) string {
	return fmt.Sprintf(consistencyTemplate, draft, retrievedContext, historyJSON)
}
