package generate

import "strings"

// BodySeparator sits between consecutive example bodies in the prompt.
const BodySeparator = "\n\n"

// HandlerPrompt instructs the model; the example bodies are appended after it.
const HandlerPrompt = `You are a senior TypeScript engineer who writes type-safe validation code with Zod.

Write a TypeScript handler for the webhook events whose JSON bodies are listed at the end.

Output rules:
- Reply with the complete, runnable TypeScript source and nothing else.
- Do not wrap the code in markdown fences and do not add any prose before or after it.

What the code must contain:
1. One Zod schema per distinct event shape found in the examples, with a descriptive name (for example OrderCreatedSchema). Use optional fields, arrays and transforms where the examples call for them.
2. A function handleWebhookEvent(data: unknown) that picks the right schema from a discriminating field (such as the event type), validates with try/catch around ZodError, and returns the typed event or throws a descriptive error for invalid payloads and unknown event types.
3. Clean, modern, production-ready style.

Webhook JSON examples:`

// BuildHandlerPrompt joins the bodies with BodySeparator and appends them,
// fenced in triple quotes, to HandlerPrompt.
func BuildHandlerPrompt(bodies []string) string {
	var b strings.Builder
	b.WriteString(HandlerPrompt)
	b.WriteString("\n\n\"\"\"\n")
	b.WriteString(strings.Join(bodies, BodySeparator))
	b.WriteString("\n\"\"\"")
	return b.String()
}
