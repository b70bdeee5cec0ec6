package brain

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// Responder is the opaque language-model seam. It takes a prompt plus the
// session history and returns the reply along with which provider and
// model produced it. The operating layer never depends on what happens
// behind this interface.
type Responder interface {
	Generate(ctx context.Context, prompt string, history []llms.MessageContent) (text, provider, model string, err error)
}

const noBackendReply = "No LLM backend available. Start Ollama or set OPENAI_API_KEY."

// Router tries a primary model first and silently falls over to the
// secondary. When neither backend answers it degrades to a fixed sentinel
// reply instead of failing, so chat surfaces stay usable offline.
type Router struct {
	Primary        llms.Model
	Secondary      llms.Model
	PrimaryName    string
	SecondaryName  string
	PrimaryModel   string
	SecondaryModel string
}

func (r *Router) Generate(ctx context.Context, prompt string, history []llms.MessageContent) (string, string, string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(prompt)},
	})

	if r.Primary != nil {
		if text, err := generate(ctx, r.Primary, messages); err == nil {
			return text, r.PrimaryName, r.PrimaryModel, nil
		}
	}
	if r.Secondary != nil {
		if text, err := generate(ctx, r.Secondary, messages); err == nil {
			return text, "fallback", r.SecondaryModel, nil
		}
	}

	return noBackendReply, "none", "", nil
}

func generate(ctx context.Context, model llms.Model, messages []llms.MessageContent) (string, error) {
	resp, err := model.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Content, nil
}
