package ai

import (
	"context"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	appcfg "github.com/sariqm/brandmate/config"
	"github.com/sariqm/brandmate/internal/utils"
)

// AzureOpenAI serves both capabilities (chat completion + embeddings) from
// one Azure OpenAI resource. Deployments are addressed by name.
type AzureOpenAI struct {
	client          *openai.Client
	chatDeployment  string
	embedDeployment string
}

func NewAzureOpenAI(settings appcfg.AzureOpenAISettings, timeout time.Duration) *AzureOpenAI {
	cfg := openai.DefaultAzureConfig(settings.APIKey, settings.Endpoint)
	cfg.APIVersion = settings.APIVersion
	// deployments are already named after what we pass as Model
	cfg.AzureModelMapperFunc = func(model string) string { return model }
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &AzureOpenAI{
		client:          openai.NewClientWithConfig(cfg),
		chatDeployment:  settings.ChatDeployment,
		embedDeployment: settings.EmbedDeployment,
	}
}

func (a *AzureOpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	const op = "AzureOpenAI.Complete"

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.chatDeployment,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
	})
	if err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", utils.E(utils.CodeUnavailable, op, "chat completion returned no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func (a *AzureOpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "AzureOpenAI.Embed"

	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(a.embedDeployment),
		Input: []string{text},
	})
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "embedding failed", err)
	}
	if len(resp.Data) == 0 {
		return nil, utils.E(utils.CodeUnavailable, op, "embedding returned no data", nil)
	}
	return resp.Data[0].Embedding, nil
}
