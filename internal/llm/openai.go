package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls the OpenAI Chat Completions API.
type OpenAIClient struct {
	model  openai.ChatModel
	client *openai.Client
}

const (
	defaultChatTimeout     = 30 * time.Second
	defaultChatTemperature = 0.2

	maxTags = 8
)

// NewOpenAIClient builds a client with defaults against api.openai.com.
func NewOpenAIClient(apiKey string, model openai.ChatModel) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		model:  model,
		client: &cli,
	}, nil
}

func (c *OpenAIClient) Summarize(ctx context.Context, text string) (string, []string, error) {
	if c == nil || c.client == nil {
		return "", nil, fmt.Errorf("nil openai client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultChatTimeout)
	defer cancel()
	messages := buildMessages(
		"You are a concise librarian. First describe the work in one short paragraph, then list its topics as bullet points (using - or *), one or two words each.",
		text,
	)
	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(defaultChatTemperature),
	})
	if err != nil {
		return "", nil, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", nil, fmt.Errorf("openai: no choices returned")
	}
	return extractSummary(resp.Choices[0].Message.Content)
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}

// extractSummary splits the model response into summary and tags heuristically.
// Non-bullet lines form the summary; bullet lines become lower-cased tags.
func extractSummary(content string) (string, []string, error) {
	lines := strings.Split(content, "\n")
	var tags []string
	var summaryLines []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
			tag := strings.ToLower(strings.TrimLeft(trimmed, "-* "))
			if tag != "" && len(tags) < maxTags {
				tags = append(tags, tag)
			}
		} else {
			summaryLines = append(summaryLines, trimmed)
		}
	}
	summary := strings.Join(summaryLines, " ")
	return summary, tags, nil
}
