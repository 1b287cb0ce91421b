package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/FlakM/czujka-librus/internal/config"
	"github.com/FlakM/czujka-librus/internal/domain"
	"github.com/FlakM/czujka-librus/internal/ports"
)

const systemPrompt = "You are a helpful assistant analyzing school communication " +
	"from the Librus portal for a parent."

// OpenAIClassifier summarizes a stream's new records and ranks urgency.
type OpenAIClassifier struct {
	client openai.Client
	model  string
}

var _ ports.Classifier = (*OpenAIClassifier)(nil)

// NewOpenAIClassifier builds the adapter from configuration.
func NewOpenAIClassifier(cfg config.OpenAIConfig) *OpenAIClassifier {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIClassifier{client: client, model: cfg.Model}
}

// Classify sends one stream's batch and parses the structured verdict.
// Callers guarantee a non-empty batch.
func (c *OpenAIClassifier) Classify(ctx context.Context, stream domain.Stream, records []domain.Record) (domain.ClassificationResult, error) {
	if len(records) == 0 {
		return domain.ClassificationResult{}, fmt.Errorf("empty batch for stream %s", stream)
	}

	prompt := buildPrompt(stream, records)

	response, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemPrompt),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("openai request for %s: %w", stream, err)
	}

	if len(response.Choices) == 0 {
		return domain.ClassificationResult{}, fmt.Errorf("no response from openai for %s", stream)
	}

	result, err := parseResult(response.Choices[0].Message.Content)
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("parse openai response for %s: %w", stream, err)
	}

	return result, nil
}

func buildPrompt(stream domain.Stream, records []domain.Record) string {
	var sb strings.Builder

	sb.WriteString("You are analyzing new ")
	sb.WriteString(string(stream))
	sb.WriteString(" from a school portal (Librus).\n\n")
	sb.WriteString("CONTEXT:\n")
	sb.WriteString("- The student attends the 1st grade of primary school\n")
	switch stream {
	case domain.StreamGrades:
		sb.WriteString("- Parents want to hear about every new grade\n")
		sb.WriteString("- Grades come in mixed formats (digits, +/- signs, descriptive marks)\n")
		sb.WriteString("- URGENT only for failing grades or ones needing attention; ")
		sb.WriteString("NORMAL for positive grades and progress\n")
	case domain.StreamEvents, domain.StreamHomework:
		sb.WriteString("- Deadlines and required preparations must not be missed\n")
		sb.WriteString("- URGENT only when a deadline falls within 7 days or parent action is required\n")
	default:
		sb.WriteString("- Some items may concern other classes; do not mark general events as ")
		sb.WriteString("URGENT unless they require parent presence or action\n")
		sb.WriteString("- URGENT only for items needing parent action, with a deadline within 7 days, ")
		sb.WriteString("or concerning the 1st grade; NOT_URGENT for other classes' items\n")
	}

	sb.WriteString("\nITEMS:\n")
	for i, rec := range records {
		sb.WriteString(rec.PromptLine(i + 1))
		sb.WriteString("\n\n")
	}

	sb.WriteString("Tasks:\n")
	sb.WriteString("1. Analyze every item\n")
	sb.WriteString("2. Rate overall urgency: URGENT, NORMAL or NOT_URGENT\n")
	sb.WriteString("3. Write a short summary (2-3 sentences) and a bullet list of key points; ")
	sb.WriteString("use **bold** for dates and deadlines and emoji to mark the kind of information\n\n")
	sb.WriteString("Respond with JSON only, no prose around it:\n")
	sb.WriteString(`{"urgency": "URGENT" | "NORMAL" | "NOT_URGENT", "summary": "short summary", "keyPoints": ["point 1", "point 2"]}`)

	return sb.String()
}

func parseResult(content string) (domain.ClassificationResult, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var raw struct {
		Urgency   string   `json:"urgency"`
		Summary   string   `json:"summary"`
		KeyPoints []string `json:"keyPoints"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("unmarshal verdict: %w", err)
	}

	return domain.ClassificationResult{
		Urgency:   domain.ParseUrgency(raw.Urgency),
		Summary:   raw.Summary,
		KeyPoints: raw.KeyPoints,
	}, nil
}
