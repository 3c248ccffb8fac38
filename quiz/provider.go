package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// completionAPI is the slice of the OpenAI client the provider needs.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Provider turns a question count and an optional subject/topic selection
// into a validated QuestionSet by prompting a chat-completion model. It keeps
// no state between calls and does no caching: the same topic asked twice
// yields two fresh generations.
type Provider struct {
	client      completionAPI
	model       string
	maxTokens   int
	temperature float32
}

func NewProvider(client *openai.Client, model string, maxTokens int, temperature float32) *Provider {
	return &Provider{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Generate requests count questions from the model and parses the reply.
// Service failures surface as *GenerationError, unparsable or ill-shaped
// replies as *MalformedOutputError. The call is never retried here.
func (p *Provider) Generate(ctx context.Context, count int, topic *Selection) (QuestionSet, error) {
	prompt := buildPrompt(count, topic)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		log.WithError(err).Error("Chat completion request failed")
		return nil, &GenerationError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &MalformedOutputError{Reason: "model returned no choices"}
	}

	set, err := parseQuestionSet(resp.Choices[0].Message.Content)
	if err != nil {
		log.WithError(err).Error("Could not parse generated questions")
		return nil, err
	}
	if len(set) > count {
		set = set[:count]
	}
	log.WithFields(log.Fields{"count": len(set)}).Info("Generated question set")
	return set, nil
}

func buildPrompt(count int, topic *Selection) string {
	subject := "general knowledge"
	if topic != nil {
		subject = fmt.Sprintf("%s within %s", topic.Topic, topic.Subject)
	}
	return fmt.Sprintf(`Generate %d multiple choice trivia questions about %s. `+
		`Respond with a JSON array only, no surrounding text. Each element must be an object `+
		`with a "question" field (the question text), an "options" field (an array of exactly `+
		`4 answer strings), and a "correctAnswer" field (the letter "A", "B", "C" or "D" `+
		`identifying the correct option by position).`, count, subject)
}

// questionPayload mirrors the JSON shape the prompt asks the model for.
type questionPayload struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

func parseQuestionSet(raw string) (QuestionSet, error) {
	// Models like to wrap JSON in markdown fences even when told not to.
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var payload []questionPayload
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, &MalformedOutputError{Reason: "invalid JSON: " + err.Error()}
	}
	if len(payload) == 0 {
		return nil, &MalformedOutputError{Reason: "empty question list"}
	}

	set := make(QuestionSet, 0, len(payload))
	for i, item := range payload {
		q := Question{
			Prompt:  strings.TrimSpace(item.Question),
			Options: item.Options,
			Correct: Label(strings.ToUpper(strings.TrimSpace(item.CorrectAnswer))),
		}
		if err := q.validate(); err != nil {
			return nil, &MalformedOutputError{Reason: fmt.Sprintf("question %d: %v", i+1, err)}
		}
		set = append(set, q)
	}
	return set, nil
}
