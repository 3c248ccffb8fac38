package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type fakeCompletion struct {
	reply string
	err   error
	req   openai.ChatCompletionRequest
}

func (f *fakeCompletion) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: f.reply},
		}},
	}, nil
}

const validReply = `[
  {"question": "2+2?", "options": ["3", "4", "5", "6"], "correctAnswer": "B"},
  {"question": "Capital of France?", "options": ["Lyon", "Nice", "Paris", "Lille"], "correctAnswer": "C"}
]`

func newTestProvider(fake *fakeCompletion) *Provider {
	return &Provider{client: fake, model: "test-model", maxTokens: 512, temperature: 0.8}
}

func TestProviderGenerate(t *testing.T) {
	t.Run("ValidOutput", func(t *testing.T) {
		fake := &fakeCompletion{reply: validReply}
		set, err := newTestProvider(fake).Generate(context.Background(), 2, nil)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(set) != 2 {
			t.Fatalf("expected 2 questions, got %d", len(set))
		}
		if set[0].Correct != LabelB || set[1].Correct != LabelC {
			t.Errorf("correct labels not preserved: %s, %s", set[0].Correct, set[1].Correct)
		}
		for _, q := range set {
			if len(q.Options) != 4 {
				t.Errorf("question %q has %d options", q.Prompt, len(q.Options))
			}
			if q.Correct.Index() < 0 {
				t.Errorf("question %q has invalid correct label %s", q.Prompt, q.Correct)
			}
		}
	})

	t.Run("FencedOutput", func(t *testing.T) {
		fake := &fakeCompletion{reply: "```json\n" + validReply + "\n```"}
		set, err := newTestProvider(fake).Generate(context.Background(), 2, nil)
		if err != nil {
			t.Fatalf("Generate failed on fenced JSON: %v", err)
		}
		if len(set) != 2 {
			t.Errorf("expected 2 questions, got %d", len(set))
		}
	})

	t.Run("TruncatesExtraQuestions", func(t *testing.T) {
		fake := &fakeCompletion{reply: validReply}
		set, err := newTestProvider(fake).Generate(context.Background(), 1, nil)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(set) != 1 {
			t.Errorf("expected the set truncated to 1, got %d", len(set))
		}
	})

	t.Run("ServiceFailure", func(t *testing.T) {
		fake := &fakeCompletion{err: errors.New("quota exceeded")}
		_, err := newTestProvider(fake).Generate(context.Background(), 2, nil)

		var genErr *GenerationError
		if !errors.As(err, &genErr) {
			t.Fatalf("expected *GenerationError, got %v", err)
		}
		if !strings.Contains(genErr.Error(), "quota exceeded") {
			t.Errorf("cause not surfaced in message: %s", genErr.Error())
		}
	})

	t.Run("RequestShape", func(t *testing.T) {
		fake := &fakeCompletion{reply: validReply}
		sel := &Selection{Subject: SubjectAnatomy, Topic: "Nervous System"}
		if _, err := newTestProvider(fake).Generate(context.Background(), 2, sel); err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if fake.req.Model != "test-model" || fake.req.MaxTokens != 512 {
			t.Errorf("request not bounded as configured: %+v", fake.req)
		}
		prompt := fake.req.Messages[0].Content
		if !strings.Contains(prompt, "Nervous System") || !strings.Contains(prompt, string(SubjectAnatomy)) {
			t.Errorf("prompt missing topic descriptor: %s", prompt)
		}
	})
}

func TestProviderMalformedOutput(t *testing.T) {
	cases := []struct {
		name  string
		reply string
	}{
		{"NotJSON", "Sure! Here are your questions: 1) 2+2?"},
		{"EmptyArray", "[]"},
		{"MissingField", `[{"question": "2+2?", "options": ["3", "4", "5", "6"]}]`},
		{"ThreeOptions", `[{"question": "2+2?", "options": ["3", "4", "5"], "correctAnswer": "B"}]`},
		{"BadLabel", `[{"question": "2+2?", "options": ["3", "4", "5", "6"], "correctAnswer": "E"}]`},
		{"EmptyQuestion", `[{"question": "", "options": ["3", "4", "5", "6"], "correctAnswer": "B"}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeCompletion{reply: tc.reply}
			_, err := newTestProvider(fake).Generate(context.Background(), 1, nil)

			var malformed *MalformedOutputError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected *MalformedOutputError, got %v", err)
			}
		})
	}
}

func TestParseQuestionSetLowercaseLabel(t *testing.T) {
	set, err := parseQuestionSet(`[{"question": "2+2?", "options": ["3", "4", "5", "6"], "correctAnswer": "b"}]`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if set[0].Correct != LabelB {
		t.Errorf("expected lowercase label normalized to B, got %s", set[0].Correct)
	}
}
