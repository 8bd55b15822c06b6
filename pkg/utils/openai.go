package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"
	openai "github.com/sashabaranov/go-openai"
)

// GeneratedCourse is the JSON document the LLM must return.
type GeneratedCourse struct {
	Title    string             `json:"title"`
	Summary  string             `json:"summary"`
	Tags     []string           `json:"tags"`
	Sections []GeneratedSection `json:"sections"`
}

type GeneratedSection struct {
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Takeaways []string `json:"takeaways"`
}

// CourseGeneratorInterface structures a cleaned tweet thread into a course
// and produces embeddings for library search.
type CourseGeneratorInterface interface {
	GenerateCourse(ctx context.Context, author string, tweets []string) (*GeneratedCourse, error)
	GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
}

type OpenAICourseGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAICourseGenerator(apiKey, model string) *OpenAICourseGenerator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAICourseGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func buildCoursePrompt(author string, tweets []string) string {
	var b strings.Builder
	for i, t := range tweets {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}

	return fmt.Sprintf(`You are converting a Twitter/X thread by @%s into a structured mini-course.
Return **JSON only** matching this schema exactly:

{
  "title": "string",
  "summary": "string (2-3 sentences)",
  "tags": ["string"],
  "sections": [
    {"title": "string", "summary": "string", "takeaways": ["string"]}
  ]
}

Hard constraints:
- 3 to 7 sections, each grounded in the thread content only.
- 2 to 4 takeaways per section, each a single actionable sentence.
- Do not invent facts not present in the thread.

Thread:
%s
Return JSON only. No comments, no markdown.`, author, b.String())
}

func (g *OpenAICourseGenerator) GenerateCourse(ctx context.Context, author string, tweets []string) (*GeneratedCourse, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You turn tweet threads into concise structured mini-courses. You only output JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildCoursePrompt(author, tweets),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices returned")
	}

	var course GeneratedCourse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &course); err != nil {
		return nil, fmt.Errorf("openai: invalid course JSON: %w", err)
	}
	if course.Title == "" || len(course.Sections) == 0 {
		return nil, fmt.Errorf("openai: incomplete course document")
	}
	return &course, nil
}

func (g *OpenAICourseGenerator) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	resp, err := g.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.SmallEmbedding3,
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return pgvector.Vector{}, fmt.Errorf("openai embeddings: empty response")
	}
	return pgvector.NewVector(resp.Data[0].Embedding), nil
}

// NewCourseGenerator picks the provider from config.
func NewCourseGenerator(provider, apiKey, model string) (CourseGeneratorInterface, error) {
	switch strings.ToLower(provider) {
	case "openai":
		return NewOpenAICourseGenerator(apiKey, model), nil
	case "gemini":
		return NewGeminiCourseGenerator(apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
