package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/api/option"
)

// GeminiCourseGenerator is the free-tier fallback provider.
type GeminiCourseGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiCourseGenerator(apiKey, model string) (*GeminiCourseGenerator, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiCourseGenerator{
		client: client,
		model:  model,
	}, nil
}

func (g *GeminiCourseGenerator) GenerateCourse(ctx context.Context, author string, tweets []string) (*GeneratedCourse, error) {
	m := g.client.GenerativeModel(g.model)
	// Force JSON-only output so no brace-matching cleanup is needed.
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0.1)
	m.SetTopP(0.5)
	m.SetTopK(20)
	m.SetMaxOutputTokens(4000)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := m.GenerateContent(ctxWithTimeout, genai.Text(buildCoursePrompt(author, tweets)))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini: no content generated")
	}

	content := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	var course GeneratedCourse
	if err := json.Unmarshal([]byte(content), &course); err != nil {
		return nil, fmt.Errorf("gemini: invalid course JSON: %w", err)
	}
	if course.Title == "" || len(course.Sections) == 0 {
		return nil, fmt.Errorf("gemini: incomplete course document")
	}
	return &course, nil
}

// GetEmbedding falls back to a hash-based vector because the Gemini free
// tier has no dedicated embedding endpoint. Good enough for coarse library
// search; the OpenAI provider produces real embeddings.
func (g *GeminiCourseGenerator) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	return g.textToVector(text), nil
}

func (g *GeminiCourseGenerator) textToVector(text string) pgvector.Vector {
	const dims = 1536
	vector := make([]float32, dims)

	words := strings.Fields(strings.ToLower(text))
	for _, word := range words {
		h := fnv.New32a()
		h.Write([]byte(word))
		idx := h.Sum32() % dims
		vector[idx] += 1
	}

	var magnitude float32
	for _, val := range vector {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))
	if magnitude > 0 {
		for i := range vector {
			vector[i] /= magnitude
		}
	}

	return pgvector.NewVector(vector)
}

func (g *GeminiCourseGenerator) Close() error {
	return g.client.Close()
}
