package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/trustbyte/phishguard/internal/core"
	"github.com/trustbyte/phishguard/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is an implementation of the RemoteClassifier interface using Google Gemini
type GeminiClient struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	promptFormat  string
	textProcessor *utils.TextProcessor
}

// phishingResponse represents the structured response from the LLM
type phishingResponse struct {
	IsPhishing  bool    `json:"is_phishing"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat: `You are a phishing detection system. Analyze the following email and determine if it's a phishing attempt.
Respond with a JSON object containing:
- is_phishing: boolean (true if phishing, false if not)
- confidence: number between 0 and 100 (how confident you are in your assessment)
- explanation: string (brief explanation of why you think it's phishing or not)

Email:
From: %s
To: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ClassifyEmail asks the Gemini model for a phishing assessment of the email
func (c *GeminiClient) ClassifyEmail(ctx context.Context, email *core.Email) (*core.RemoteAssessment, error) {
	to := ""
	if len(email.To) > 0 {
		to = email.To[0]
		if len(email.To) > 1 {
			to += fmt.Sprintf(" and %d others", len(email.To)-1)
		}
	}

	processedBody := c.textProcessor.ProcessText(email.Body, c.maxBodySize)

	prompt := fmt.Sprintf(c.promptFormat, email.From, to, email.Subject, processedBody)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	parsed, err := parsePhishingResponse(responseText)
	if err != nil {
		return nil, err
	}

	return &core.RemoteAssessment{
		IsPhishing:  parsed.IsPhishing,
		Confidence:  clampConfidence(parsed.Confidence),
		Explanation: parsed.Explanation,
		ModelUsed:   c.modelName,
		AnalyzedAt:  time.Now(),
	}, nil
}

// parsePhishingResponse decodes the LLM's JSON verdict, tolerating prose
// wrapped around the JSON object
func parsePhishingResponse(responseText string) (*phishingResponse, error) {
	var parsed phishingResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err == nil {
		return &parsed, nil
	}

	jsonStart := strings.Index(responseText, "{")
	jsonEnd := strings.LastIndex(responseText, "}")
	if jsonStart < 0 || jsonEnd < jsonStart {
		return nil, fmt.Errorf("no JSON object found in LLM response")
	}

	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return &parsed, nil
}

// clampConfidence bounds a model-reported confidence to the 0-100 scale
func clampConfidence(confidence float64) int {
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return int(confidence)
}
