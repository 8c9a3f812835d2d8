package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// GeminiClient generates destination landmarks and travel tips. Responses
// are prompted to be JSON-shaped but are passed through as raw text; the
// frontend parses them best-effort.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(1), 2),
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("gemini API key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("gemini rate limit wait canceled: %w", err)
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API error (%d): %s", resp.StatusCode, string(body))
	}

	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("failed to parse gemini response: %w", err)
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	return gr.Candidates[0].Content.Parts[0].Text, nil
}

// Landmarks asks for 3-5 points of interest for the destination city.
func (c *GeminiClient) Landmarks(ctx context.Context, city, country string) (string, error) {
	prompt := fmt.Sprintf(`What are some points of interest to visit in %s, %s?
Respond in a JSON-like object only with the following data about 3-5 points of interest:
name, category, address and a short ~2 sentence description.
Respond in a JSON format, without specifying that its a JSON. Do not add any other characters besides the JSON object.
Use the following format:

"points_of_interest": [
  "name": name_of_landmark,
  "category": category,
  "address": physical address,
  "description": short ~2 sentence description
]`, city, country)

	return c.generate(ctx, prompt)
}

// TravelTips asks for per-day tips for a stay of the given length.
func (c *GeminiClient) TravelTips(ctx context.Context, city, country string, days int) (string, error) {
	prompt := fmt.Sprintf(`Give 5 concise tips for visiting %s, %s for %d days.
Respond in a JSON format, without specifying that its a JSON. Do not add any other characters besides the JSON object.
Use the following format:

[
  "day": day of the trip,
  "tip": the tip,
]`, city, country, days)

	return c.generate(ctx, prompt)
}
