package gemini

import "github.com/at-ishikawa/qamus/internal/inference"

// https://ai.google.dev/api/generate-content

type GenerateContentRequest struct {
	Contents          []Content        `json:"contents"`
	SystemInstruction *Content         `json:"systemInstruction,omitempty"`
	GenerationConfig  GenerationConfig `json:"generationConfig"`
}

type Content struct {
	Role  Role   `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type GenerationConfig struct {
	ResponseMimeType string            `json:"responseMimeType"`
	ResponseSchema   *inference.Schema `json:"responseSchema,omitempty"`
	MaxOutputTokens  int               `json:"maxOutputTokens,omitempty"`
}

const mimeTypeJSON = "application/json"

// GenerateContentResponse keeps pointers where a missing key must be told
// apart from an empty value.
type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *UsageMetadata  `json:"usageMetadata,omitempty"`
	ModelVersion   string          `json:"modelVersion,omitempty"`
}

type Candidate struct {
	Content       *CandidateContent `json:"content"`
	FinishReason  string            `json:"finishReason,omitempty"`
	SafetyRatings []SafetyRating    `json:"safetyRatings,omitempty"`
}

type CandidateContent struct {
	Role  Role            `json:"role,omitempty"`
	Parts []CandidatePart `json:"parts"`
}

type CandidatePart struct {
	Text *string `json:"text"`
}

type SafetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
}

type PromptFeedback struct {
	BlockReason   string         `json:"blockReason,omitempty"`
	SafetyRatings []SafetyRating `json:"safetyRatings,omitempty"`
}

type UsageMetadata struct {
	PromptTokenCount     int32 `json:"promptTokenCount"`
	CandidatesTokenCount int32 `json:"candidatesTokenCount"`
	TotalTokenCount      int32 `json:"totalTokenCount"`
}
