package gemini

import "encoding/json"

// Request is the generateContent request body.
// Note: the Gemini API uses camelCase for JSON field names.
type Request struct {
	Contents          []Content  `json:"contents"`
	SystemInstruction *Content   `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenConfig `json:"generationConfig,omitempty"`
}

// Content is a role-tagged group of parts. Roles are "user" and "model".
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a single piece of content within a turn.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob carries inline binary data, base64 encoded.
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// GenConfig holds generation parameters.
type GenConfig struct {
	Temperature        *float64        `json:"temperature,omitempty"`
	MaxOutputTokens    *int            `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType   string          `json:"responseMimeType,omitempty"`
	ResponseJSONSchema json.RawMessage `json:"responseJsonSchema,omitempty"`
}

// Text builds a single-part content with the given role.
func Text(role, text string) Content {
	return Content{Role: role, Parts: []Part{{Text: text}}}
}

// SystemInstruction builds an untagged content for the system prompt.
func SystemInstruction(text string) *Content {
	return &Content{Parts: []Part{{Text: text}}}
}

// JSONConfig constrains output to JSON matching the given schema.
func JSONConfig(schema json.RawMessage) *GenConfig {
	return &GenConfig{
		ResponseMIMEType:   "application/json",
		ResponseJSONSchema: schema,
	}
}
