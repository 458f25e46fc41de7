package llm

import (
	"encoding/base64"
	"fmt"
)

// DefaultImageMIME labels payloads whose type could not be determined
const DefaultImageMIME = "image/jpeg"

// EncodeDataURL returns a data URI carrying data as base64 with the given MIME type
func EncodeDataURL(mime string, data []byte) string {
	if mime == "" {
		mime = DefaultImageMIME
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

// NewVisionRequest builds a single-turn request with one text part and one image part
func NewVisionRequest(model, prompt, imageURL string) *ChatRequest {
	return &ChatRequest{
		Model: model,
		Messages: []Message{
			{
				Role:    RoleUser,
				Content: []ContentPart{TextPart(prompt), ImagePart(imageURL)},
			},
		},
		Stream: false,
	}
}
