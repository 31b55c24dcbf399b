package metrics

// TokenUsage captures LLM token counts reported for one provider call.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// Normalized fills whichever of completion or total the provider left out.
func (u TokenUsage) Normalized() TokenUsage {
	switch {
	case u.TotalTokens == 0:
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	case u.CompletionTokens == 0 && u.TotalTokens > u.PromptTokens:
		u.CompletionTokens = u.TotalTokens - u.PromptTokens
	}
	return u
}
