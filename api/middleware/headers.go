package middleware

// Copilot response headers exposed to browsers.
const (
	HeaderMode          = "X-OpenAI-Mode"
	HeaderFallback      = "X-Copilot-Fallback"
	HeaderPromptVersion = "X-Prompt-Version"
	HeaderModelUsed     = "X-Model-Used"
)
