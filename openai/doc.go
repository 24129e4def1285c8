// Package openai adapts the OpenAI chat completions API.
//
// Importing the package registers the "openai" vendor:
//
//	import _ "github.com/randalmurphal/chatkit/openai"
//
// BuildRequest returns *openai.ChatCompletionNewParams and ParseResponse
// expects *openai.ChatCompletion. History roles map human to "user" and
// assistant to "assistant"; the system prompt is sent as a leading system
// message.
package openai
