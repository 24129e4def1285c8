// Package provider defines the interface vendor adapters implement and the
// turn flow that ties sessions, trimming and vendor calls together.
//
// # Usage
//
// Adapters register themselves in init(); import them for side effects:
//
//	import _ "github.com/randalmurphal/chatkit/openai"
//
//	adapter, err := provider.New(ctx, session.VendorOpenAI, provider.Config{
//	    Model: "gpt-4o",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := provider.Turn(ctx, adapter, sess, "Hello!", counter, provider.TurnOptions{})
//	fmt.Println(result.Reply.Content)
//
// Turn computes the submission window before any network call, sends it,
// and appends the prompt and reply to the session only when the exchange
// succeeds.
//
// # Adapters
//
// An Adapter splits a vendor call into pure steps that can be tested
// without a network: BuildRequest turns an Exchange into the vendor SDK's
// request type, and ParseResponse turns the SDK response into a Reply.
// Send and Stream perform the call.
//
//   - "openai": OpenAI chat completions
//   - "anthropic": Anthropic messages
//   - "vertex": Gemini on Vertex AI or the Gemini API
//   - "ollama": a local Ollama server
package provider
