// Package vertex adapts Google's Gemini models through the genai SDK.
//
// Importing the package registers the "vertex" vendor. With a project set
// in the config the client talks to Vertex AI; otherwise it uses the Gemini
// API with an API key. BuildRequest returns *Request and ParseResponse
// expects *genai.GenerateContentResponse.
//
// Gemini names the assistant role "model". The system prompt goes into the
// request config's SystemInstruction.
package vertex
