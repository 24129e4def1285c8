// Package ollama adapts a local Ollama server's chat endpoint.
//
// Importing the package registers the "ollama" vendor. BuildRequest
// returns *api.ChatRequest and ParseResponse expects *api.ChatResponse.
// Sampling parameters travel in the request's options map using Ollama's
// names (num_predict for max tokens).
package ollama
