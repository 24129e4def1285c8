// Package config loads chatkit settings from a TOML file, a .env file and
// environment variables, in increasing order of precedence.
//
//	cfg, err := config.Load("")
//	counter := cfg.Tokenizer.Counter()
//	openai := cfg.Vendor(session.VendorOpenAI)
//
// The default file is ~/.c/config.toml ($C_ROOT/.c/config.toml when C_ROOT
// is set):
//
//	log_level = "info"
//
//	[tokenizer]
//	encoder = "/usr/share/gpt2/encoder.json.zst"
//	merges = "/usr/share/gpt2/vocab.bpe.zst"
//
//	[openai]
//	model = "gpt-4o"
//	max_supported_tokens = 128000
//
//	[openai.options]
//	temperature = 0.7
package config
