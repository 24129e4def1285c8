// Package tokens provides token counting and budget management for chat prompts.
//
// # Counter
//
// The Counter interface is what the history trimmer consumes:
//
//	counter := tokens.NewBPECounter(bpe.NewEncoder(vocab))
//	count := counter.Count("Hello, world!")
//	fits := counter.FitsInLimit("text", 1000)
//
// BPECounter gives exact GPT-2 token counts. When no vocabulary is
// available, EstimatingCounter falls back to the rule of thumb that about
// four characters make one token.
//
// # Vocabulary files
//
// LoadVocabularyFiles reads encoder.json and vocab.bpe from disk, plain or
// compressed with gzip (.gz) or zstd (.zst):
//
//	vocab, err := tokens.LoadVocabularyFiles("encoder.json.zst", "vocab.bpe.gz")
//
// # Budget
//
// Budget splits a model's context window into the part history may use and
// the part reserved for the reply:
//
//	budget := tokens.NewBudget(4096)
//	budget.MaxTokens = 500
//	budget.Reserved()   // 1000: max(MinAvailable, MaxTokens)
//	budget.History()    // 3096
package tokens
