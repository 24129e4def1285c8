// Package bpe implements the byte-level byte-pair encoding used by the
// GPT-2 family of models.
//
// A [Vocabulary] is built from the two files distributed with those models:
// encoder.json (token string to id) and vocab.bpe (ordered merge rules).
// The loader takes already-read content; locating and decompressing the
// files is the caller's job (see tokens.LoadVocabularyFiles).
//
// # Encoding
//
// Text is first split into pre-tokens with the GPT-2 pattern (contractions,
// letter runs, digit runs, punctuation runs, whitespace runs). The UTF-8
// bytes of each pre-token are mapped onto a printable unicode alphabet and
// adjacent symbols are merged by rank until no known pair remains:
//
//	vocab, err := bpe.LoadVocabulary(encoderJSON, vocabBPE)
//	if err != nil {
//	    return err
//	}
//	enc := bpe.NewEncoder(vocab)
//	ids, err := enc.Encode("Hello, World!")
//	text, err := enc.Decode(ids)
//
// # Caching
//
// An [Encoder] memoizes the ids of every pre-token it has seen. The cache is
// owned by the encoder and is safe for concurrent use; concurrent misses on
// the same pre-token are computed once.
package bpe
