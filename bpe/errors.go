package bpe

import "errors"

// Sentinel errors for vocabulary loading and encoding.
var (
	// ErrInvalidVocabulary indicates the token map or merge rules are malformed.
	ErrInvalidVocabulary = errors.New("invalid vocabulary")

	// ErrEncoding indicates a merged symbol is missing from the vocabulary.
	// A well-formed vocabulary never produces it.
	ErrEncoding = errors.New("encoding failed")

	// ErrDecoding indicates an unknown token id or bytes that are not valid UTF-8.
	ErrDecoding = errors.New("decoding failed")
)
