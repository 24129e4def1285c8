package bpe

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheLimit is the default number of pre-tokens an Encoder remembers
// before its cache is cleared.
const DefaultCacheLimit = 100_000

// Encoder converts text to token ids and back.
// It is safe for concurrent use.
type Encoder struct {
	vocab *Vocabulary

	mu         sync.RWMutex
	cache      map[string][]int
	cacheLimit int
	inflight   singleflight.Group
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithCacheLimit caps the number of cached pre-tokens. When the cap is
// reached the cache is cleared. A limit <= 0 disables the cap.
func WithCacheLimit(n int) EncoderOption {
	return func(e *Encoder) { e.cacheLimit = n }
}

// NewEncoder creates an encoder for the given vocabulary.
func NewEncoder(vocab *Vocabulary, opts ...EncoderOption) *Encoder {
	e := &Encoder{
		vocab:      vocab,
		cache:      make(map[string][]int),
		cacheLimit: DefaultCacheLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Vocabulary returns the encoder's vocabulary.
func (e *Encoder) Vocabulary() *Vocabulary {
	return e.vocab
}

// Encode returns the token ids of text.
func (e *Encoder) Encode(text string) ([]int, error) {
	var ids []int
	for piece := range Pretokens(text) {
		pieceIDs, err := e.encodePretoken(piece)
		if err != nil {
			return nil, err
		}
		ids = append(ids, pieceIDs...)
	}
	return ids, nil
}

// Count returns the number of tokens in text.
func (e *Encoder) Count(text string) (int, error) {
	n := 0
	for piece := range Pretokens(text) {
		pieceIDs, err := e.encodePretoken(piece)
		if err != nil {
			return 0, err
		}
		n += len(pieceIDs)
	}
	return n, nil
}

// Decode converts token ids back into text.
func (e *Encoder) Decode(ids []int) (string, error) {
	var symbols strings.Builder
	for _, id := range ids {
		token, ok := e.vocab.Token(id)
		if !ok {
			return "", fmt.Errorf("%w: unknown token id %d", ErrDecoding, id)
		}
		symbols.WriteString(token)
	}

	raw := make([]byte, 0, symbols.Len())
	for _, r := range symbols.String() {
		b, ok := RuneToByte(r)
		if !ok {
			return "", fmt.Errorf("%w: symbol %q is not a byte symbol", ErrDecoding, r)
		}
		raw = append(raw, b)
	}

	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: ids do not form valid UTF-8", ErrDecoding)
	}
	return string(raw), nil
}

// CacheLen returns the number of cached pre-tokens.
func (e *Encoder) CacheLen() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

// ResetCache drops every cached pre-token.
func (e *Encoder) ResetCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string][]int)
}

// encodePretoken returns the ids of one pre-token, consulting the cache.
// The returned slice is shared with the cache and must not be modified.
func (e *Encoder) encodePretoken(piece string) ([]int, error) {
	e.mu.RLock()
	ids, ok := e.cache[piece]
	e.mu.RUnlock()
	if ok {
		return ids, nil
	}

	v, err, _ := e.inflight.Do(piece, func() (any, error) {
		ids, err := e.merge(piece)
		if err != nil {
			return nil, err
		}
		e.store(piece, ids)
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]int), nil
}

func (e *Encoder) store(piece string, ids []int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cacheLimit > 0 && len(e.cache) >= e.cacheLimit {
		e.cache = make(map[string][]int)
	}
	e.cache[piece] = ids
}

// merge runs the byte-pair merge loop over one pre-token.
func (e *Encoder) merge(piece string) ([]int, error) {
	word := symbolize(piece)

	for len(word) > 1 {
		best, bestRank := -1, 0
		for i := 0; i < len(word)-1; i++ {
			rank, ok := e.vocab.Rank(word[i], word[i+1])
			if !ok {
				continue
			}
			// Strict comparison keeps the leftmost pair on ties.
			if best < 0 || rank < bestRank {
				best, bestRank = i, rank
			}
		}
		if best < 0 {
			break
		}
		word = mergePair(word, word[best], word[best+1])
	}

	ids := make([]int, len(word))
	for i, symbol := range word {
		id, ok := e.vocab.ID(symbol)
		if !ok {
			return nil, fmt.Errorf("%w: symbol %q from %q is not in the vocabulary",
				ErrEncoding, symbol, piece)
		}
		ids[i] = id
	}
	return ids, nil
}

// mergePair replaces every non-overlapping occurrence of (left, right),
// scanning left to right, with the concatenated symbol.
func mergePair(word []string, left, right string) []string {
	merged := make([]string, 0, len(word))
	for i := 0; i < len(word); i++ {
		if i < len(word)-1 && word[i] == left && word[i+1] == right {
			merged = append(merged, left+right)
			i++
			continue
		}
		merged = append(merged, word[i])
	}
	return merged
}
