package bpe

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// pair is an ordered pair of adjacent symbols.
type pair struct {
	left, right string
}

// Vocabulary holds the immutable lookup tables of a byte-level BPE model.
// It is safe for concurrent use.
type Vocabulary struct {
	ids    map[string]int
	tokens []string
	ranks  map[pair]int
}

// LoadVocabulary parses a token map and merge rules.
//
// tokenMap is a JSON object mapping token strings to ids; the ids must be
// exactly 0..N-1. mergeRules holds one "left right" pair per line, where the
// line position is the merge rank. Blank lines and a leading "#version"
// header are skipped. When a pair appears twice, the first rank wins.
func LoadVocabulary(tokenMap, mergeRules []byte) (*Vocabulary, error) {
	ids, tokens, err := parseTokenMap(tokenMap)
	if err != nil {
		return nil, err
	}

	ranks, err := parseMergeRules(mergeRules)
	if err != nil {
		return nil, err
	}

	return &Vocabulary{
		ids:    ids,
		tokens: tokens,
		ranks:  ranks,
	}, nil
}

func parseTokenMap(data []byte) (map[string]int, []string, error) {
	var ids map[string]int
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, nil, fmt.Errorf("%w: token map: %v", ErrInvalidVocabulary, err)
	}
	if ids == nil {
		return nil, nil, fmt.Errorf("%w: token map is null", ErrInvalidVocabulary)
	}

	tokens := make([]string, len(ids))
	seen := make([]bool, len(ids))
	for token, id := range ids {
		if id < 0 || id >= len(ids) {
			return nil, nil, fmt.Errorf("%w: token %q has id %d outside 0..%d",
				ErrInvalidVocabulary, token, id, len(ids)-1)
		}
		if seen[id] {
			return nil, nil, fmt.Errorf("%w: id %d assigned to %q and %q",
				ErrInvalidVocabulary, id, tokens[id], token)
		}
		seen[id] = true
		tokens[id] = token
	}

	return ids, tokens, nil
}

func parseMergeRules(data []byte) (map[pair]int, error) {
	ranks := make(map[pair]int)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	rank := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if lineNo == 1 && strings.HasPrefix(line, "#version") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: merge rule line %d: want 2 symbols, got %d",
				ErrInvalidVocabulary, lineNo, len(fields))
		}

		p := pair{left: fields[0], right: fields[1]}
		if _, exists := ranks[p]; !exists {
			ranks[p] = rank
		}
		rank++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: merge rules: %v", ErrInvalidVocabulary, err)
	}

	return ranks, nil
}

// Size returns the number of tokens.
func (v *Vocabulary) Size() int {
	return len(v.tokens)
}

// Merges returns the number of distinct merge rules.
func (v *Vocabulary) Merges() int {
	return len(v.ranks)
}

// ID returns the id of a token string.
func (v *Vocabulary) ID(token string) (int, bool) {
	id, ok := v.ids[token]
	return id, ok
}

// Token returns the token string for an id.
func (v *Vocabulary) Token(id int) (string, bool) {
	if id < 0 || id >= len(v.tokens) {
		return "", false
	}
	return v.tokens[id], true
}

// Rank returns the merge rank of the adjacent pair (left, right).
// Lower ranks merge first.
func (v *Vocabulary) Rank(left, right string) (int, bool) {
	r, ok := v.ranks[pair{left: left, right: right}]
	return r, ok
}
