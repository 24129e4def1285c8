package tokens

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/randalmurphal/chatkit/bpe"
)

// LoadVocabularyFiles reads a token map (encoder.json) and merge rules
// (vocab.bpe) from disk. Files ending in .gz or .zst are decompressed.
func LoadVocabularyFiles(tokenMapPath, mergeRulesPath string) (*bpe.Vocabulary, error) {
	tokenMap, err := readMaybeCompressed(tokenMapPath)
	if err != nil {
		return nil, fmt.Errorf("read token map: %w", err)
	}
	mergeRules, err := readMaybeCompressed(mergeRulesPath)
	if err != nil {
		return nil, fmt.Errorf("read merge rules: %w", err)
	}
	return bpe.LoadVocabulary(tokenMap, mergeRules)
}

// LoadEncoderFiles is LoadVocabularyFiles followed by bpe.NewEncoder.
func LoadEncoderFiles(tokenMapPath, mergeRulesPath string, opts ...bpe.EncoderOption) (*bpe.Encoder, error) {
	vocab, err := LoadVocabularyFiles(tokenMapPath, mergeRulesPath)
	if err != nil {
		return nil, err
	}
	return bpe.NewEncoder(vocab, opts...), nil
}

func readMaybeCompressed(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return io.ReadAll(f)
	}
}
