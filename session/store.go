package session

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// AnonymousPrefix starts the id of every anonymous session.
const AnonymousPrefix = "anonymous/"

const fileExt = ".yaml"

// Store reads and writes session files under Root/sessions.
type Store struct {
	Root string
}

// NewStore creates a store rooted at root. An empty root uses DefaultRoot.
func NewStore(root string) (*Store, error) {
	if root == "" {
		var err error
		root, err = DefaultRoot()
		if err != nil {
			return nil, err
		}
	}
	return &Store{Root: root}, nil
}

// DefaultRoot returns $C_ROOT/.c, or $HOME/.c when C_ROOT is unset.
func DefaultRoot() (string, error) {
	if root := os.Getenv("C_ROOT"); root != "" {
		return filepath.Join(root, ".c"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".c"), nil
}

// Dir returns the directory holding session files.
func (s *Store) Dir() string {
	return filepath.Join(s.Root, "sessions")
}

// Path returns the file path of a session id.
func (s *Store) Path(id string) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir(), filepath.FromSlash(id)+fileExt), nil
}

// Exists reports whether a session file exists for id.
func (s *Store) Exists(id string) bool {
	path, err := s.Path(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads a session. It returns ErrNotFound when no file exists.
func (s *Store) Load(id string) (*Session, error) {
	path, err := s.Path(id)
	if err != nil {
		return nil, err
	}
	sess, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	sess.ID = id
	return sess, nil
}

// ReadFile reads a session from a YAML file.
func ReadFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return decode(data, path)
}

func decode(data []byte, path string) (*Session, error) {
	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	if sess.Options == nil {
		sess.Options = make(map[string]any)
	}
	return &sess, nil
}

// Save writes a session, creating parent directories as needed. The file
// is replaced atomically so readers never see a partial write.
func (s *Store) Save(sess *Session) error {
	path, err := s.Path(sess.ID)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*"+fileExt)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}

	slog.Info("saved session",
		slog.String("id", sess.ID),
		slog.String("path", path),
		slog.Int("messages", len(sess.History)))
	return nil
}

// NewAnonymous creates an unsaved session with a generated, time-ordered id.
func (s *Store) NewAnonymous(vendor Vendor, maxSupportedTokens int) (*Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	return New(AnonymousPrefix+id.String(), vendor, maxSupportedTokens), nil
}

// List returns the ids of saved sessions in sorted order. Anonymous
// sessions are included when withAnonymous is set.
func (s *Store) List(withAnonymous bool) ([]string, error) {
	var ids []string
	err := filepath.WalkDir(s.Dir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.Dir() {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), fileExt) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(s.Dir(), path)
		if err != nil {
			return err
		}
		id := strings.TrimSuffix(filepath.ToSlash(rel), fileExt)
		if validateID(id) != nil {
			return nil
		}
		if strings.HasPrefix(id, AnonymousPrefix) && !withAnonymous {
			return nil
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	slices.Sort(ids)
	return ids, nil
}

// Delete removes a saved session.
func (s *Store) Delete(id string) error {
	path, err := s.Path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("delete session: %w", err)
	}
	slog.Debug("deleted session", slog.String("id", id))
	return nil
}

// validateID accepts plain names and "anonymous/<name>". Names may not
// contain separators or start with a dot.
func validateID(id string) error {
	name := strings.TrimPrefix(id, AnonymousPrefix)
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidID)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidID, id)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidID, id)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidID, id)
	}
	return nil
}
