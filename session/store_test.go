package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/chatkit/history"
)

func TestDefaultRoot(t *testing.T) {
	t.Setenv("C_ROOT", "/tmp/croot")
	root, err := DefaultRoot()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/croot", ".c"), root)

	t.Setenv("C_ROOT", "")
	t.Setenv("HOME", "/tmp/home")
	root, err = DefaultRoot()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/home", ".c"), root)
}

func TestNewStore_DefaultRoot(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("C_ROOT", dir)

	store, err := NewStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".c"), store.Root)
}

func TestStore_Path(t *testing.T) {
	store := &Store{Root: "/root/.c"}

	tests := []struct {
		id      string
		want    string
		wantErr bool
	}{
		{id: "work", want: "/root/.c/sessions/work.yaml"},
		{id: "anonymous/0190", want: "/root/.c/sessions/anonymous/0190.yaml"},
		{id: "", wantErr: true},
		{id: "anonymous/", wantErr: true},
		{id: "../etc/passwd", wantErr: true},
		{id: "a/b", wantErr: true},
		{id: ".hidden", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := store.Path(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestStore_SaveLoad(t *testing.T) {
	store := &Store{Root: t.TempDir()}

	sess := New("work", VendorAnthropic, 200000)
	sess.SetOption("model", "claude-sonnet-4-5")
	sess.SetOption("temperature", 0.7)
	sess.SetOption("max_tokens", 1000)
	sess.Append(history.Human("hello").Pinned())
	sess.Append(history.Assistant("hi there"))

	assert.False(t, store.Exists("work"))
	require.NoError(t, store.Save(sess))
	assert.True(t, store.Exists("work"))

	loaded, err := store.Load("work")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, sess.Vendor, loaded.Vendor)
	assert.Equal(t, sess.History, loaded.History)
	assert.Equal(t, sess.MaxSupportedTokens, loaded.MaxSupportedTokens)
	assert.Equal(t, "claude-sonnet-4-5", loaded.Options["model"])
	assert.Equal(t, 0.7, loaded.Options["temperature"])
	assert.Equal(t, 1000, loaded.Options["max_tokens"])

	// No temp files are left behind.
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "work.yaml", entries[0].Name())
}

func TestStore_LoadNotFound(t *testing.T) {
	store := &Store{Root: t.TempDir()}
	_, err := store.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_LoadLegacyFile(t *testing.T) {
	store := &Store{Root: t.TempDir()}
	path, err := store.Path("legacy")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	data := strings.Join([]string{
		"id: legacy",
		"vendor: OpenAI",
		"history:",
		"- content: what is go?",
		"  role: user",
		"  pin: false",
		"- content: a language",
		"  role: assistant",
		"  pin: true",
		"options:",
		"  model: gpt-4o",
		"max_supported_tokens: 4096",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	sess, err := store.Load("legacy")
	require.NoError(t, err)
	assert.Equal(t, VendorOpenAI, sess.Vendor)
	assert.Equal(t, []history.Message{
		history.Human("what is go?"),
		history.Assistant("a language").Pinned(),
	}, sess.History)
	assert.Equal(t, 4096, sess.MaxSupportedTokens)
}

func TestStore_LoadMalformed(t *testing.T) {
	store := &Store{Root: t.TempDir()}
	path, err := store.Path("bad")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("history: [unclosed"), 0o600))

	_, err = store.Load("bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestStore_Anonymous(t *testing.T) {
	store := &Store{Root: t.TempDir()}

	first, err := store.NewAnonymous(VendorOpenAI, 4096)
	require.NoError(t, err)
	second, err := store.NewAnonymous(VendorOpenAI, 4096)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first.ID, AnonymousPrefix))
	assert.NotEqual(t, first.ID, second.ID)

	require.NoError(t, store.Save(first))
	path, err := store.Path(first.ID)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, filepath.Join(store.Dir(), "anonymous"), filepath.Dir(path))
}

func TestStore_List(t *testing.T) {
	store := &Store{Root: t.TempDir()}

	ids, err := store.List(true)
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, store.Save(New(id, VendorOpenAI, 100)))
	}
	anon, err := store.NewAnonymous(VendorOpenAI, 100)
	require.NoError(t, err)
	require.NoError(t, store.Save(anon))

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), nil, 0o600))

	ids, err = store.List(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)

	ids, err = store.List(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", anon.ID, "mid", "zeta"}, ids)
}

func TestStore_Delete(t *testing.T) {
	store := &Store{Root: t.TempDir()}
	require.NoError(t, store.Save(New("gone", VendorOpenAI, 100)))

	require.NoError(t, store.Delete("gone"))
	assert.False(t, store.Exists("gone"))
	assert.ErrorIs(t, store.Delete("gone"), ErrNotFound)
}
