package translate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTranslator struct {
	translated string
	language   string
	err        error
	delay      time.Duration
	calls      int
}

func (f *fakeTranslator) Translate(ctx context.Context, _ string) (string, string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", "", ctx.Err()
		}
	}
	return f.translated, f.language, f.err
}

func TestNormalizeASCIIPassthrough(t *testing.T) {
	t.Parallel()

	ft := &fakeTranslator{}
	n := NewNormalizer(ft, NewMemoryStore(), time.Second, zap.NewNop())

	text, info := n.Normalize(context.Background(), "chicken breast")
	require.Equal(t, "chicken breast", text)
	require.Nil(t, info)
	require.Zero(t, ft.calls, "ASCII queries must not hit the translator")
}

func TestNormalizeTranslatesNonASCII(t *testing.T) {
	t.Parallel()

	ft := &fakeTranslator{translated: "test", language: "es"}
	n := NewNormalizer(ft, NewMemoryStore(), time.Second, zap.NewNop())

	text, info := n.Normalize(context.Background(), "prueba de ñame")
	require.Equal(t, "test", text)
	require.NotNil(t, info)
	require.Equal(t, "es", info.DetectedLanguage)
	require.Equal(t, "prueba de ñame", info.OriginalQuery)
	require.False(t, info.FromCache)
}

func TestNormalizeFailsOpen(t *testing.T) {
	t.Parallel()

	t.Run("translator error", func(t *testing.T) {
		t.Parallel()
		ft := &fakeTranslator{err: errors.New("upstream down")}
		n := NewNormalizer(ft, NewMemoryStore(), time.Second, zap.NewNop())

		text, info := n.Normalize(context.Background(), "crème fraîche")
		require.Equal(t, "crème fraîche", text)
		require.Nil(t, info)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		ft := &fakeTranslator{translated: "late", language: "fr", delay: 200 * time.Millisecond}
		n := NewNormalizer(ft, NewMemoryStore(), 20*time.Millisecond, zap.NewNop())

		text, info := n.Normalize(context.Background(), "crème fraîche")
		require.Equal(t, "crème fraîche", text)
		require.Nil(t, info)
	})

	t.Run("no translator configured", func(t *testing.T) {
		t.Parallel()
		n := NewNormalizer(nil, NewMemoryStore(), time.Second, zap.NewNop())

		text, info := n.Normalize(context.Background(), "crème fraîche")
		require.Equal(t, "crème fraîche", text)
		require.Nil(t, info)
	})
}

func TestNormalizeEnglishDetectedIsPassthrough(t *testing.T) {
	t.Parallel()

	ft := &fakeTranslator{translated: "cafe latte", language: "en"}
	n := NewNormalizer(ft, NewMemoryStore(), time.Second, zap.NewNop())

	text, info := n.Normalize(context.Background(), "café latte")
	require.Equal(t, "café latte", text)
	require.Nil(t, info)
}

func TestNormalizeUsesStore(t *testing.T) {
	t.Parallel()

	ft := &fakeTranslator{translated: "test", language: "es"}
	store := NewMemoryStore()
	n := NewNormalizer(ft, store, time.Second, zap.NewNop())

	_, info := n.Normalize(context.Background(), "prueba ñ")
	require.NotNil(t, info)
	require.Equal(t, 1, ft.calls)

	// Second call is served from the store without a translator call.
	text, info := n.Normalize(context.Background(), "prueba ñ")
	require.Equal(t, "test", text)
	require.NotNil(t, info)
	require.True(t, info.FromCache)
	require.Equal(t, 1, ft.calls)
}
