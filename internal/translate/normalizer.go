// Package translate rewrites non-English queries before federation.
// The feature is optional: without a credential, or when the upstream
// misbehaves, queries pass through unchanged.
package translate

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nutrisync/foodsearch/internal/food"
)

// TranslationStore caches successful translations by original text.
// Entries never expire; translations of a fixed string do not go stale.
type TranslationStore interface {
	Get(ctx context.Context, original string) (translated string, detectedLanguage string, ok bool)
	Put(ctx context.Context, original, translated, detectedLanguage string)
}

// Normalizer decides whether a query needs translation and applies it.
type Normalizer struct {
	translator food.Translator
	store      TranslationStore
	timeout    time.Duration
	logger     *zap.Logger
}

// NewNormalizer builds a Normalizer. A nil translator disables the
// feature entirely.
func NewNormalizer(translator food.Translator, store TranslationStore, timeout time.Duration, logger *zap.Logger) *Normalizer {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Normalizer{
		translator: translator,
		store:      store,
		timeout:    timeout,
		logger:     logger,
	}
}

// Normalize returns the text the federation should search with, plus
// translation info when a rewrite happened. It fails open: any
// translation problem yields the original query and no info.
func (n *Normalizer) Normalize(ctx context.Context, query string) (string, *food.TranslationInfo) {
	if isASCII(query) || n.translator == nil {
		return query, nil
	}

	if n.store != nil {
		if translated, lang, ok := n.store.Get(ctx, query); ok {
			return translated, &food.TranslationInfo{
				OriginalQuery:    query,
				TranslatedQuery:  translated,
				DetectedLanguage: lang,
				FromCache:        true,
			}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	translated, lang, err := n.translator.Translate(callCtx, query)
	if err != nil {
		n.logger.Debug("translation unavailable, passing query through",
			zap.String("query", query),
			zap.Error(err),
		)
		return query, nil
	}
	if lang == "en" || translated == "" {
		return query, nil
	}

	if n.store != nil {
		n.store.Put(ctx, query, translated, lang)
	}
	return translated, &food.TranslationInfo{
		OriginalQuery:    query,
		TranslatedQuery:  translated,
		DetectedLanguage: lang,
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
