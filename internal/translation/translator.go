// Package translation wraps the machine translation service and caches its
// language inventory.
package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/parleyhq/parley/internal/clock"
	"github.com/parleyhq/parley/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrTranslationFailed = errors.New("translation_failed")

// Language is one entry of the translation service's inventory.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	// Languages returns the service's supported languages, served from a
	// TTL cache so pollers do not hammer the upstream.
	Languages(ctx context.Context) ([]Language, error)
	// Supported reports whether the code appears in the cached inventory.
	Supported(ctx context.Context, code string) (bool, error)
}

var Module = fx.Provide(New)

type Params struct {
	fx.In

	Log    *zap.Logger
	Clock  clock.Clock
	Holder *config.LangServicesHolder
}

type client struct {
	log    *zap.Logger
	clock  clock.Clock
	holder *config.LangServicesHolder
	http   *http.Client

	mu        sync.Mutex
	langs     []Language
	fetchedAt time.Time
}

func New(p Params) Translator {
	return &client{
		log:    p.Log.Named("translation"),
		clock:  p.Clock,
		holder: p.Holder,
		http:   &http.Client{},
	}
}

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	Translated string `json:"translated"`
}

func (c *client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	// Same language on both sides still goes through the service: it
	// normalizes the transcript and keeps the pipeline uniform.
	cfg := c.holder.Get()

	payload, err := json.Marshal(translateRequest{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TranslateAPIURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("translate request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("translate request rejected", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: status %d", ErrTranslationFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}
	var result translateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}
	if result.Translated == "" {
		return "", fmt.Errorf("%w: empty translation", ErrTranslationFailed)
	}
	return result.Translated, nil
}

func (c *client) Languages(ctx context.Context) ([]Language, error) {
	cfg := c.holder.Get()

	c.mu.Lock()
	if c.langs != nil && c.clock.Now().Sub(c.fetchedAt) < cfg.LangsCacheTTL {
		cached := c.langs
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.TranslateAPIURL+"/languages", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrTranslationFailed, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}
	var langs []Language
	if err := json.Unmarshal(body, &langs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}

	c.mu.Lock()
	c.langs = langs
	c.fetchedAt = c.clock.Now()
	c.mu.Unlock()
	return langs, nil
}

func (c *client) Supported(ctx context.Context, code string) (bool, error) {
	langs, err := c.Languages(ctx)
	if err != nil {
		return false, err
	}
	for _, lang := range langs {
		if lang.Code == code {
			return true, nil
		}
	}
	return false, nil
}
