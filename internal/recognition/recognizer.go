// Package recognition turns recorded audio into text via the speech
// recognition service.
package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/parleyhq/parley/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrRecognitionFailed = errors.New("recognition_failed")

type Result struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

type Recognizer interface {
	// Recognize transcribes the audio, hinting the service with the
	// speaker's chosen language.
	Recognize(ctx context.Context, audio []byte, mimeType, lang string) (Result, error)
}

var Module = fx.Provide(New)

type Params struct {
	fx.In

	Log    *zap.Logger
	Holder *config.LangServicesHolder
}

type client struct {
	log    *zap.Logger
	holder *config.LangServicesHolder
	http   *http.Client
}

func New(p Params) Recognizer {
	return &client{
		log:    p.Log.Named("recognition"),
		holder: p.Holder,
		http:   &http.Client{},
	}
}

func (c *client) Recognize(ctx context.Context, audio []byte, mimeType, lang string) (Result, error) {
	cfg := c.holder.Get()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("lang", lang); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	part, err := writer.CreateFormFile("audio", "audio")
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	if _, err := part.Write(audio); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.RecognizeAPIURL, &body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Audio-Mime-Type", mimeType)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("recognize request failed", zap.Error(err))
		return Result{}, fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("recognize request rejected", zap.Int("status", resp.StatusCode))
		return Result{}, fmt.Errorf("%w: status %d", ErrRecognitionFailed, resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	if result.Text == "" {
		return Result{}, fmt.Errorf("%w: empty transcript", ErrRecognitionFailed)
	}
	if result.Lang == "" {
		result.Lang = lang
	}
	return result, nil
}
