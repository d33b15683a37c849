package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tazhate/noxd/internal/audio"
	"github.com/tazhate/noxd/internal/domain"
)

const DefaultCloudEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"

// Premium neural voice per supported language tag. Languages outside the
// table fall back to letting the provider pick a voice for the bare
// language code.
var cloudVoices = map[string]string{
	"en-US": "en-US-Neural2-F",
	"en-GB": "en-GB-Neural2-A",
	"en-AU": "en-AU-Neural2-B",
	"fr-CA": "fr-CA-Neural2-A",
	"fr-FR": "fr-FR-Neural2-B",
	"es-US": "es-US-Neural2-A",
	"es-ES": "es-ES-Neural2-B",
	"de-DE": "de-DE-Neural2-B",
	"ja-JP": "ja-JP-Neural2-B",
	"ko-KR": "ko-KR-Neural2-A",
}

// CloudClient talks to the hosted neural TTS endpoint. It is keyed per
// request; the gateway binds a key before adding it to the chain.
type CloudClient struct {
	baseURL    string
	httpClient *http.Client

	// play is swappable in tests; the default decodes and plays the MP3
	// payload through the shared audio context.
	play func(ctx context.Context, mp3 []byte) error
}

func NewCloudClient(baseURL string) *CloudClient {
	if baseURL == "" {
		baseURL = DefaultCloudEndpoint
	}
	return &CloudClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		play: func(ctx context.Context, mp3 []byte) error {
			return audio.PlayMP3(mp3, ctx.Done())
		},
	}
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name,omitempty"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate"`
		Pitch         float64 `json:"pitch"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize renders text to MP3 bytes via the cloud endpoint.
func (c *CloudClient) Synthesize(ctx context.Context, text string, opts domain.TTSOptions, apiKey string) ([]byte, error) {
	var req synthesizeRequest
	req.Input.Text = text
	req.Voice.LanguageCode = opts.Language
	req.Voice.Name = cloudVoices[opts.Language]
	req.AudioConfig.AudioEncoding = "MP3"
	req.AudioConfig.SpeakingRate = opts.Rate
	// The provider expects pitch in semitones; the stored scale is 0.5-2.0.
	req.AudioConfig.Pitch = (opts.Pitch - 1) * 4

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"?key="+url.QueryEscape(apiKey), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tts API error %d: %s", resp.StatusCode, string(respBody))
	}

	var out synthesizeResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	mp3, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio content: %w", err)
	}
	return mp3, nil
}

// ValidateKey performs the smallest possible synthesis with the key.
func (c *CloudClient) ValidateKey(ctx context.Context, apiKey string) bool {
	opts := domain.DefaultTTSOptions()
	_, err := c.Synthesize(ctx, "hi", opts, apiKey)
	return err == nil
}

// Bound returns the client as a chain strategy with the key attached.
func (c *CloudClient) Bound(apiKey string) Strategy {
	return &boundCloud{client: c, apiKey: apiKey}
}

type boundCloud struct {
	client *CloudClient
	apiKey string
}

func (b *boundCloud) Name() string { return "cloud" }

func (b *boundCloud) Speak(ctx context.Context, text string, opts domain.TTSOptions) error {
	mp3, err := b.client.Synthesize(ctx, text, opts, b.apiKey)
	if err != nil {
		return err
	}
	return b.client.play(ctx, mp3)
}
