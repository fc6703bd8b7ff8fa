package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/magicphoto-api/internal/config"
	"github.com/phrazzld/magicphoto-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	imagesFn  func(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
	contentFn func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (f *fakeModels) GenerateImages(
	ctx context.Context,
	model, prompt string,
	cfg *genai.GenerateImagesConfig,
) (*genai.GenerateImagesResponse, error) {
	return f.imagesFn(ctx, model, prompt, cfg)
}

func (f *fakeModels) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	return f.contentFn(ctx, model, contents, cfg)
}

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		GeminiAPIKey:           "key",
		ImageModel:             "imagen-test",
		TextModel:              "gemini-test",
		AspectRatio:            "1:1",
		NegativePrompt:         "low quality, blurry, distorted",
		SampleCount:            1,
		ProviderTimeoutSeconds: 60,
		EnhancerTimeoutSeconds: 30,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestImagenProvider_InlineBytes(t *testing.T) {
	t.Parallel()

	var gotCfg *genai.GenerateImagesConfig
	var gotModel, gotPrompt string
	models := &fakeModels{imagesFn: func(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
		gotModel, gotPrompt, gotCfg = model, prompt, cfg
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return &genai.GenerateImagesResponse{GeneratedImages: []*genai.GeneratedImage{
			{Image: &genai.Image{ImageBytes: []byte{0xff, 0xd8}, MIMEType: "image/jpeg"}},
		}}, nil
	}}

	p, err := newImagenProvider(models, testLLMConfig(), discardLogger())
	require.NoError(t, err)

	img, err := p.GenerateImage(context.Background(), generation.ImageRequest{
		Prompt:         "castle",
		NegativePrompt: "blurry",
		AspectRatio:    "1:1",
		SampleCount:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, img.Data)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Empty(t, img.URL)

	assert.Equal(t, "imagen-test", gotModel)
	assert.Equal(t, "castle", gotPrompt)
	assert.Equal(t, int32(1), gotCfg.NumberOfImages)
	assert.Equal(t, "1:1", gotCfg.AspectRatio)
	assert.Equal(t, "blurry", gotCfg.NegativePrompt)
	assert.Equal(t, genai.PersonGenerationAllowAdult, gotCfg.PersonGeneration)
}

func TestImagenProvider_RemoteReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		uri     string
		wantURL string
		wantErr error
	}{
		{
			name:    "cloud storage object",
			uri:     "gs://bucket/renders/out.png",
			wantURL: "https://storage.googleapis.com/bucket/renders/out.png",
		},
		{
			name:    "https passes through",
			uri:     "https://cdn.example.com/out.png",
			wantURL: "https://cdn.example.com/out.png",
		},
		{
			name:    "bucket without object",
			uri:     "gs://bucket",
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "unknown scheme",
			uri:     "s3://bucket/out.png",
			wantErr: generation.ErrInvalidResponse,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			models := &fakeModels{imagesFn: func(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
				return &genai.GenerateImagesResponse{GeneratedImages: []*genai.GeneratedImage{
					{Image: &genai.Image{GCSURI: tc.uri}},
				}}, nil
			}}
			p, err := newImagenProvider(models, testLLMConfig(), discardLogger())
			require.NoError(t, err)

			img, err := p.GenerateImage(context.Background(), generation.ImageRequest{Prompt: "x"})
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantURL, img.URL)
			assert.Empty(t, img.Data)
		})
	}
}

func TestImagenProvider_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    *genai.GenerateImagesResponse
		err     error
		wantErr error
	}{
		{"transport error", nil, errors.New("503"), generation.ErrGenerationFailed},
		{"deadline", nil, context.DeadlineExceeded, generation.ErrTimeout},
		{"no images", &genai.GenerateImagesResponse{}, nil, generation.ErrInvalidResponse},
		{"empty image", &genai.GenerateImagesResponse{GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{}}}}, nil, generation.ErrInvalidResponse},
		{"filtered", &genai.GenerateImagesResponse{GeneratedImages: []*genai.GeneratedImage{{RAIFilteredReason: "unsafe"}}}, nil, generation.ErrContentBlocked},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			models := &fakeModels{imagesFn: func(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
				return tc.resp, tc.err
			}}
			p, err := newImagenProvider(models, testLLMConfig(), discardLogger())
			require.NoError(t, err)

			_, err = p.GenerateImage(context.Background(), generation.ImageRequest{Prompt: "x"})
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, generation.ErrGenerationFailed)
		})
	}
}

func TestImagenProvider_TimeoutApplied(t *testing.T) {
	t.Parallel()

	cfg := testLLMConfig()
	cfg.ProviderTimeoutSeconds = 1
	models := &fakeModels{imagesFn: func(ctx context.Context, model, prompt string, c *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	p, err := newImagenProvider(models, cfg, discardLogger())
	require.NoError(t, err)

	_, err = p.GenerateImage(context.Background(), generation.ImageRequest{Prompt: "x"})
	assert.ErrorIs(t, err, generation.ErrTimeout)
}

func TestNewProviders_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := testLLMConfig()
	cfg.ImageModel = ""
	_, err := newImagenProvider(&fakeModels{}, cfg, discardLogger())
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	cfg = testLLMConfig()
	cfg.TextModel = ""
	_, err = newTextEnhancer(&fakeModels{}, cfg, discardLogger())
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = newImagenProvider(&fakeModels{}, testLLMConfig(), nil)
	assert.Error(t, err)

	_, err = NewImagenProvider(nil, testLLMConfig(), discardLogger())
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = NewClient(context.Background(), config.LLMConfig{})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func textResponse(text string, reason genai.FinishReason) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
		FinishReason: reason,
	}}}
}

func TestTextEnhancer_EnhancePrompt(t *testing.T) {
	t.Parallel()

	var gotText string
	models := &fakeModels{contentFn: func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		require.Len(t, contents, 1)
		require.Len(t, contents[0].Parts, 1)
		gotText = contents[0].Parts[0].Text
		return textResponse("  A luminous castle under aurora skies.  ", genai.FinishReasonStop), nil
	}}
	e, err := newTextEnhancer(models, testLLMConfig(), discardLogger())
	require.NoError(t, err)

	out, err := e.EnhancePrompt(context.Background(), "snowy castle")
	require.NoError(t, err)
	assert.Equal(t, "A luminous castle under aurora skies.", out)
	assert.Equal(t, generation.BuildEnhancementPrompt("snowy castle"), gotText)
}

func TestTextEnhancer_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		err     error
		wantErr error
	}{
		{"call error", nil, errors.New("quota"), generation.ErrEnhancementFailed},
		{"no candidates", &genai.GenerateContentResponse{}, nil, generation.ErrInvalidResponse},
		{"blocked", textResponse("", genai.FinishReasonSafety), nil, generation.ErrContentBlocked},
		{"blank", textResponse("   ", genai.FinishReasonStop), nil, generation.ErrInvalidResponse},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			models := &fakeModels{contentFn: func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				return tc.resp, tc.err
			}}
			e, err := newTextEnhancer(models, testLLMConfig(), discardLogger())
			require.NoError(t, err)

			_, err = e.EnhancePrompt(context.Background(), "x")
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, generation.ErrEnhancementFailed)
		})
	}
}

func TestImagenProvider_ErrorRedactsKey(t *testing.T) {
	t.Parallel()

	models := &fakeModels{imagesFn: func(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
		return nil, errors.New(`Post "https://generativelanguage.googleapis.com/v1beta/models/imagen:predict?key=s3cr3t-value": EOF`)
	}}
	p, err := newImagenProvider(models, testLLMConfig(), discardLogger())
	require.NoError(t, err)

	_, err = p.GenerateImage(context.Background(), generation.ImageRequest{Prompt: "x"})
	require.ErrorIs(t, err, generation.ErrGenerationFailed)
	assert.NotContains(t, err.Error(), "s3cr3t-value")
}
