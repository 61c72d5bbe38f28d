package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/searchmesh/internal/domain"
)

const (
	// Embedding dimensions for different OpenAI models.
	embeddingDimensionStandard = 1536 // Ada v2 and Small v3
	embeddingDimensionLarge    = 3072 // Large v3

	defaultTimeout = 10 * time.Second
)

// Generator generates embeddings using OpenAI.
type Generator struct {
	client    openai.Client
	model     string
	dimension int
	timeout   time.Duration
}

// NewGenerator creates a new OpenAI embedding generator. Retries are left to the
// caller so they can be coordinated with circuit breakers.
func NewGenerator(config Config, opts ...option.RequestOption) (*Generator, error) {
	if config.APIKey == "" {
		return nil, domain.Configuration(errors.New("OpenAI API key is required"))
	}

	if config.Model == "" {
		config.Model = openai.EmbeddingModelTextEmbedding3Small
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(config.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	return &Generator{
		client:    openai.NewClient(clientOpts...),
		model:     config.Model,
		dimension: config.Dimension,
		timeout:   config.Timeout,
	}, nil
}

// Generate creates a vector embedding from text.
func (g *Generator) Generate(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", domain.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	//nolint:exhaustruct // OpenAI SDK struct has many optional fields
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: g.model,
	}
	if g.dimension > 0 && g.model != openai.EmbeddingModelTextEmbeddingAda002 {
		params.Dimensions = openai.Int(int64(g.dimension))
	}

	resp, err := g.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to create embeddings: %w", err))
	}

	if len(resp.Data) == 0 {
		return nil, domain.Transient(errors.New("no embeddings returned"))
	}

	return resp.Data[0].Embedding, nil
}

// Name returns the generator identifier.
func (g *Generator) Name() string {
	return "openai"
}

// Model returns the embedding model name.
func (g *Generator) Model() string {
	return g.model
}

// Dimension returns the vector dimension.
func (g *Generator) Dimension() int {
	if g.dimension > 0 {
		return g.dimension
	}

	switch g.model {
	case openai.EmbeddingModelTextEmbeddingAda002,
		openai.EmbeddingModelTextEmbedding3Small:
		return embeddingDimensionStandard
	case openai.EmbeddingModelTextEmbedding3Large:
		return embeddingDimensionLarge
	default:
		return embeddingDimensionStandard
	}
}

// classifyError marks rate limits, server errors and network failures as transient
// and rejected credentials as configuration errors.
func classifyError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests,
			apiErr.StatusCode >= http.StatusInternalServerError:
			return domain.Transient(err)
		case apiErr.StatusCode == http.StatusUnauthorized,
			apiErr.StatusCode == http.StatusForbidden,
			apiErr.StatusCode == http.StatusNotFound:
			return domain.Configuration(err)
		}
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return domain.Transient(err)
	}

	return err
}
