package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"

	loggerpkg "github.com/minhyannv/magnusliber-go/pkg/logger"
)

// DefaultAPIVersion is the Azure OpenAI REST version used for chat completions.
const DefaultAPIVersion = "2023-05-15"

// Completer produces one assistant reply for a conversation.
type Completer interface {
	Complete(ctx context.Context, conversation []Message) (Message, error)
}

// ClientConfig describes the Azure OpenAI deployment to talk to.
type ClientConfig struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
	Sampling   SamplingParams
	Verbose    bool
}

// ClientOption configures optional dependencies for Client.
type ClientOption func(*clientDeps)

type clientDeps struct {
	logger      loggerpkg.Logger
	requestOpts []option.RequestOption
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) ClientOption {
	return func(d *clientDeps) {
		d.logger = l
	}
}

// WithRequestOptions appends raw SDK request options, e.g. a custom HTTP client.
func WithRequestOptions(opts ...option.RequestOption) ClientOption {
	return func(d *clientDeps) {
		d.requestOpts = append(d.requestOpts, opts...)
	}
}

// Client sends chat-completion requests to an Azure OpenAI deployment.
type Client struct {
	client     openai.Client
	deployment string
	sampling   SamplingParams

	logger  loggerpkg.Logger
	verbose bool
}

// NewClient builds a Client. The SDK's automatic retries are disabled.
func NewClient(cfg ClientConfig, opts ...ClientOption) (*Client, error) {
	deps := clientDeps{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("endpoint is not set")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("api key is not set")
	}
	if strings.TrimSpace(cfg.Deployment) == "" {
		return nil, errors.New("deployment is not set")
	}
	apiVersion := strings.TrimSpace(cfg.APIVersion)
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	requestOpts := []option.RequestOption{
		azure.WithEndpoint(endpoint, apiVersion),
		azure.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	requestOpts = append(requestOpts, deps.requestOpts...)

	loggerpkg.Debug(cfg.Verbose, deps.logger, "chat client init", map[string]any{
		"endpoint":    endpoint,
		"deployment":  cfg.Deployment,
		"api_version": apiVersion,
		"max_tokens":  cfg.Sampling.MaxTokens,
	})

	return &Client{
		client:     openai.NewClient(requestOpts...),
		deployment: cfg.Deployment,
		sampling:   cfg.Sampling,
		logger:     deps.logger,
		verbose:    cfg.Verbose,
	}, nil
}

// Complete sends the conversation and returns the first choice's message.
func (c *Client) Complete(ctx context.Context, conversation []Message) (Message, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	messages, err := toOpenAIMessages(conversation)
	if err != nil {
		return Message{}, err
	}

	loggerpkg.Debug(c.verbose, c.logger, "sending chat completion", map[string]any{
		"messages": len(messages),
	})
	completion, err := c.client.Chat.Completions.New(ctx, c.newParams(messages))
	if err != nil {
		return Message{}, classifyError(err)
	}
	if len(completion.Choices) == 0 {
		return Message{}, &ResponseError{Err: ErrNoChoices}
	}

	choice := completion.Choices[0]
	loggerpkg.Debug(c.verbose, c.logger, "chat completion received", map[string]any{
		"choices":       len(completion.Choices),
		"finish_reason": choice.FinishReason,
		"bytes":         len(choice.Message.Content),
	})
	return AssistantMessage(choice.Message.Content), nil
}

func (c *Client) newParams(messages []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model:            openai.ChatModel(c.deployment),
		Messages:         messages,
		MaxTokens:        openai.Int(c.sampling.MaxTokens),
		N:                openai.Int(c.sampling.N),
		Temperature:      openai.Float(c.sampling.Temperature),
		TopP:             openai.Float(c.sampling.TopP),
		FrequencyPenalty: openai.Float(c.sampling.FrequencyPenalty),
		PresencePenalty:  openai.Float(c.sampling.PresencePenalty),
	}
}

// classifyError maps SDK errors onto the package's typed errors.
func classifyError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return newAPIError(apiErr.StatusCode, responseBody(apiErr))
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &ResponseError{Err: err}
	}
	return &TransportError{Err: err}
}

// responseBody returns the raw HTTP body of a failed request. The SDK
// decodes only part of it into apiErr, so the bytes are re-read from the
// response and put back for later readers.
func responseBody(apiErr *openai.Error) string {
	if apiErr.Response == nil || apiErr.Response.Body == nil {
		return apiErr.RawJSON()
	}
	data, err := io.ReadAll(apiErr.Response.Body)
	_ = apiErr.Response.Body.Close()
	apiErr.Response.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil || len(data) == 0 {
		return apiErr.RawJSON()
	}
	return strings.TrimSpace(string(data))
}

func newAPIError(status int, body string) *APIError {
	message := gjson.Get(body, "error.message").String()
	if message == "" {
		message = gjson.Get(body, "message").String()
	}
	return &APIError{StatusCode: status, Message: message, Body: body}
}
