// Package gemini provides an implementation of model.Model and model.Embedder
// using the Google Gemini API (generate content with function calling, plus
// text embeddings). It adapts Taskhive's normalized Request/Response
// structures into the SDK's content format and back.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/taskhive/taskhive/model"
)

// Options configure the Gemini model adapter.
type Options struct {
	Model           string
	EmbeddingModel  string
	Temperature     float32
	MaxOutputTokens int32
	APIKey          string
}

// Model wraps the Gemini API behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// New creates a new Gemini model, building a client from the options.
func New(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	var clientOpts []option.ClientOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Model{client: client, opts: opts}, nil
}

// NewFromClient creates a new Gemini model from an existing client.
func NewFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:           "gemini-2.5-flash",
		EmbeddingModel:  "text-embedding-004",
		Temperature:     0.7,
		MaxOutputTokens: 4096,
	}
}

// Close releases the underlying client connection.
func (m *Model) Close() error { return m.client.Close() }

// Generate implements model.Model. A request carrying a prior ToolCall plus
// its ToolResult is sent as a short chat history so the model can produce the
// final answer; everything else is a single-shot content generation.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	gm := m.client.GenerativeModel(m.opts.Model)
	gm.SetTemperature(m.opts.Temperature)
	gm.SetMaxOutputTokens(m.opts.MaxOutputTokens)
	if req.Instruction != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.Instruction)}}
	}
	if len(req.Tools) > 0 {
		gm.Tools = buildTools(req.Tools)
	}

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	if req.ToolCall != nil && req.ToolResult != nil {
		resp, err = m.generateToolFollowUp(ctx, gm, req)
	} else {
		resp, err = gm.GenerateContent(ctx, genai.Text(req.Prompt))
	}
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}
	return convertResponse(resp)
}

// generateToolFollowUp replays the original prompt and the model's function
// call as chat history, then sends the function response.
func (m *Model) generateToolFollowUp(
	ctx context.Context,
	gm *genai.GenerativeModel,
	req model.Request,
) (*genai.GenerateContentResponse, error) {
	args, err := req.ToolCall.ArgsMap()
	if err != nil {
		return nil, err
	}
	cs := gm.StartChat()
	cs.History = []*genai.Content{
		{Role: "user", Parts: []genai.Part{genai.Text(req.Prompt)}},
		{Role: "model", Parts: []genai.Part{genai.FunctionCall{
			Name: req.ToolCall.Name,
			Args: args,
		}}},
	}
	return cs.SendMessage(ctx, genai.FunctionResponse{
		Name:     req.ToolResult.Name,
		Response: map[string]any{"result": req.ToolResult.Content},
	})
}

// convertResponse flattens the first candidate into text plus an optional
// tool call.
func convertResponse(resp *genai.GenerateContentResponse) (*model.Response, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini api error: empty response")
	}
	cand := resp.Candidates[0]
	out := &model.Response{FinishReason: cand.FinishReason.String()}
	for _, part := range cand.Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			out.Text += string(v)
		case genai.FunctionCall:
			argsBytes, err := json.Marshal(v.Args)
			if err != nil {
				return nil, fmt.Errorf("encode function call arguments: %w", err)
			}
			out.ToolCall = &model.ToolCall{Name: v.Name, Arguments: argsBytes}
		}
	}
	return out, nil
}

// buildTools converts normalized tool definitions into Gemini function
// declarations.
func buildTools(tools []model.ToolDefinition) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  buildSchema(t.Function.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// buildSchema converts the minimal JSON-Schema-like parameter map used across
// the project into the SDK's schema type.
func buildSchema(params map[string]any) *genai.Schema {
	schema := &genai.Schema{Type: genai.TypeObject}
	if params == nil {
		return schema
	}
	if props, ok := params["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			prop := &genai.Schema{Type: genai.TypeString}
			if pm, ok := raw.(map[string]any); ok {
				prop.Type = schemaType(pm["type"])
				if desc, ok := pm["description"].(string); ok {
					prop.Description = desc
				}
			}
			schema.Properties[name] = prop
		}
	}
	switch required := params["required"].(type) {
	case []string:
		schema.Required = required
	case []any:
		for _, r := range required {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	return schema
}

func schemaType(v any) genai.Type {
	s, _ := v.(string)
	switch s {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// Embed implements model.Embedder using the configured embedding model with
// the semantic similarity task type.
func (m *Model) Embed(ctx context.Context, text string) ([]float32, error) {
	em := m.client.EmbeddingModel(m.opts.EmbeddingModel)
	em.TaskType = genai.TaskTypeSemanticSimilarity
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding error: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini embedding error: no embedding returned")
	}
	return res.Embedding.Values, nil
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "gemini",
		SupportsTools: true,
	}
}
