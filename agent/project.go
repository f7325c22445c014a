package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/internal/util"
	"github.com/taskhive/taskhive/logging"
	"github.com/taskhive/taskhive/model"
	"github.com/taskhive/taskhive/retrieval"
	"github.com/taskhive/taskhive/store"
)

// ProjectName is the registry key of the project agent.
const ProjectName = "project_agent"

const projectInstruction = `You are an agent that specializes in getting information related to the documents in the user's project.
If you are called it is likely that the information is in the user's docs. Provide detailed and thorough responses.`

// noProjectSelected is the descriptive result returned by project tools when
// the conversation has no project scope. It is a message, never an error.
const noProjectSelected = "No current project selected in user context."

const (
	searchToolName = "search_project_documents"
	createToolName = "create_document"
)

// ProjectAgent answers questions about, and creates, project documents. It is
// the one tool-using agent: each Chat call offers the model the search and
// create tools, executes a requested tool locally and issues a follow-up model
// call carrying the tool result so the model can produce its final answer.
type ProjectAgent struct {
	model    model.Model
	embedder model.Embedder
	engine   *retrieval.Engine
	docs     store.DocumentStore
	userCtx  core.UserContext
	logger   logging.Logger
}

// ProjectOptions configures a ProjectAgent.
type ProjectOptions struct {
	Logger logging.Logger
}

// NewProjectAgent constructs a ProjectAgent scoped to the caller's user
// context.
func NewProjectAgent(
	m model.Model,
	embedder model.Embedder,
	engine *retrieval.Engine,
	docs store.DocumentStore,
	userCtx core.UserContext,
	optFns ...func(o *ProjectOptions),
) *ProjectAgent {
	opts := ProjectOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ProjectAgent{
		model:    m,
		embedder: embedder,
		engine:   engine,
		docs:     docs,
		userCtx:  userCtx,
		logger:   logging.OrDefault(opts.Logger),
	}
}

// Name implements Agent.
func (p *ProjectAgent) Name() string { return ProjectName }

// Description implements Agent.
func (p *ProjectAgent) Description() string {
	return "This agent answers questions about the documents in the current project and can create new documents. (Tools: search_project_documents(query), create_document(doc_name, content))"
}

// Chat implements Agent. Tool execution failures are rendered into the tool
// result text so the model can react; only model call failures return errors.
func (p *ProjectAgent) Chat(ctx context.Context, prompt string) (string, error) {
	resp, err := p.model.Generate(ctx, model.Request{
		Instruction: projectInstruction,
		Prompt:      prompt,
		Tools:       toolDefinitions(),
	})
	if err != nil {
		return "", fmt.Errorf("project agent model call: %w", err)
	}
	if resp.ToolCall == nil {
		return resp.Text, nil
	}

	start := time.Now()
	result := p.executeTool(ctx, resp.ToolCall)
	p.logger.Info("tool execution completed", "tool", resp.ToolCall.Name, "duration_ms", time.Since(start).Milliseconds())

	followUp, err := p.model.Generate(ctx, model.Request{
		Instruction: projectInstruction,
		Prompt:      prompt,
		ToolCall:    resp.ToolCall,
		ToolResult:  &model.ToolResult{Name: resp.ToolCall.Name, Content: result},
	})
	if err != nil {
		return "", fmt.Errorf("project agent tool follow-up call: %w", err)
	}
	return followUp.Text, nil
}

// executeTool runs the requested tool and renders any failure as text.
func (p *ProjectAgent) executeTool(ctx context.Context, call *model.ToolCall) string {
	args, err := call.ArgsMap()
	if err != nil {
		return fmt.Sprintf("Error decoding arguments for tool %s: %v", call.Name, err)
	}
	schema, ok := toolSchemas[call.Name]
	if !ok {
		return fmt.Sprintf("Unknown tool requested: %s", call.Name)
	}
	if err := util.ValidateParameters(args, schema); err != nil {
		return fmt.Sprintf("Error in arguments for tool %s: %v", call.Name, err)
	}

	switch call.Name {
	case searchToolName:
		query, _ := args["query"].(string)
		return p.searchProjectDocuments(ctx, query)
	case createToolName:
		docName, _ := args["doc_name"].(string)
		content, _ := args["content"].(string)
		return p.createDocument(ctx, docName, content)
	default:
		return fmt.Sprintf("Unknown tool requested: %s", call.Name)
	}
}

// searchProjectDocuments retrieves the most relevant documents and asks the
// model for an answer grounded in them.
func (p *ProjectAgent) searchProjectDocuments(ctx context.Context, query string) string {
	if !p.userCtx.HasProject() {
		return noProjectSelected
	}

	matches, err := p.engine.Search(ctx, query, p.userCtx.ProjectID, p.userCtx.UserID)
	if err != nil {
		return fmt.Sprintf("Error searching project documents: %v", err)
	}
	if len(matches) == 0 {
		return fmt.Sprintf("No relevant documents found for '%s'.", query)
	}

	var contextText strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&contextText, "Document %d: %s\n", i+1, m.DocName)
		fmt.Fprintf(&contextText, "Content: %s\n", m.Content)
		fmt.Fprintf(&contextText, "Relevance Score: %.3f\n\n", m.Score)
	}

	groundedPrompt := fmt.Sprintf(`Based on the following project documents, please answer the user's query.
User Query: %s

Relevant Project Documents:
%s
Instructions:
- Answer based primarily on the provided documents
- If the documents don't contain enough information, clearly state this
- Cite which document(s) you're referencing in your answer by its title not number`, query, contextText.String())

	resp, err := p.model.Generate(ctx, model.Request{
		Instruction: projectInstruction,
		Prompt:      groundedPrompt,
	})
	if err != nil {
		return fmt.Sprintf("Error searching project documents: %v", err)
	}
	return resp.Text
}

// createDocument embeds the content and persists a new document under the
// current project.
func (p *ProjectAgent) createDocument(ctx context.Context, docName, content string) string {
	if !p.userCtx.HasProject() {
		return noProjectSelected
	}

	embedding, err := p.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Sprintf("Error creating document: %v", err)
	}
	_, err = p.docs.InsertDocument(ctx, store.Document{
		ProjectID: p.userCtx.ProjectID,
		UserID:    p.userCtx.UserID,
		Name:      docName,
		Content:   content,
		Embedding: embedding,
	})
	if err != nil {
		return fmt.Sprintf("Error creating document: %v", err)
	}
	return fmt.Sprintf("Successfully created document '%s' with %d characters of content.", docName, len(content))
}

// toolSchemas holds the parameter schema per tool, shared between the
// declarations sent to the model and local argument validation.
var toolSchemas = map[string]map[string]any{
	searchToolName: {
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query to find relevant project documents",
			},
		},
		"required": []string{"query"},
	},
	createToolName: {
		"type": "object",
		"properties": map[string]any{
			"doc_name": map[string]any{
				"type":        "string",
				"description": "The name/title of the document to create",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "The content/text of the document to create",
			},
		},
		"required": []string{"doc_name", "content"},
	},
}

func toolDefinitions() []model.ToolDefinition {
	return []model.ToolDefinition{
		{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        searchToolName,
				Description: "Search through project documents to find relevant information based on a query",
				Parameters:  toolSchemas[searchToolName],
			},
		},
		{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        createToolName,
				Description: "Create a new project document with the given name and content",
				Parameters:  toolSchemas[createToolName],
			},
		},
	}
}
