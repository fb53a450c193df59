package llm

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	client := openai.NewClientWithConfig(clientConfig)

	return &OpenAIProvider{
		client: client,
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Simple check: try to list models (lightweight API call)
	_, err := p.client.ListModels(ctx)
	if err != nil {
		// Log the actual error for debugging (this helps users diagnose API key issues)
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// Summarize generates a summary using OpenAI's Chat Completions API
func (p *OpenAIProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	// Build prompt if not provided
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Report, req.AllowedFiles)
	}

	// Determine model
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini // Default to gpt-4o-mini
	}

	// Determine max tokens
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1000
	}

	// Create timeout context
	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Make API call
	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a helpful assistant that summarizes claimlens reports with strict adherence to file-reference constraints.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3, // Lower temperature for more focused, factual output
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)

	// Extract file references from the summary
	citedFiles := extractFileReferences(summary)

	// CRITICAL: Verify strict reference mode
	if p.config.StrictReferences {
		if err := verifyReferences(citedFiles, req.AllowedFiles); err != nil {
			return nil, err
		}
	}

	return &SummarizeResponse{
		Summary:    summary,
		CitedFiles: citedFiles,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// extractFileReferences pulls backtick-quoted file paths from text.
// Providers instruct the model to cite files in backticks, so anything
// backtick-quoted that looks like a path counts as a citation.
func extractFileReferences(text string) []string {
	refPattern := regexp.MustCompile("`([^`\n]+)`")
	matches := refPattern.FindAllStringSubmatch(text, -1)

	seen := make(map[string]bool)
	var unique []string
	for _, m := range matches {
		ref := strings.TrimSpace(m[1])
		// Only path-like references count
		if !strings.ContainsAny(ref, "/.") {
			continue
		}
		if !seen[ref] {
			seen[ref] = true
			unique = append(unique, ref)
		}
	}

	return unique
}

// verifyReferences enforces the allowlist: a single cited file outside
// it fails the whole summarization
func verifyReferences(cited, allowed []string) error {
	for _, ref := range cited {
		if !contains(allowed, ref) {
			return fmt.Errorf("REFERENCE LEAK: LLM cited disallowed file: %s", ref)
		}
	}
	return nil
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
