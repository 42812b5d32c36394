package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/aliasrewrite/pkg/alias"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/compiler"
	"github.com/Sumatoshi-tech/aliasrewrite/pkg/rewrite"
)

// Tool name constants.
const (
	ToolNameRewrite = "rewrite_specifiers"
	ToolNameSites   = "list_specifiers"
)

// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MiB).
const MaxCodeInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCode indicates the code parameter is empty.
	ErrEmptyCode = errors.New("code parameter is required and must not be empty")
	// ErrEmptyFilename indicates the filename parameter is empty.
	ErrEmptyFilename = errors.New("filename parameter is required and must not be empty")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
	// ErrNoAliases indicates neither the call nor the server configured any alias.
	ErrNoAliases = errors.New("no aliases given and none configured")
)

// RewriteInput is the input schema for the rewrite_specifiers tool.
type RewriteInput struct {
	Aliases  []alias.Entry `json:"aliases,omitempty" jsonschema:"ordered pattern/replacement rules; defaults to the server configuration"`
	Code     string        `json:"code"              jsonschema:"source code to rewrite"`
	Filename string        `json:"filename"          jsonschema:"file name used to pick the grammar (e.g. index.ts or types.d.ts)"`
}

// SitesInput is the input schema for the list_specifiers tool.
type SitesInput struct {
	Code     string `json:"code"     jsonschema:"source code to scan"`
	Filename string `json:"filename" jsonschema:"file name used to pick the grammar (e.g. index.ts)"`
}

// RewriteResult is returned by rewrite_specifiers.
type RewriteResult struct {
	Code    string            `json:"code"`
	Changed bool              `json:"changed"`
	Changes []compiler.Change `json:"changes"`
}

// SitesResult is returned by list_specifiers.
type SitesResult struct {
	Language string         `json:"language"`
	Sites    []rewrite.Site `json:"sites"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleRewrite(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input RewriteInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateCodeInput(input.Code, input.Filename); err != nil {
		return errorResult(err)
	}

	mapping := s.aliases

	if len(input.Aliases) > 0 {
		compiled, err := s.compileAliases(input.Aliases)
		if err != nil {
			return errorResult(err)
		}

		mapping = compiled
	}

	if mapping == nil {
		return errorResult(ErrNoAliases)
	}

	host := compiler.NewHost(s.parser)
	host.Attach(rewrite.New(mapping).Hooks())

	out, err := host.Compile(ctx, input.Filename, []byte(input.Code))
	if err != nil {
		return errorResult(err)
	}

	changes := out.Changes
	if changes == nil {
		changes = []compiler.Change{}
	}

	return jsonResult(RewriteResult{Code: string(out.Text), Changed: out.Changed, Changes: changes})
}

func (s *Server) handleSites(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input SitesInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateCodeInput(input.Code, input.Filename); err != nil {
		return errorResult(err)
	}

	sf, err := s.parser.Parse(ctx, input.Filename, []byte(input.Code))
	if err != nil {
		return errorResult(err)
	}

	sites := rewrite.Sites(sf)
	if sites == nil {
		sites = []rewrite.Site{}
	}

	return jsonResult(SitesResult{Language: sf.Language, Sites: sites})
}

func (s *Server) compileAliases(entries []alias.Entry) (*alias.Mapping, error) {
	key, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode aliases: %w", err)
	}

	return s.mappings.GetOrCreate(string(key), func() (*alias.Mapping, error) {
		return alias.Compile(entries)
	})
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func validateCodeInput(code, filename string) error {
	if code == "" {
		return ErrEmptyCode
	}

	if filename == "" {
		return ErrEmptyFilename
	}

	if len(code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(code), MaxCodeInputBytes)
	}

	return nil
}
