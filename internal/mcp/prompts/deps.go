// Package prompts contains MCP prompt implementations for schemafill.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	AddSample bool
	AddItem   bool
}
