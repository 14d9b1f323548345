// Package types holds result types shared by the verifier, the runner and the
// MCP tools.
package types

// ValidationResult is the outcome of validating one completed document.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}
