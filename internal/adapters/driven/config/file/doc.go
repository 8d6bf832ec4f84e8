// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.lecturelens.
//
// Adapters:
//   - ConfigStore: TOML configuration (config.toml)
//   - PromptStore: user-editable prompt templates (prompts/*.txt)
package file
