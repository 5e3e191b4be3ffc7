// Playground CLI entry point
//
// Playground is a multi-provider LLM chat playground. It routes each model
// to GigaChat, YandexGPT or Perplexity, optionally folds web search results
// into the prompt, and keeps per-message token and cost accounting.
package main

import "github.com/jbctechsolutions/playground/internal/presentation/cli/commands"

func main() {
	commands.Execute()
}
