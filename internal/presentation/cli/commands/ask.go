package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	domainChat "github.com/jbctechsolutions/playground/internal/domain/chat"
	"github.com/jbctechsolutions/playground/internal/presentation/cli/output"
)

// askFlags holds the flags for the ask command.
type askFlags struct {
	Model        string
	SystemPrompt string
	Temperature  float64
	TopP         float64
	MaxTokens    int
	WebSearch    bool
	Files        []string
}

var askOpts askFlags

// AskOutput is the JSON shape of an ask response.
type AskOutput struct {
	Question string                     `json:"question"`
	Result   *domainChat.DispatchResult `json:"result"`
}

// NewAskCmd creates the ask command.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question without saving a session",
		Long: `Send one message to a model and print the reply with its token usage.

Nothing is persisted. Use 'playground chat' for a saved conversation.

Examples:
  # Ask the default model
  playground ask "What is a goroutine?"

  # Ask YandexGPT with web search results folded in
  playground ask --model yandexgpt --web-search "Latest Go release"

  # Include a file preview
  playground ask --file main.go "Review this code"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringVarP(&askOpts.Model, "model", "m", "", "model to use (default: first model of the default provider)")
	cmd.Flags().StringVar(&askOpts.SystemPrompt, "system", "", "system prompt")
	cmd.Flags().Float64VarP(&askOpts.Temperature, "temperature", "t", domainChat.DefaultTemperature, "sampling temperature")
	cmd.Flags().Float64Var(&askOpts.TopP, "top-p", domainChat.DefaultTopP, "nucleus sampling probability")
	cmd.Flags().IntVar(&askOpts.MaxTokens, "max-tokens", domainChat.DefaultMaxTokens, "maximum tokens in the reply")
	cmd.Flags().BoolVarP(&askOpts.WebSearch, "web-search", "w", false, "fold web search results into the prompt")
	cmd.Flags().StringArrayVarP(&askOpts.Files, "file", "f", nil, "attach a file preview (repeatable)")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	container, err := requireContainer()
	if err != nil {
		return err
	}

	files := make([]domainChat.FilePreview, 0, len(askOpts.Files))
	for _, path := range askOpts.Files {
		preview, _, err := readFilePreview(path)
		if err != nil {
			return err
		}
		files = append(files, preview)
	}

	params := domainChat.Parameters{
		Model:       askOpts.Model,
		Temperature: askOpts.Temperature,
		TopP:        askOpts.TopP,
		MaxTokens:   askOpts.MaxTokens,
		WebSearch:   askOpts.WebSearch,
	}

	formatter := GetFormatter()

	var spinner *output.Spinner
	if formatter.Format() != output.FormatJSON {
		spinner = output.NewSpinner("Waiting for reply...")
		spinner.Start()
	}

	result, err := container.ChatService().Ask(appContext(), params, askOpts.SystemPrompt, question, files)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(AskOutput{Question: question, Result: result})
	}

	output.NewUsageRenderer(formatter).RenderReply(result)
	return nil
}
