package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	appProvider "github.com/jbctechsolutions/playground/internal/application/provider"
	domainProvider "github.com/jbctechsolutions/playground/internal/domain/provider"
	"github.com/jbctechsolutions/playground/internal/presentation/cli/output"
)

// ModelsOutput is the JSON shape of the models command.
type ModelsOutput struct {
	Models    domainProvider.Catalog         `json:"models"`
	Providers []appProvider.ProviderStatus   `json:"providers"`
	Default   string                         `json:"default_model"`
	Pricing   []domainProvider.ModelCostRate `json:"pricing"`
}

// NewModelsCmd creates the models command.
func NewModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List selectable models and provider status",
		Long: `List the model catalog and whether each provider has credentials.

Unconfigured providers stay selectable; messages routed to them fail with
a description of the missing credential.`,
		Args: cobra.NoArgs,
		RunE: runModels,
	}
}

func runModels(cmd *cobra.Command, args []string) error {
	container, err := requireContainer()
	if err != nil {
		return err
	}

	formatter := GetFormatter()
	out := ModelsOutput{
		Models:    container.Catalog(),
		Providers: container.ProviderInitializer().AllStatus(),
		Default:   container.DefaultModel(),
		Pricing:   container.CostCalculator().ListModels(),
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(out)
	}

	formatter.Header("Models")
	models := output.TableData{
		Columns: []output.TableColumn{
			{Header: "MODEL"},
			{Header: "PROVIDER"},
			{Header: "INPUT/1K", Align: output.AlignRight},
			{Header: "OUTPUT/1K", Align: output.AlignRight},
			{Header: "DESCRIPTION"},
		},
	}
	calc := container.CostCalculator()
	for _, m := range out.Models {
		name := m.Value
		if name == out.Default {
			name += " *"
		}
		rate := calc.Rate(m.Value)
		models.Rows = append(models.Rows, []string{
			name,
			m.Provider,
			strconv.FormatFloat(rate.InputRate, 'f', -1, 64),
			strconv.FormatFloat(rate.OutputRate, 'f', -1, 64),
			m.Description,
		})
	}
	formatter.Table(models)
	formatter.Println("")

	formatter.Header("Providers")
	for _, p := range out.Providers {
		state := formatter.Colorize("missing credentials", output.ColorYellow)
		if p.Configured {
			state = formatter.Colorize("configured", output.ColorGreen)
		}
		formatter.Item(p.Name, state+"  "+formatter.Dim(p.Endpoint))
	}

	return nil
}
