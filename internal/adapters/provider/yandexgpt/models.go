package yandexgpt

import (
	"fmt"
	"strings"
)

// modelAliases maps playground model names onto Yandex model paths.
var modelAliases = map[string]string{
	"default":        "yandexgpt-lite/latest",
	"yandexgpt-lite": "yandexgpt-lite/latest",
	"yandexgpt":      "yandexgpt/latest",
	"yandexgpt-pro":  "yandexgpt/latest",
}

// ResolveModel returns the model path for name. Names that already carry a
// version ("yandexgpt/rc") are used verbatim; anything else gets "/latest".
func ResolveModel(name string) string {
	if path, ok := modelAliases[name]; ok {
		return path
	}
	if strings.Contains(name, "/") {
		return name
	}
	return name + "/latest"
}

// ModelURI builds the gpt:// URI for a model in folderID.
func ModelURI(folderID, model string) string {
	return fmt.Sprintf("gpt://%s/%s", folderID, ResolveModel(model))
}

func clamp(v float64) float64 {
	return min(v, MaxSamplingValue)
}
