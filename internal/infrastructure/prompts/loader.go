package prompts

import (
	_ "embed"
)

//go:embed detect_elements.txt
var DetectElementsPrompt string
