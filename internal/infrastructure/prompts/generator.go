package prompts

import (
	"bytes"
	"text/template"

	"vision-agent/internal/domain/entity"
)

const defaultMaxElements = 50

type DetectPromptData struct {
	Width       int
	Height      int
	Types       []entity.ElementType
	MaxElements int
	Hint        string
}

func NewDetectPromptData(capture *entity.Capture, hint string) DetectPromptData {
	data := DetectPromptData{
		Types:       entity.ElementTypes(),
		MaxElements: defaultMaxElements,
		Hint:        hint,
	}
	if capture != nil {
		data.Width, data.Height = capture.Width, capture.Height
	}
	return data
}

func GenerateDetectPrompt(baseTemplate string, data DetectPromptData) (string, error) {
	if data.MaxElements <= 0 {
		data.MaxElements = defaultMaxElements
	}
	if len(data.Types) == 0 {
		data.Types = entity.ElementTypes()
	}

	tmpl, err := template.New("detect").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
