package template

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
)

// ExecuteSqlTemplate reads a SQL template file, executes it with the given
// params and returns the rendered query.
func ExecuteSqlTemplate(templatePath string, params map[string]any) (string, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template file: %w", err)
	}

	tmpl, err := template.New("sql").Parse(string(content))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", err
	}

	return buf.String(), nil
}
