package aliases

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of the aliases file
type Loader struct {
	filePath string
}

// NewLoader creates a new aliases loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the aliases file
func (l *Loader) Load() (*File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read aliases file: %w", err)
	}

	// Expand ${VAR} references so rules can name install roots portably
	data = expandVariables(data)

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse aliases yaml: %w", err)
	}

	return &file, nil
}

var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_()]*)\}`)

// expandVariables replaces ${NAME} with the environment value.
// Example: ${ProgramFiles}\Git\git-bash.exe -> C:\Program Files\Git\git-bash.exe
func expandVariables(data []byte) []byte {
	return variablePattern.ReplaceAllFunc(data, func(m []byte) []byte {
		name := variablePattern.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}
