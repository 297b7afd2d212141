package taskfile

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/template"
)

// documentTemplate is the canonical on-disk shape of a task file. The
// parser below only accepts documents in this shape; anything else is
// reported as malformed rather than silently reinterpreted.
const documentTemplate = `# Task: {{ .Name }}

Type: {{ .Type }}
Objective: {{ .Objective }}

## Target Files

{{- range .TargetFiles }}
- {{ . }}
{{- end }}

## Tasks

{{- range .Tasks }}
- [{{ if .Done }}x{{ else }} {{ end }}] {{ .Text }}
{{- end }}

## Acceptance Criteria

{{- range .AcceptanceCriteria }}
- {{ . }}
{{- end }}
`

const (
	headerPrefix    = "# Task: "
	typePrefix      = "Type: "
	objectivePrefix = "Objective: "

	sectionTargets  = "## Target Files"
	sectionTasks    = "## Tasks"
	sectionCriteria = "## Acceptance Criteria"

	taskOpenPrefix = "- [ ] "
	taskDonePrefix = "- [x] "
	listPrefix     = "- "
)

// RenderDocument produces the checklist document for a task file.
func RenderDocument(file *models.TaskFile) (string, error) {
	return template.RenderString(documentTemplate, file)
}

// ParseDocument reads a checklist document back into a task file.
// Failures wrap ErrTaskFileParse with the offending line.
func ParseDocument(data []byte) (*models.TaskFile, error) {
	file := &models.TaskFile{}
	scanner := bufio.NewScanner(bytes.NewReader(data))

	section := ""
	sawHeader := false
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t")

		if line == "" {
			continue
		}

		if !sawHeader {
			if !strings.HasPrefix(line, headerPrefix) {
				return nil, fmt.Errorf("%w: line %d: expected %q header", ErrTaskFileParse, lineNo, headerPrefix)
			}

			file.Name = strings.TrimPrefix(line, headerPrefix)
			sawHeader = true

			continue
		}

		switch {
		case strings.HasPrefix(line, typePrefix) && section == "":
			file.Type = strings.TrimPrefix(line, typePrefix)
		case strings.HasPrefix(line, objectivePrefix) && section == "":
			file.Objective = strings.TrimPrefix(line, objectivePrefix)
		case line == sectionTargets, line == sectionTasks, line == sectionCriteria:
			section = line
		case strings.HasPrefix(line, "#"):
			return nil, fmt.Errorf("%w: line %d: unknown section %q", ErrTaskFileParse, lineNo, line)
		case section == sectionTasks:
			item, err := parseTaskItem(line, lineNo)
			if err != nil {
				return nil, err
			}

			file.Tasks = append(file.Tasks, item)
		case section == sectionTargets && strings.HasPrefix(line, listPrefix):
			file.TargetFiles = append(file.TargetFiles, strings.TrimPrefix(line, listPrefix))
		case section == sectionCriteria && strings.HasPrefix(line, listPrefix):
			file.AcceptanceCriteria = append(file.AcceptanceCriteria, strings.TrimPrefix(line, listPrefix))
		default:
			return nil, fmt.Errorf("%w: line %d: unexpected content %q", ErrTaskFileParse, lineNo, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTaskFileParse, err)
	}

	if !sawHeader {
		return nil, fmt.Errorf("%w: empty document", ErrTaskFileParse)
	}

	if file.Type == "" || file.Objective == "" {
		return nil, fmt.Errorf("%w: missing type or objective line", ErrTaskFileParse)
	}

	return file, nil
}

func parseTaskItem(line string, lineNo int) (models.TaskItem, error) {
	switch {
	case strings.HasPrefix(line, taskOpenPrefix):
		return models.TaskItem{Text: strings.TrimPrefix(line, taskOpenPrefix)}, nil
	case strings.HasPrefix(line, taskDonePrefix):
		return models.TaskItem{Text: strings.TrimPrefix(line, taskDonePrefix), Done: true}, nil
	}

	return models.TaskItem{}, fmt.Errorf("%w: line %d: malformed checklist entry %q", ErrTaskFileParse, lineNo, line)
}
