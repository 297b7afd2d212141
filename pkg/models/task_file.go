package models

// TaskItem is a single checklist entry in a task file.
type TaskItem struct {
	Text string `json:"text" validate:"required"`
	Done bool   `json:"done"`
}

// TaskFile is the durable work plan a run writes before fixes are
// applied. While the owning run is open the file only grows; items are
// checked off, never removed.
type TaskFile struct {
	Name               string     `json:"name"      validate:"required"`
	Type               string     `json:"type"      validate:"required"`
	Objective          string     `json:"objective" validate:"required"`
	TargetFiles        []string   `json:"target_files,omitempty"`
	Tasks              []TaskItem `json:"tasks,omitempty"`
	AcceptanceCriteria []string   `json:"acceptance_criteria,omitempty"`
}

// OpenTaskCount returns how many checklist entries remain unchecked.
func (t *TaskFile) OpenTaskCount() int {
	open := 0

	for _, task := range t.Tasks {
		if !task.Done {
			open++
		}
	}

	return open
}

// Completed reports whether every checklist entry is checked.
func (t *TaskFile) Completed() bool {
	return t.OpenTaskCount() == 0
}
