package taskfile

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ordinoproj/ordino/pkg/models"
)

// MemoryStore is an in-memory Store for tests and dry runs. It applies
// the same naming and no-overwrite rules as the file store.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]*models.TaskFile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string]*models.TaskFile)}
}

func (s *MemoryStore) Create(ctx context.Context, file *models.TaskFile) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	relPath := path.Join(memoryDirFor(file.Type), fmt.Sprintf("task-%02d.md", s.nextSequenceLocked(file.Type)))

	if _, occupied := s.files[relPath]; occupied {
		return "", NewError("Create", relPath, ErrTaskFileExists)
	}

	s.files[relPath] = copyTaskFile(file)

	return relPath, nil
}

// CreateAt writes the task file at an exact path, failing with
// ErrTaskFileExists when the path is occupied.
func (s *MemoryStore) CreateAt(_ context.Context, relPath string, file *models.TaskFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, occupied := s.files[relPath]; occupied {
		return NewError("Create", relPath, ErrTaskFileExists)
	}

	s.files[relPath] = copyTaskFile(file)

	return nil
}

func (s *MemoryStore) Read(_ context.Context, relPath string) (*models.TaskFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.files[relPath]
	if !ok {
		return nil, NewError("Read", relPath, ErrTaskFileNotFound)
	}

	return copyTaskFile(file), nil
}

func (s *MemoryStore) MarkTaskDone(_ context.Context, relPath string, taskIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[relPath]
	if !ok {
		return NewError("MarkTaskDone", relPath, ErrTaskFileNotFound)
	}

	if taskIndex < 0 || taskIndex >= len(file.Tasks) {
		return NewError("MarkTaskDone", relPath, fmt.Errorf("%w: index %d of %d tasks", ErrTaskIndexOutOfRange, taskIndex, len(file.Tasks)))
	}

	file.Tasks[taskIndex].Done = true

	return nil
}

func (s *MemoryStore) AppendTasks(_ context.Context, relPath string, items ...models.TaskItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[relPath]
	if !ok {
		return NewError("AppendTasks", relPath, ErrTaskFileNotFound)
	}

	file.Tasks = append(file.Tasks, items...)

	return nil
}

func (s *MemoryStore) AppendTargets(_ context.Context, relPath string, files ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[relPath]
	if !ok {
		return NewError("AppendTargets", relPath, ErrTaskFileNotFound)
	}

	file.TargetFiles = append(file.TargetFiles, files...)

	return nil
}

func (s *MemoryStore) nextSequenceLocked(category string) int {
	prefix := memoryDirFor(category) + "/task-"
	highest := 0

	for relPath := range s.files {
		if !strings.HasPrefix(relPath, prefix) {
			continue
		}

		base := strings.TrimSuffix(strings.TrimPrefix(relPath, prefix), ".md")

		number, err := strconv.Atoi(base)
		if err != nil {
			continue
		}

		if number > highest {
			highest = number
		}
	}

	return highest + 1
}

func memoryDirFor(category string) string {
	return fmt.Sprintf("%s-%s", category, time.Now().UTC().Format("2006-01-02"))
}

func copyTaskFile(file *models.TaskFile) *models.TaskFile {
	clone := *file
	clone.TargetFiles = append([]string(nil), file.TargetFiles...)
	clone.Tasks = append([]models.TaskItem(nil), file.Tasks...)
	clone.AcceptanceCriteria = append([]string(nil), file.AcceptanceCriteria...)

	return &clone
}
