package taskfile

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ordinoproj/ordino/pkg/models"
)

// FileStore implements Store on the local file system.
type FileStore struct {
	root string // File system root for storing task files
}

// NewFileStore creates a file-backed task-file store rooted at the
// given directory.
func NewFileStore(root string) *FileStore {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &FileStore{root: cleanRoot}
}

// Create writes the task file at the next free sequence path for its
// category and today's date. The file is created exclusively, so two
// racing runs can never claim the same path; the loser gets
// ErrTaskFileExists.
func (s *FileStore) Create(ctx context.Context, file *models.TaskFile) (string, error) {
	sequence, err := s.NextSequence(ctx, file.Type)
	if err != nil {
		return "", err
	}

	relPath := path.Join(s.dirFor(file.Type), fmt.Sprintf("task-%02d.md", sequence))

	if err := s.CreateAt(ctx, relPath, file); err != nil {
		return "", err
	}

	return relPath, nil
}

// CreateAt writes the task file at an exact path, failing with
// ErrTaskFileExists when the path is occupied.
func (s *FileStore) CreateAt(_ context.Context, relPath string, file *models.TaskFile) error {
	document, err := RenderDocument(file)
	if err != nil {
		return NewError("Create", relPath, err)
	}

	absPath := filepath.Clean(filepath.Join(s.root, relPath))

	if err := os.MkdirAll(filepath.Dir(absPath), 0750); err != nil {
		return NewError("Create", relPath, fmt.Errorf("failed to create task file directory: %w", err))
	}

	handle, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return NewError("Create", relPath, ErrTaskFileExists)
		}

		return NewError("Create", relPath, err)
	}

	_, writeErr := handle.WriteString(document)

	closeErr := handle.Close()
	if writeErr != nil {
		return NewError("Create", relPath, writeErr)
	}

	if closeErr != nil {
		return NewError("Create", relPath, closeErr)
	}

	return nil
}

// Read loads and parses the task file at the given path.
func (s *FileStore) Read(_ context.Context, relPath string) (*models.TaskFile, error) {
	absPath := filepath.Clean(filepath.Join(s.root, relPath))

	body, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewError("Read", relPath, ErrTaskFileNotFound)
		}

		return nil, NewError("Read", relPath, err)
	}

	file, err := ParseDocument(body)
	if err != nil {
		return nil, NewError("Read", relPath, err)
	}

	return file, nil
}

// MarkTaskDone checks off one checklist entry, idempotently.
func (s *FileStore) MarkTaskDone(ctx context.Context, relPath string, taskIndex int) error {
	file, err := s.Read(ctx, relPath)
	if err != nil {
		return err
	}

	if taskIndex < 0 || taskIndex >= len(file.Tasks) {
		return NewError("MarkTaskDone", relPath, fmt.Errorf("%w: index %d of %d tasks", ErrTaskIndexOutOfRange, taskIndex, len(file.Tasks)))
	}

	if file.Tasks[taskIndex].Done {
		return nil
	}

	file.Tasks[taskIndex].Done = true

	return s.rewrite("MarkTaskDone", relPath, file)
}

// AppendTasks grows the checklist of an existing task file.
func (s *FileStore) AppendTasks(ctx context.Context, relPath string, items ...models.TaskItem) error {
	if len(items) == 0 {
		return nil
	}

	file, err := s.Read(ctx, relPath)
	if err != nil {
		return err
	}

	file.Tasks = append(file.Tasks, items...)

	return s.rewrite("AppendTasks", relPath, file)
}

// AppendTargets grows the target file list of an existing task file.
func (s *FileStore) AppendTargets(ctx context.Context, relPath string, files ...string) error {
	if len(files) == 0 {
		return nil
	}

	file, err := s.Read(ctx, relPath)
	if err != nil {
		return err
	}

	file.TargetFiles = append(file.TargetFiles, files...)

	return s.rewrite("AppendTargets", relPath, file)
}

// NextSequence returns the next free task number for a category under
// today's date directory. An absent directory starts at 1.
func (s *FileStore) NextSequence(_ context.Context, category string) (int, error) {
	dir := s.dirFor(category)
	root := os.DirFS(s.root)

	matches, err := fs.Glob(root, path.Join(dir, "task-*.md"))
	if err != nil {
		return 0, NewError("NextSequence", dir, err)
	}

	highest := 0

	for _, match := range matches {
		base := strings.TrimSuffix(path.Base(match), ".md")

		number, err := strconv.Atoi(strings.TrimPrefix(base, "task-"))
		if err != nil {
			continue
		}

		if number > highest {
			highest = number
		}
	}

	return highest + 1, nil
}

func (s *FileStore) rewrite(op, relPath string, file *models.TaskFile) error {
	document, err := RenderDocument(file)
	if err != nil {
		return NewError(op, relPath, err)
	}

	absPath := filepath.Clean(filepath.Join(s.root, relPath))

	if err := os.WriteFile(absPath, []byte(document), 0600); err != nil {
		return NewError(op, relPath, err)
	}

	return nil
}

func (s *FileStore) dirFor(category string) string {
	return fmt.Sprintf("%s-%s", category, time.Now().UTC().Format("2006-01-02"))
}
