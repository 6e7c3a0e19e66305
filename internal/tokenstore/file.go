package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// File — хранилище в JSON-файле. Каждое изменение переписывает файл
// атомарно (tmp + rename), права 0600: в файле лежат секреты.
// Отсутствующий файл трактуется как пустое хранилище.
type File struct {
	mu     sync.Mutex
	path   string
	closed bool
}

// NewFile создаёт хранилище по пути path, создавая каталог при необходимости.
func NewFile(path string) (*File, error) {
	const op = "tokenstore.NewFile"

	if path == "" {
		return nil, fmt.Errorf("%s: empty path", op)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%s: mkdir: %w", op, err)
	}

	return &File{path: path}, nil
}

// Path — путь к файлу хранилища.
func (f *File) Path() string { return f.path }

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return "", false, ErrClosed
	}

	data, err := f.load()
	if err != nil {
		return "", false, err
	}

	v, ok := data[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	data, err := f.load()
	if err != nil {
		return err
	}

	data[key] = value
	return f.save(data)
}

func (f *File) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	data, err := f.load()
	if err != nil {
		return err
	}

	changed := false
	for _, k := range keys {
		if _, ok := data[k]; ok {
			delete(data, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}

	return f.save(data)
}

func (f *File) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	return nil
}

func (f *File) load() (map[string]string, error) {
	const op = "tokenstore.File.load"

	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string, 2), nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data := make(map[string]string, 2)
	if len(b) == 0 {
		return data, nil
	}

	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("%s: decode %q: %w", op, f.path, err)
	}

	return data, nil
}

func (f *File) save(data map[string]string) error {
	const op = "tokenstore.File.save"

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("%s: write tmp: %w", op, err)
	}

	if err := os.Rename(tmp, f.path); err == nil {
		return nil
	}

	defer os.Remove(tmp)

	if runtime.GOOS == "windows" {
		_ = os.Remove(f.path)
	}

	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("%s: rename: %w", op, err)
	}

	return nil
}
