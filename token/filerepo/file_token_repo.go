// Package filerepo persists the token pair in a YAML file so that it survives restarts
package filerepo

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-event-portal/token"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the file created under the data folder
const DefaultFileName = "tokens.yaml"

var _ token.Repo = (*FileTokenRepo)(nil)

// FileTokenRepo stores key/value pairs in a single YAML document.
// Writes go to a temp file that is renamed over the original.
type FileTokenRepo struct {
	path string
	lock sync.Mutex
}

// New creates a repo at folder/DefaultFileName, creating the folder if needed
func New(folder string) (*FileTokenRepo, error) {
	if folder == "" {
		return nil, errors.New("[filerepo.New] folder is required")
	}
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[filerepo.New] create folder")
	}
	return &FileTokenRepo{path: filepath.Join(folder, DefaultFileName)}, nil
}

// Path of the backing file
func (r *FileTokenRepo) Path() string {
	return r.path
}

func (r *FileTokenRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	values, err := r.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (r *FileTokenRepo) Set(_ context.Context, key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	values, err := r.read()
	if err != nil {
		return err
	}
	values[key] = value
	return r.write(values)
}

func (r *FileTokenRepo) Remove(_ context.Context, key string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	values, err := r.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return r.write(values)
}

func (r *FileTokenRepo) read() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileTokenRepo.read]")
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "[FileTokenRepo.read] decode %s", r.path)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

func (r *FileTokenRepo) write(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "[FileTokenRepo.write] encode")
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".tokens-*.yaml")
	if err != nil {
		return errors.Wrap(err, "[FileTokenRepo.write] create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileTokenRepo.write]")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[FileTokenRepo.write] close")
	}
	return errors.Wrap(os.Rename(tmp.Name(), r.path), "[FileTokenRepo.write] rename")
}
