package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/models"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// Repository indexes compiled artifacts under a directory. Foundry
// (out/Foo.sol/Foo.json) and Hardhat (artifacts/contracts/Foo.sol/Foo.json)
// layouts are both understood.
type Repository struct {
	root   string
	files  map[string][]string // key: contract name, value: artifact paths
	byPath map[string]string   // key: "dir/Foo.sol:Foo"
	cache  map[string]*models.Artifact
	log    *slog.Logger
	mu     sync.RWMutex
	index  sync.Once
	err    error
}

// NewRepository creates a repository rooted at dir
func NewRepository(dir string, log *slog.Logger) *Repository {
	return &Repository{
		root:   dir,
		files:  make(map[string][]string),
		byPath: make(map[string]string),
		cache:  make(map[string]*models.Artifact),
		log:    log.With("component", "artifacts"),
	}
}

// Index walks the artifact directory once
func (r *Repository) Index() error {
	r.index.Do(func() {
		r.err = r.walk()
	})
	return r.err
}

func (r *Repository) walk() error {
	info, err := os.Stat(r.root)
	if err != nil {
		return &domain.ConfigError{Field: "artifacts", Err: err}
	}
	if !info.IsDir() {
		return &domain.ConfigError{Field: "artifacts", Err: fmt.Errorf("%s is not a directory", r.root)}
	}

	return filepath.WalkDir(r.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if filepath.Ext(name) != ".json" || strings.HasSuffix(name, ".dbg.json") {
			return nil
		}

		contract := strings.TrimSuffix(name, ".json")
		r.files[contract] = append(r.files[contract], path)
		r.byPath[r.source(path)+":"+contract] = path
		return nil
	})
}

// GetArtifact loads the artifact for key, which is either a contract name or
// "Source.sol:Name" when the name alone is ambiguous.
func (r *Repository) GetArtifact(ctx context.Context, key string) (*models.Artifact, error) {
	if err := r.Index(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	path, err := r.locate(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	var file models.ArtifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	name := key
	if i := strings.LastIndex(key, ":"); i >= 0 {
		name = key[i+1:]
	}
	artifact, err := file.Decode(name, path)
	if err != nil {
		return nil, err
	}

	r.log.Debug("loaded artifact", "key", key, "path", path, "bytecode", len(artifact.Bytecode))

	r.mu.Lock()
	r.cache[key] = artifact
	r.mu.Unlock()
	return artifact, nil
}

func (r *Repository) locate(key string) (string, error) {
	if strings.Contains(key, ":") {
		if path, ok := r.byPath[key]; ok {
			return path, nil
		}
		return "", fmt.Errorf("artifact %s: %w", key, domain.ErrNotFound)
	}

	paths := r.files[key]
	switch len(paths) {
	case 0:
		return "", fmt.Errorf("artifact %s: %w", key, domain.ErrNotFound)
	case 1:
		return paths[0], nil
	}
	candidates := lo.Map(paths, func(p string, _ int) string {
		return r.source(p) + ":" + key
	})
	sort.Strings(candidates)
	return "", fmt.Errorf("artifact %s is ambiguous, use one of: %s", key, strings.Join(candidates, ", "))
}

// source is the artifact's directory relative to the root, e.g. "test/ERC20.sol"
func (r *Repository) source(path string) string {
	rel, err := filepath.Rel(r.root, filepath.Dir(path))
	if err != nil {
		return filepath.Base(filepath.Dir(path))
	}
	return filepath.ToSlash(rel)
}

// Names returns every indexed contract name, sorted
func (r *Repository) Names() ([]string, error) {
	if err := r.Index(); err != nil {
		return nil, err
	}
	names := lo.Keys(r.files)
	sort.Strings(names)
	return names, nil
}

// Ensure the adapter implements the interface
var _ usecase.ArtifactRepository = (*Repository)(nil)
