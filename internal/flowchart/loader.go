package flowchart

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/ak/brewlab/internal/optimizer"
	"github.com/ak/brewlab/internal/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var workflowExtensions = []string{".yaml", ".yml", ".json"}

// Loader is the process-wide cache of parsed workflow definitions. Entries
// are populated on first request and replaced only by Reload or ReloadAll.
// Cached definitions are immutable, so readers never see a partial update.
type Loader struct {
	sources []fs.FS // searched in order, first match wins

	mu    sync.RWMutex
	cache map[string]*Definition
	group singleflight.Group

	log *logger.Logger
}

// NewLoader creates a loader over the given sources. An override directory
// should be listed before the embedded defaults.
func NewLoader(log *logger.Logger, sources ...fs.FS) *Loader {
	if log == nil {
		log = logger.Global()
	}
	var nonNil []fs.FS
	for _, s := range sources {
		if s != nil {
			nonNil = append(nonNil, s)
		}
	}
	return &Loader{
		sources: nonNil,
		cache:   make(map[string]*Definition),
		log:     log.WithComponent("workflow_loader"),
	}
}

// Load returns the named workflow, reading and validating it on first use.
// Concurrent first loads of one name share a single read.
func (l *Loader) Load(name string) (*Definition, error) {
	l.mu.RLock()
	def, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return def, nil
	}

	v, err, _ := l.group.Do(name, func() (any, error) {
		l.mu.RLock()
		cached, ok := l.cache[name]
		l.mu.RUnlock()
		if ok {
			return cached, nil
		}
		def, err := l.read(name)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[name] = def
		l.mu.Unlock()
		return def, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Definition), nil
}

// Reload re-reads one workflow and swaps it into the cache. On error the
// previous entry is kept.
func (l *Loader) Reload(name string) (*Definition, error) {
	def, err := l.read(name)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.cache[name] = def
	l.mu.Unlock()
	l.log.Info("Workflow reloaded", zap.String("workflow", name), zap.String("version", def.Version))
	return def, nil
}

// ReloadAll drops the cache and re-reads every available workflow. All
// failures are returned joined; workflows that loaded are kept.
func (l *Loader) ReloadAll() error {
	names, err := l.List()
	if err != nil {
		return err
	}
	fresh := make(map[string]*Definition, len(names))
	var errs []error
	for _, name := range names {
		def, err := l.read(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fresh[name] = def
	}
	l.mu.Lock()
	l.cache = fresh
	l.mu.Unlock()
	l.log.Info("Workflows reloaded", zap.Int("loaded", len(fresh)), zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}

// List returns the names of every workflow the sources provide, sorted
func (l *Loader) List() ([]string, error) {
	seen := map[string]bool{}
	for _, src := range l.sources {
		entries, err := fs.ReadDir(src, ".")
		if err != nil {
			return nil, fmt.Errorf("failed to list workflows: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := path.Ext(entry.Name())
			if !isWorkflowExt(ext) {
				continue
			}
			seen[strings.TrimSuffix(entry.Name(), ext)] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) read(name string) (*Definition, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("%w: %q", ErrWorkflowNotFound, name)
	}
	for _, src := range l.sources {
		for _, ext := range workflowExtensions {
			data, err := fs.ReadFile(src, name+ext)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read workflow %s: %w", name, err)
			}
			def, err := parseAndValidate(data)
			if err != nil {
				return nil, err
			}
			for _, w := range Validate(def).Warnings {
				l.log.Warn("Workflow warning", zap.String("workflow", name), zap.String("warning", w))
			}
			return def, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, name)
}

func isWorkflowExt(ext string) bool {
	for _, e := range workflowExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// parseAndValidate parses a definition and rejects it unless Validate is clean
func parseAndValidate(data []byte) (*Definition, error) {
	def, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if v := Validate(def); !v.Valid {
		return nil, &ConfigError{Workflow: def.WorkflowName, Problems: v.Errors}
	}
	return def, nil
}

// LoadFile reads and validates a single workflow file
func LoadFile(filename string) (*Definition, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}
	return parseAndValidate(data)
}

// NewEngineFromFile loads a workflow file and builds its engine
func NewEngineFromFile(filename string, deps optimizer.Dependencies, opts ...Option) (*Engine, error) {
	def, err := LoadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewEngine(def, deps, opts...)
}
