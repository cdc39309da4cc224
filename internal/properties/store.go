package properties

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	propertyNameRequiredMessageConstant    = "property name must be provided"
	propertiesPathRequiredMessageConstant  = "properties file path must be provided"
	propertiesReadErrorTemplateConstant    = "failed to read properties file %s: %w"
	propertiesParseErrorTemplateConstant   = "failed to parse properties file %s: %w"
	propertiesEncodeErrorTemplateConstant  = "failed to encode properties: %w"
	propertiesWriteErrorTemplateConstant   = "failed to write properties file %s: %w"
	temporaryFilePatternConstant           = ".properties-*.tmp"
	propertiesFilePermissionsConstant      = 0o644
	propertiesDirectoryPermissionsConstant = 0o755
)

// ErrPropertyNameRequired indicates an empty property name.
var ErrPropertyNameRequired = errors.New(propertyNameRequiredMessageConstant)

// ErrPropertiesPathRequired indicates an empty properties file path.
var ErrPropertiesPathRequired = errors.New(propertiesPathRequiredMessageConstant)

// Recorder stores a named build property together with the step that produced it.
type Recorder interface {
	SetProperty(name string, value string, source string) error
}

// Property is a recorded value and its source.
type Property struct {
	Value  string `yaml:"value"`
	Source string `yaml:"source"`
}

// MemoryStore is a Recorder kept in memory. It is safe for concurrent use.
type MemoryStore struct {
	mutex      sync.RWMutex
	properties map[string]Property
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{properties: map[string]Property{}}
}

// SetProperty implements Recorder.
func (store *MemoryStore) SetProperty(name string, value string, source string) error {
	trimmedName := strings.TrimSpace(name)
	if len(trimmedName) == 0 {
		return ErrPropertyNameRequired
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.properties[trimmedName] = Property{Value: value, Source: source}
	return nil
}

// Property returns the named property.
func (store *MemoryStore) Property(name string) (Property, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	property, exists := store.properties[strings.TrimSpace(name)]
	return property, exists
}

// Names lists recorded property names in sorted order.
func (store *MemoryStore) Names() []string {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	names := make([]string, 0, len(store.properties))
	for name := range store.properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FileStore is a Recorder persisting properties to a YAML document.
// Properties already present in the file are preserved.
type FileStore struct {
	mutex sync.Mutex
	path  string
}

// NewFileStore binds a FileStore to path. The file need not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return nil, ErrPropertiesPathRequired
	}
	return &FileStore{path: trimmedPath}, nil
}

// Path reports the backing file.
func (store *FileStore) Path() string {
	return store.path
}

// Load reads all properties from the backing file. A missing file yields an empty map.
func (store *FileStore) Load() (map[string]Property, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return store.load()
}

// SetProperty implements Recorder by rewriting the backing file.
func (store *FileStore) SetProperty(name string, value string, source string) error {
	trimmedName := strings.TrimSpace(name)
	if len(trimmedName) == 0 {
		return ErrPropertyNameRequired
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()

	existingProperties, loadError := store.load()
	if loadError != nil {
		return loadError
	}
	existingProperties[trimmedName] = Property{Value: value, Source: source}

	return store.write(existingProperties)
}

func (store *FileStore) load() (map[string]Property, error) {
	content, readError := os.ReadFile(store.path)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return map[string]Property{}, nil
		}
		return nil, fmt.Errorf(propertiesReadErrorTemplateConstant, store.path, readError)
	}

	loadedProperties := map[string]Property{}
	if unmarshalError := yaml.Unmarshal(content, &loadedProperties); unmarshalError != nil {
		return nil, fmt.Errorf(propertiesParseErrorTemplateConstant, store.path, unmarshalError)
	}
	if loadedProperties == nil {
		loadedProperties = map[string]Property{}
	}
	return loadedProperties, nil
}

// write replaces the file through a temporary sibling so readers never observe a partial document.
func (store *FileStore) write(propertiesToWrite map[string]Property) error {
	content, marshalError := yaml.Marshal(propertiesToWrite)
	if marshalError != nil {
		return fmt.Errorf(propertiesEncodeErrorTemplateConstant, marshalError)
	}

	directory := filepath.Dir(store.path)
	if mkdirError := os.MkdirAll(directory, propertiesDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(propertiesWriteErrorTemplateConstant, store.path, mkdirError)
	}

	temporaryFile, createError := os.CreateTemp(directory, temporaryFilePatternConstant)
	if createError != nil {
		return fmt.Errorf(propertiesWriteErrorTemplateConstant, store.path, createError)
	}
	temporaryPath := temporaryFile.Name()
	defer os.Remove(temporaryPath)

	if _, writeError := temporaryFile.Write(content); writeError != nil {
		temporaryFile.Close()
		return fmt.Errorf(propertiesWriteErrorTemplateConstant, store.path, writeError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		return fmt.Errorf(propertiesWriteErrorTemplateConstant, store.path, closeError)
	}
	if chmodError := os.Chmod(temporaryPath, propertiesFilePermissionsConstant); chmodError != nil {
		return fmt.Errorf(propertiesWriteErrorTemplateConstant, store.path, chmodError)
	}
	if renameError := os.Rename(temporaryPath, store.path); renameError != nil {
		return fmt.Errorf(propertiesWriteErrorTemplateConstant, store.path, renameError)
	}
	return nil
}
