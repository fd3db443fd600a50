// Package configfile reads body documents from a directory and hands them to the load port.
package configfile

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"orrery/backend/internal/core/domain/entity"
	"orrery/backend/internal/core/port/in/bodyloading"
)

// Loader decodes YAML body documents, one body per file
type Loader struct {
	owner  string
	logger *log.Logger
}

func NewLoader(owner string, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{owner: owner, logger: logger}
}

// Decode parses a single document. Unknown fields are rejected.
func (l *Loader) Decode(data []byte) (*entity.BodyConfig, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	cfg := &entity.BodyConfig{}
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("body has no name")
	}
	return cfg, nil
}

// LoadDir reads every .yaml and .yml file below dir in lexical order.
// A malformed file is logged and skipped; only an unreadable directory is an error.
func (l *Loader) LoadDir(dir string) ([]*entity.BodyDescriptor, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !d.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read planets directory: %w", err)
	}
	sort.Strings(files)

	descriptors := make([]*entity.BodyDescriptor, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			l.logger.Printf("[ConfigLoader] ERROR: Couldn't read %s: %v", file, err)
			continue
		}
		cfg, err := l.Decode(data)
		if err != nil {
			l.logger.Printf("[ConfigLoader] ERROR: Couldn't load %s: %v", file, err)
			continue
		}
		descriptors = append(descriptors, entity.NewBodyDescriptor(cfg, l.owner))
	}

	l.logger.Printf("[ConfigLoader] Loaded %d of %d body files from %s", len(descriptors), len(files), dir)
	return descriptors, nil
}

// ScheduleDir loads dir and schedules every body on port
func (l *Loader) ScheduleDir(dir string, port bodyloading.LoadPort) (int, error) {
	descriptors, err := l.LoadDir(dir)
	if err != nil {
		return 0, err
	}
	port.ScheduleLoad(descriptors...)
	return len(descriptors), nil
}
