// Package assets loads scene templates from bundle directories on disk.
//
// A bundle is a directory below the provider root; an asset is a YAML document
// <root>/<bundle>/<path>.yaml describing a scene.AssetNode tree.
package assets

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"orrery/backend/internal/core/port/out/assets"
	"orrery/backend/internal/core/port/out/scene"
	apperrors "orrery/backend/internal/shared/errors"
)

// Provider is a file system asset provider. Loaded bundles and templates are cached;
// failures are not.
type Provider struct {
	root   string
	logger *log.Logger

	mu        sync.RWMutex
	bundles   map[string]string // "owner.bundle" -> directory
	templates map[string]*scene.AssetNode
}

var _ assets.Provider = (*Provider)(nil)

func NewProvider(root string, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.Default()
	}
	return &Provider{
		root:      root,
		logger:    logger,
		bundles:   make(map[string]string),
		templates: make(map[string]*scene.AssetNode),
	}
}

// LoadAsset returns the template at path inside bundle
func (p *Provider) LoadAsset(owner, bundle, path string) (*scene.AssetNode, error) {
	dir, err := p.loadBundle(owner, bundle)
	if err != nil {
		return nil, apperrors.AssetLoad(bundle, path, err)
	}

	file := filepath.Join(dir, filepath.FromSlash(strings.TrimSuffix(path, ".yaml"))+".yaml")
	if !strings.HasPrefix(file, dir+string(filepath.Separator)) {
		return nil, apperrors.AssetLoad(bundle, path, fmt.Errorf("path escapes the bundle"))
	}

	p.mu.RLock()
	cached, ok := p.templates[file]
	p.mu.RUnlock()
	if ok {
		return cached, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, apperrors.AssetLoad(bundle, path, err)
	}
	node := &scene.AssetNode{}
	if err := yaml.Unmarshal(data, node); err != nil {
		return nil, apperrors.AssetLoad(bundle, path, fmt.Errorf("decode: %w", err))
	}
	if node.Name == "" {
		node.Name = filepath.Base(strings.TrimSuffix(path, ".yaml"))
	}

	p.mu.Lock()
	p.templates[file] = node
	p.mu.Unlock()
	return node, nil
}

// loadBundle resolves a bundle once per owner
func (p *Provider) loadBundle(owner, bundle string) (string, error) {
	key := owner + "." + bundle

	p.mu.RLock()
	dir, ok := p.bundles[key]
	p.mu.RUnlock()
	if ok {
		return dir, nil
	}

	if bundle == "" || strings.ContainsAny(bundle, `/\`) || bundle == ".." {
		return "", fmt.Errorf("invalid bundle name %q", bundle)
	}
	dir = filepath.Join(p.root, bundle)
	info, err := os.Stat(dir)
	if err != nil {
		p.logger.Printf("[Assets] ERROR: Couldn't load bundle %s for %s: %v", bundle, owner, err)
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("bundle %s is not a directory", bundle)
	}

	p.mu.Lock()
	p.bundles[key] = dir
	p.mu.Unlock()
	p.logger.Printf("[Assets] Loaded bundle %s", key)
	return dir, nil
}

// Bundles is the number of cached bundles
func (p *Provider) Bundles() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.bundles)
}
