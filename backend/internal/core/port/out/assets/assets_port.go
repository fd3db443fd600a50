package assets

import (
	"orrery/backend/internal/core/port/out/scene"
)

// Provider retrieves scene assets from bundles. Failures are not retried.
type Provider interface {
	// LoadAsset returns the template stored at path inside bundle, resolved for owner
	LoadAsset(owner, bundle, path string) (*scene.AssetNode, error)
}
