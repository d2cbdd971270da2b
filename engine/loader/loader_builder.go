package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithAsset pre-populates the cache, so Load and Get return asset for key without reading anything.
//
// Parameters:
//   - key: the path or name the asset is cached under
//   - asset: the asset
//
// Returns:
//   - LoaderBuilderOption: a function that applies the asset option to a loader
func WithAsset(key string, asset *Asset) LoaderBuilderOption {
	return func(l *loader) {
		l.cache[key] = asset
	}
}
