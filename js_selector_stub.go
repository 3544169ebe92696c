//go:build !js_select

package store

// NewJSSelector is unavailable without the js_select build tag.
func NewJSSelector(opts ...JSSelectorOption) Selector {
	_ = applyJSSelectorOptions(opts)
	return nil
}

func jsSelectorAvailable() bool {
	return false
}
