package content

import "github.com/microcosm-cc/bluemonday"

// NewSanitizer returns a body sanitizer for LoadOptions.Sanitize.
//
// Bodies keep user-generated-content markup plus class and id attributes so
// page styles and in-page anchors survive.
func NewSanitizer() func(string) string {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class", "id").Globally()
	return policy.Sanitize
}
