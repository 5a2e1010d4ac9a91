package content

import (
	"strings"
	"testing"
)

func TestSanitizerStripsScripts(t *testing.T) {
	t.Parallel()

	sanitize := NewSanitizer()
	got := sanitize(`<p class="lead" id="top">Hi<script>alert(1)</script></p>`)
	if strings.Contains(got, "<script") {
		t.Fatalf("script survived: %q", got)
	}
	if !strings.Contains(got, `class="lead"`) || !strings.Contains(got, `id="top"`) {
		t.Fatalf("expected class and id to survive: %q", got)
	}
}
