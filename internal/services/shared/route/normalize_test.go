package route

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "", want: "/"},
		{raw: "/", want: "/"},
		{raw: "//", want: "/"},
		{raw: "x", want: "/x"},
		{raw: "/x", want: "/x"},
		{raw: "/x/", want: "/x"},
		{raw: "/x///", want: "/x"},
		{raw: "  /docs/intro/ ", want: "/docs/intro"},
		{raw: "docs/intro", want: "/docs/intro"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.raw, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tc.raw); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestRedirectTrailingSlash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		wantOK   bool
		wantCode int
		wantLoc  string
	}{
		{
			name:     "no trailing slash",
			path:     "/about",
			wantOK:   false,
			wantCode: 200,
		},
		{
			name:     "trailing slash",
			path:     "/about/",
			wantOK:   true,
			wantCode: http.StatusMovedPermanently,
			wantLoc:  "/about",
		},
		{
			name:     "nested trailing slash keeps query",
			path:     "/docs/intro/?tab=2",
			wantOK:   true,
			wantCode: http.StatusMovedPermanently,
			wantLoc:  "/docs/intro?tab=2",
		},
		{
			name:     "root path",
			path:     "/",
			wantOK:   false,
			wantCode: 200,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()
			got := RedirectTrailingSlash(rec, req)
			if got != tc.wantOK {
				t.Fatalf("RedirectTrailingSlash() = %t, want %t", got, tc.wantOK)
			}
			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			if got {
				if loc := rec.Header().Get("Location"); loc != tc.wantLoc {
					t.Fatalf("location = %q, want %q", loc, tc.wantLoc)
				}
			}
		})
	}
}
