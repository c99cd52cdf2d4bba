package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                 "/",
		"/metrics":                         "/metrics",
		"/survey/surveys":                  "/survey/surveys",
		"/survey/surveys/search":           "/survey/surveys/search",
		"/survey/surveys/1999-0001":        "/survey/surveys/:id",
		"/survey/hydro/1999-0001":          "/survey/hydro/:id",
		"/survey/download/hydro/1999-0001": "/survey/download/:type/:id",
		"/vos/surveys/search":              "/vos/surveys/search",
		"/vos/surveys/search?north=-20":    "/vos/surveys/search",
		"/download/my_downloads":           "/download/my_downloads",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
