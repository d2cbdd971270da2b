package shader

import (
	"strings"
	"testing"
)

func TestParseAnnotation(t *testing.T) {
	cases := []struct {
		name     string
		line     string
		wantType AnnotationType
		provider AnnotationArg
		role     AnnotationArg
		group    int
		binding  int
	}{
		{"group", "//@oxy:group 1 0 storage_uniform camera camera", AnnotationTypeBindingGroup, AnnotationArgCamera, "", 1, 0},
		{"provider with role", "  //@oxy:provider 0 2 material normal_texture", AnnotationTypeProvider, AnnotationArgMaterial, AnnotationArgNormalTexture, 0, 2},
		{"provider without role", "//@oxy:provider 2 0 light", AnnotationTypeProvider, AnnotationArgLight, "", 2, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := parseAnnotation(c.line, 1)
			if err != nil {
				t.Fatalf("parseAnnotation\nhave %v\nwant nil", err)
			}
			if a.Type != c.wantType || a.Provider() != c.provider || a.Role() != c.role {
				t.Fatalf("annotation\nhave %v %q %q\nwant %v %q %q", a.Type, a.Provider(), a.Role(), c.wantType, c.provider, c.role)
			}
			if *a.Group != c.group || *a.Binding != c.binding {
				t.Fatalf("slot\nhave %d/%d\nwant %d/%d", *a.Group, *a.Binding, c.group, c.binding)
			}
		})
	}
}

func TestParseAnnotationIgnoresPlainLines(t *testing.T) {
	for _, line := range []string{"", "let x = 1.0;", "// just a comment", "@group(0) @binding(0) var t: texture_2d<f32>;"} {
		a, err := parseAnnotation(line, 1)
		if a != nil || err != nil {
			t.Errorf("parseAnnotation(%q)\nhave %v, %v\nwant nil, nil", line, a, err)
		}
	}
}

func TestParseAnnotationErrors(t *testing.T) {
	cases := map[string]string{
		"//@oxy:":                                      "empty",
		"//@oxy:bogus 1":                               "unknown @oxy annotation type",
		"//@oxy:include":                               "exactly one",
		"//@oxy:include shadow":                        "unknown struct type",
		"//@oxy:group 1 0 storage_uniform camera":      "takes group",
		"//@oxy:group x 0 storage_uniform camera camera": "invalid group",
		"//@oxy:group 1 -1 storage_uniform camera camera": "invalid binding",
		"//@oxy:group 1 0 workgroup camera camera":      "unknown address space",
		"//@oxy:provider 0 0 shadow":                    "unknown provider identity",
		"//@oxy:provider 0 0 material albedo":           "unknown binding role",
	}
	for line, want := range cases {
		_, err := parseAnnotation(line, 7)
		if err == nil {
			t.Errorf("parseAnnotation(%q): have nil, want error", line)
			continue
		}
		if !strings.Contains(err.Error(), want) || !strings.HasPrefix(err.Error(), "line 7:") {
			t.Errorf("parseAnnotation(%q)\nhave %v\nwant line 7 error containing %q", line, err, want)
		}
	}
}
