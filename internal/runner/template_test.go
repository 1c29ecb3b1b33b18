package runner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	t.Parallel()

	ctx := TemplateContext{
		Company:  "Acme Plumbing",
		City:     "Austin",
		Website:  "https://acme.com",
		YourSite: "https://outreachly.io",
	}

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"all placeholders", "Hi {firstName}, {company} in {city}: {website} via {yourSite}",
			"Hi there, Acme Plumbing in Austin: https://acme.com via https://outreachly.io"},
		{"unknown placeholder", "Hello {unknown}!", "Hello !"},
		{"repeated placeholder", "{company} {company}", "Acme Plumbing Acme Plumbing"},
		{"no placeholders", "plain text", "plain text"},
		{"empty template", "", ""},
		{"braces without name survive", "a {} b { } c", "a {} b { } c"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, renderTemplate(tc.in, ctx))
		})
	}
}
