package extract

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	require.NoError(t, err)
	return doc
}

func TestEmails_PlainText(t *testing.T) {
	t.Parallel()

	body := []byte(`Contact us at Info@Acme.com or sales@acme.com. Image: logo@2x.png`)
	emails := Emails(body)
	require.Equal(t, []string{"info@acme.com", "sales@acme.com"}, emails)
}

func TestEmails_FiltersReservedDomains(t *testing.T) {
	t.Parallel()

	body := []byte(`dev@machine.local qa@suite.test real@acme.com`)
	require.Equal(t, []string{"real@acme.com"}, Emails(body))
}

func TestObfuscated_Variants(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"write to info [at] acme [dot] com today": "info@acme.com",
		"write to info (at) acme (dot) com":       "info@acme.com",
		"bookings (@) acme . co . uk":             "bookings@acme.co.uk",
		"support at acme dot com":                 "support@acme.com",
	}
	for text, want := range cases {
		got := Obfuscated(text)
		require.Contains(t, got, want, "input %q", text)
	}
}

func TestObfuscated_IgnoresPlainProse(t *testing.T) {
	t.Parallel()

	require.Empty(t, Obfuscated("We are located at the corner of Main Street."))
}

func TestMailtoTargets(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body>
		<a href="mailto:Hello@Acme.com?subject=Hi">mail us</a>
		<a href="mailto:hello@acme.com">again</a>
		<a href="/contact">contact</a>
	</body></html>`)
	require.Equal(t, []string{"hello@acme.com"}, MailtoTargets(doc))
}

func TestJSONLD_NestedContactPoint(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><head><script type="application/ld+json">
	{
		"@type": "LocalBusiness",
		"email": "mailto:owner@acme.com",
		"contactPoint": [{"@type": "ContactPoint", "email": "Support@acme.com"}]
	}
	</script></head></html>`)
	got := JSONLD(doc)
	require.ElementsMatch(t, []string{"owner@acme.com", "support@acme.com"}, got)
}

func TestJSONLD_MalformedScriptIgnored(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<script type="application/ld+json">{not json</script>`)
	require.Empty(t, JSONLD(doc))
}

func encodeCFEmail(key byte, email string) string {
	out := []byte{key}
	for i := 0; i < len(email); i++ {
		out = append(out, email[i]^key)
	}
	return hex.EncodeToString(out)
}

func TestCFEmail_Decodes(t *testing.T) {
	t.Parallel()

	enc := encodeCFEmail(0x42, "office@acme.com")
	doc := parseDoc(t, `<span class="__cf_email__" data-cfemail="`+enc+`">[email protected]</span>`)
	require.Equal(t, []string{"office@acme.com"}, CFEmail(doc))
}

func TestCFEmail_BadHexIgnored(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<span data-cfemail="zzzz">x</span>`)
	require.Empty(t, CFEmail(doc))
}

func TestAll_MergesSourcesWithoutDuplicates(t *testing.T) {
	t.Parallel()

	enc := encodeCFEmail(0x7f, "cf@acme.com")
	body := []byte(`<html><body>
		<p>plain@acme.com and plain@acme.com</p>
		<p>team [at] acme [dot] com</p>
		<a href="mailto:plain@acme.com">mail</a>
		<span data-cfemail="` + enc + `"></span>
	</body></html>`)
	got := All(body)
	require.ElementsMatch(t, []string{"plain@acme.com", "team@acme.com", "cf@acme.com"}, got)
}

func TestPlainOnly_SkipsMarkupExtractors(t *testing.T) {
	t.Parallel()

	body := []byte(`Reach legal at legal@acme.com or privacy [at] acme [dot] com`)
	require.ElementsMatch(t, []string{"legal@acme.com", "privacy@acme.com"}, PlainOnly(body))
}
