package runner

import "regexp"

// TemplateContext is the fixed field set available to subject and body
// templates.
type TemplateContext struct {
	Company  string
	City     string
	Website  string
	YourSite string
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z]+)\}`)

// renderTemplate substitutes {placeholder} tokens from the fixed context.
// Unknown placeholders render as empty string.
func renderTemplate(tmpl string, ctx TemplateContext) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(token string) string {
		switch token[1 : len(token)-1] {
		case "company":
			return ctx.Company
		case "city":
			return ctx.City
		case "firstName":
			return "there"
		case "website":
			return ctx.Website
		case "yourSite":
			return ctx.YourSite
		default:
			return ""
		}
	})
}
