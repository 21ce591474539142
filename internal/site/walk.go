package site

import (
	"fmt"
	"maps"
	"slices"
)

// visitLabels calls fn for every display string of the site that may carry
// version placeholders. path identifies the field for error messages.
func (s *Site) visitLabels(fn func(path string, label *string)) {
	fn("title", &s.Title)
	fn("description", &s.Description)

	t := &s.ThemeConfig
	visitItems("themeConfig.nav", t.Nav, fn)
	for _, prefix := range sortedKeys(t.Sidebar) {
		sections := t.Sidebar[prefix]
		for i := range sections {
			base := fmt.Sprintf("themeConfig.sidebar[%s][%d]", prefix, i)
			fn(base+".text", &sections[i].Text)
			visitItems(base+".items", sections[i].Items, fn)
		}
	}
	for i := range t.SocialLinks {
		fn(fmt.Sprintf("themeConfig.socialLinks[%d].ariaLabel", i), &t.SocialLinks[i].AriaLabel)
	}
	if t.EditLink != nil {
		fn("themeConfig.editLink.text", &t.EditLink.Text)
	}
	if t.LastUpdated != nil {
		fn("themeConfig.lastUpdated.text", &t.LastUpdated.Text)
	}
	if t.Footer != nil {
		fn("themeConfig.footer.message", &t.Footer.Message)
		fn("themeConfig.footer.copyright", &t.Footer.Copyright)
	}
}

func visitItems(path string, items []NavItem, fn func(string, *string)) {
	for i := range items {
		p := fmt.Sprintf("%s[%d]", path, i)
		fn(p+".text", &items[i].Text)
		visitItems(p+".items", items[i].Items, fn)
	}
}

func sortedKeys(sb Sidebar) []string {
	return slices.Sorted(maps.Keys(sb))
}
