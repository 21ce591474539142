// Package site models the nord.dev documentation-site configuration: the
// navigation and sidebar trees, social links, search, edit links, footer and
// sitemap settings consumed by the site generator.
//
// Labels may embed version placeholders of the form ${npm:<pkg>}. Resolve
// replaces them with the latest published version of @grainular/<pkg>.
package site

// NavItem is a label and target link, optionally with nested children.
// Group entries (those with Items) may omit Link.
type NavItem struct {
	Text        string    `json:"text" yaml:"text" koanf:"text"`
	Link        string    `json:"link,omitempty" yaml:"link,omitempty" koanf:"link"`
	ActiveMatch string    `json:"activeMatch,omitempty" yaml:"activeMatch,omitempty" koanf:"activeMatch"`
	Collapsed   *bool     `json:"collapsed,omitempty" yaml:"collapsed,omitempty" koanf:"collapsed"`
	Items       []NavItem `json:"items,omitempty" yaml:"items,omitempty" koanf:"items"`
}

// SidebarSection is a titled group of sidebar entries. When Base is set,
// entry links are relative to it.
type SidebarSection struct {
	Text      string    `json:"text" yaml:"text" koanf:"text"`
	Base      string    `json:"base,omitempty" yaml:"base,omitempty" koanf:"base"`
	Collapsed *bool     `json:"collapsed,omitempty" yaml:"collapsed,omitempty" koanf:"collapsed"`
	Items     []NavItem `json:"items" yaml:"items" koanf:"items"`
}

// Sidebar maps a route prefix (for example "/guide/") to its sections.
type Sidebar map[string][]SidebarSection

// SocialLink is an icon link rendered in the site header.
type SocialLink struct {
	Icon      string `json:"icon" yaml:"icon" koanf:"icon"`
	Link      string `json:"link" yaml:"link" koanf:"link"`
	AriaLabel string `json:"ariaLabel,omitempty" yaml:"ariaLabel,omitempty" koanf:"ariaLabel"`
}

// Search selects the search provider.
type Search struct {
	Provider string `json:"provider" yaml:"provider" koanf:"provider"`
}

// EditLink configures the "edit this page" link. Pattern must contain :path.
type EditLink struct {
	Pattern string `json:"pattern" yaml:"pattern" koanf:"pattern"`
	Text    string `json:"text,omitempty" yaml:"text,omitempty" koanf:"text"`
}

// Footer holds the footer strings.
type Footer struct {
	Message   string `json:"message,omitempty" yaml:"message,omitempty" koanf:"message"`
	Copyright string `json:"copyright,omitempty" yaml:"copyright,omitempty" koanf:"copyright"`
}

// LastUpdated enables the last-updated timestamp on pages.
type LastUpdated struct {
	Text string `json:"text,omitempty" yaml:"text,omitempty" koanf:"text"`
}

// Outline controls the on-page table of contents.
type Outline struct {
	Level []int  `json:"level,omitempty" yaml:"level,omitempty" koanf:"level"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" koanf:"label"`
}

// ThemeConfig is the themeConfig block of the site configuration.
type ThemeConfig struct {
	Logo        string       `json:"logo,omitempty" yaml:"logo,omitempty" koanf:"logo"`
	Nav         []NavItem    `json:"nav,omitempty" yaml:"nav,omitempty" koanf:"nav"`
	Sidebar     Sidebar      `json:"sidebar,omitempty" yaml:"sidebar,omitempty" koanf:"sidebar"`
	SocialLinks []SocialLink `json:"socialLinks,omitempty" yaml:"socialLinks,omitempty" koanf:"socialLinks"`
	Search      *Search      `json:"search,omitempty" yaml:"search,omitempty" koanf:"search"`
	EditLink    *EditLink    `json:"editLink,omitempty" yaml:"editLink,omitempty" koanf:"editLink"`
	LastUpdated *LastUpdated `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty" koanf:"lastUpdated"`
	Footer      *Footer      `json:"footer,omitempty" yaml:"footer,omitempty" koanf:"footer"`
	Outline     *Outline     `json:"outline,omitempty" yaml:"outline,omitempty" koanf:"outline"`
}

// Sitemap configures sitemap generation.
type Sitemap struct {
	Hostname string `json:"hostname" yaml:"hostname" koanf:"hostname"`
}

// Site is the full site configuration object.
type Site struct {
	Title       string      `json:"title" yaml:"title" koanf:"title"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty" koanf:"description"`
	Lang        string      `json:"lang,omitempty" yaml:"lang,omitempty" koanf:"lang"`
	CleanURLs   bool        `json:"cleanUrls,omitempty" yaml:"cleanUrls,omitempty" koanf:"cleanUrls"`
	SrcExclude  []string    `json:"srcExclude,omitempty" yaml:"srcExclude,omitempty" koanf:"srcExclude"`
	ThemeConfig ThemeConfig `json:"themeConfig" yaml:"themeConfig" koanf:"themeConfig"`
	Sitemap     *Sitemap    `json:"sitemap,omitempty" yaml:"sitemap,omitempty" koanf:"sitemap"`
}

// Clone returns a deep copy of the site.
func (s *Site) Clone() *Site {
	if s == nil {
		return nil
	}
	out := *s
	out.SrcExclude = cloneStrings(s.SrcExclude)
	out.ThemeConfig = s.ThemeConfig.clone()
	if s.Sitemap != nil {
		sm := *s.Sitemap
		out.Sitemap = &sm
	}
	return &out
}

func (t ThemeConfig) clone() ThemeConfig {
	out := t
	out.Nav = cloneItems(t.Nav)
	if t.Sidebar != nil {
		out.Sidebar = make(Sidebar, len(t.Sidebar))
		for prefix, sections := range t.Sidebar {
			cp := make([]SidebarSection, len(sections))
			for i, sec := range sections {
				cp[i] = sec
				cp[i].Collapsed = cloneBool(sec.Collapsed)
				cp[i].Items = cloneItems(sec.Items)
			}
			out.Sidebar[prefix] = cp
		}
	}
	if t.SocialLinks != nil {
		out.SocialLinks = append([]SocialLink(nil), t.SocialLinks...)
	}
	if t.Search != nil {
		v := *t.Search
		out.Search = &v
	}
	if t.EditLink != nil {
		v := *t.EditLink
		out.EditLink = &v
	}
	if t.LastUpdated != nil {
		v := *t.LastUpdated
		out.LastUpdated = &v
	}
	if t.Footer != nil {
		v := *t.Footer
		out.Footer = &v
	}
	if t.Outline != nil {
		v := *t.Outline
		v.Level = append([]int(nil), t.Outline.Level...)
		out.Outline = &v
	}
	return out
}

func cloneItems(items []NavItem) []NavItem {
	if items == nil {
		return nil
	}
	out := make([]NavItem, len(items))
	for i, it := range items {
		out[i] = it
		out[i].Collapsed = cloneBool(it.Collapsed)
		out[i].Items = cloneItems(it.Items)
	}
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
