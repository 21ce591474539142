package site

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/Grainular-Nord/nord.dev/internal/registry"
)

// maxNavDepth is the deepest nesting of nav or sidebar entries the theme renders.
const maxNavDepth = 3

// Search providers understood by the theme.
const (
	SearchLocal   = "local"
	SearchAlgolia = "algolia"
)

// ValidationError describes one structural problem in a site definition.
type ValidationError struct {
	Path string
	Msg  string
}

func (e *ValidationError) Error() string {
	return e.Path + ": " + e.Msg
}

type validator struct {
	errs []error
}

func (v *validator) addf(p, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{Path: p, Msg: fmt.Sprintf(format, args...)})
}

// Validate checks that the site is a well-formed tree of labels and links.
// All problems are reported together as a joined error of *ValidationError.
func (s *Site) Validate() error {
	v := &validator{}

	if strings.TrimSpace(s.Title) == "" {
		v.addf("title", "must not be empty")
	}

	t := &s.ThemeConfig
	v.items("themeConfig.nav", t.Nav, "", 1)

	for _, prefix := range sortedKeys(t.Sidebar) {
		p := fmt.Sprintf("themeConfig.sidebar[%s]", prefix)
		if !strings.HasPrefix(prefix, "/") {
			v.addf(p, "route prefix must start with /")
		}
		for i, sec := range t.Sidebar[prefix] {
			sp := fmt.Sprintf("%s[%d]", p, i)
			if strings.TrimSpace(sec.Text) == "" {
				v.addf(sp+".text", "must not be empty")
			}
			if sec.Base != "" && !isSitePath(sec.Base) {
				v.addf(sp+".base", "invalid base path %q", sec.Base)
			}
			if len(sec.Items) == 0 {
				v.addf(sp+".items", "section has no entries")
			}
			v.items(sp+".items", sec.Items, sec.Base, 1)
		}
	}

	for i, sl := range t.SocialLinks {
		p := fmt.Sprintf("themeConfig.socialLinks[%d]", i)
		if sl.Icon == "" {
			v.addf(p+".icon", "must not be empty")
		}
		if !isAbsURL(sl.Link) {
			v.addf(p+".link", "must be an absolute http(s) URL, got %q", sl.Link)
		}
	}

	if t.Search != nil {
		switch t.Search.Provider {
		case SearchLocal, SearchAlgolia:
		default:
			v.addf("themeConfig.search.provider", "unknown provider %q (want %s or %s)",
				t.Search.Provider, SearchLocal, SearchAlgolia)
		}
	}

	if t.EditLink != nil {
		if !isAbsURL(t.EditLink.Pattern) {
			v.addf("themeConfig.editLink.pattern", "must be an absolute http(s) URL, got %q", t.EditLink.Pattern)
		} else if !strings.Contains(t.EditLink.Pattern, ":path") {
			v.addf("themeConfig.editLink.pattern", "must contain :path")
		}
	}

	if t.Logo != "" && !isSitePath(t.Logo) && !isAbsURL(t.Logo) {
		v.addf("themeConfig.logo", "invalid logo path %q", t.Logo)
	}

	for i, ex := range s.SrcExclude {
		p := fmt.Sprintf("srcExclude[%d]", i)
		switch {
		case strings.TrimSpace(ex) == "":
			v.addf(p, "must not be empty")
		case path.IsAbs(ex):
			v.addf(p, "must be relative to the source directory, got %q", ex)
		}
	}

	if s.Sitemap != nil && !isAbsURL(s.Sitemap.Hostname) {
		v.addf("sitemap.hostname", "must be an absolute http(s) URL, got %q", s.Sitemap.Hostname)
	}

	s.visitLabels(func(p string, label *string) {
		for _, pkg := range placeholders(*label) {
			if !registry.ValidName(pkg) {
				v.addf(p, "invalid package name %q in version placeholder", pkg)
			}
		}
	})

	return errors.Join(v.errs...)
}

func (v *validator) items(p string, items []NavItem, base string, depth int) {
	if depth > maxNavDepth && len(items) > 0 {
		v.addf(p, "nesting deeper than %d levels", maxNavDepth)
		return
	}
	for i, it := range items {
		ip := fmt.Sprintf("%s[%d]", p, i)
		if strings.TrimSpace(it.Text) == "" {
			v.addf(ip+".text", "must not be empty")
		}
		switch {
		case it.Link == "" && len(it.Items) == 0:
			v.addf(ip+".link", "leaf entry must have a link")
		case it.Link != "" && !isValidLink(it.Link, base):
			v.addf(ip+".link", "invalid link %q", it.Link)
		}
		v.items(ip+".items", it.Items, base, depth+1)
	}
}

// isValidLink reports whether link is a site path, an anchor, an absolute
// http(s) URL, or (when base is set) a path relative to base.
func isValidLink(link, base string) bool {
	switch {
	case link == "":
		return false
	case strings.HasPrefix(link, "#"):
		return len(link) > 1
	case isSitePath(link), isAbsURL(link):
		return true
	case base != "":
		return isSitePath(path.Join(base, link))
	}
	return false
}

func isSitePath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return false
	}
	if strings.ContainsAny(p, " \t\n") {
		return false
	}
	_, err := url.Parse(p)
	return err == nil
}

func isAbsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
