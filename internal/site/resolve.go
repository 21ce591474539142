package site

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds parallel version lookups during Resolve.
const maxConcurrentFetches = 4

// placeholderRe matches ${npm:<pkg>} inside a label.
var placeholderRe = regexp.MustCompile(`\$\{npm:([^}]*)\}`)

// VersionSource looks up the latest published version of a package.
type VersionSource interface {
	PackageVersion(ctx context.Context, pkg string) (string, error)
}

// VersionFunc adapts a function to VersionSource.
type VersionFunc func(ctx context.Context, pkg string) (string, error)

// PackageVersion implements VersionSource.
func (f VersionFunc) PackageVersion(ctx context.Context, pkg string) (string, error) {
	return f(ctx, pkg)
}

// Fixed returns a VersionSource that answers every package with version.
// Used for offline builds.
func Fixed(version string) VersionSource {
	return VersionFunc(func(context.Context, string) (string, error) {
		return version, nil
	})
}

// Placeholder returns the placeholder text for pkg.
func Placeholder(pkg string) string {
	return "${npm:" + pkg + "}"
}

// placeholders returns the package names referenced in label.
func placeholders(label string) []string {
	matches := placeholderRe.FindAllStringSubmatch(label, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// Packages returns the distinct package names referenced by version
// placeholders anywhere in the site, sorted.
func (s *Site) Packages() []string {
	seen := make(map[string]struct{})
	s.visitLabels(func(_ string, label *string) {
		for _, pkg := range placeholders(*label) {
			seen[pkg] = struct{}{}
		}
	})
	out := make([]string, 0, len(seen))
	for pkg := range seen {
		out = append(out, pkg)
	}
	slices.Sort(out)
	return out
}

// Resolve returns a copy of the site with every version placeholder replaced
// by the version reported by src. Each package is looked up once. The
// receiver is not modified. The first lookup failure aborts the resolve.
func (s *Site) Resolve(ctx context.Context, src VersionSource) (*Site, error) {
	pkgs := s.Packages()
	versions := make(map[string]string, len(pkgs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for _, pkg := range pkgs {
		g.Go(func() error {
			v, err := src.PackageVersion(gctx, pkg)
			if err != nil {
				return fmt.Errorf("resolve version of %s: %w", pkg, err)
			}
			mu.Lock()
			versions[pkg] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := s.Clone()
	out.visitLabels(func(_ string, label *string) {
		*label = placeholderRe.ReplaceAllStringFunc(*label, func(m string) string {
			pkg := placeholderRe.FindStringSubmatch(m)[1]
			return versions[pkg]
		})
	})
	return out, nil
}
