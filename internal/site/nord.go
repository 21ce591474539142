package site

// Repository and hosting locations of the nord.dev documentation.
const (
	Hostname   = "https://nord.dev"
	Repository = "https://github.com/Grainular-Nord/nord.dev"
	NpmScope   = "@grainular"
)

// Packages whose versions appear in the built-in navigation.
const (
	PkgNord    = "nord"
	PkgNordCLI = "nord-cli"
)

// Nord returns the built-in nord.dev site definition. Version labels are
// placeholders; call Resolve before handing the site to the generator.
func Nord() *Site {
	return &Site{
		Title:       "Nord",
		Description: "A compiler-free, fine-grained reactive framework for building web applications.",
		Lang:        "en-US",
		CleanURLs:   true,
		SrcExclude:  []string{"README.md", "**/README.md", "CONTRIBUTING.md"},
		ThemeConfig: ThemeConfig{
			Logo: "/logo.svg",
			Nav: []NavItem{
				{Text: "Guide", Link: "/guide/introduction", ActiveMatch: "/guide/"},
				{Text: "Reference", Link: "/reference/grains", ActiveMatch: "/reference/"},
				{Text: "CLI", Link: "/cli/getting-started", ActiveMatch: "/cli/"},
				{
					Text: "v" + Placeholder(PkgNord),
					Items: []NavItem{
						{Text: "Changelog", Link: Repository + "/blob/main/CHANGELOG.md"},
						{Text: "Contributing", Link: Repository + "/blob/main/CONTRIBUTING.md"},
					},
				},
				{
					Text: "CLI v" + Placeholder(PkgNordCLI),
					Items: []NavItem{
						{Text: "npm", Link: "https://www.npmjs.com/package/" + NpmScope + "/" + PkgNordCLI},
					},
				},
			},
			Sidebar: Sidebar{
				"/guide/": {
					{
						Text: "Introduction",
						Base: "/guide/",
						Items: []NavItem{
							{Text: "What is Nord?", Link: "introduction"},
							{Text: "Getting Started", Link: "getting-started"},
							{Text: "Installation", Link: "installation"},
						},
					},
					{
						Text: "Essentials",
						Base: "/guide/",
						Items: []NavItem{
							{Text: "Templates", Link: "templates"},
							{Text: "Grains", Link: "grains"},
							{Text: "Derived Values", Link: "derived"},
							{Text: "Directives", Link: "directives"},
							{Text: "Components", Link: "components"},
						},
					},
					{
						Text:      "Advanced",
						Base:      "/guide/",
						Collapsed: boolPtr(true),
						Items: []NavItem{
							{Text: "Custom Directives", Link: "custom-directives"},
							{Text: "Lifecycle", Link: "lifecycle"},
							{Text: "Routing", Link: "routing"},
						},
					},
				},
				"/reference/": {
					{
						Text: "API Reference (v" + Placeholder(PkgNord) + ")",
						Base: "/reference/",
						Items: []NavItem{
							{Text: "grain", Link: "grains"},
							{Text: "derived", Link: "derived"},
							{Text: "html", Link: "html"},
							{Text: "render", Link: "render"},
							{Text: "createComponent", Link: "components"},
							{Text: "Directives", Link: "directives"},
						},
					},
				},
				"/cli/": {
					{
						Text: "CLI (v" + Placeholder(PkgNordCLI) + ")",
						Base: "/cli/",
						Items: []NavItem{
							{Text: "Getting Started", Link: "getting-started"},
							{Text: "Commands", Link: "commands"},
							{Text: "Configuration", Link: "configuration"},
						},
					},
				},
			},
			SocialLinks: []SocialLink{
				{Icon: "github", Link: Repository},
				{Icon: "npm", Link: "https://www.npmjs.com/package/" + NpmScope + "/" + PkgNord},
			},
			Search:      &Search{Provider: SearchLocal},
			EditLink:    &EditLink{Pattern: Repository + "/edit/main/docs/:path", Text: "Edit this page on GitHub"},
			LastUpdated: &LastUpdated{Text: "Last updated"},
			Footer: &Footer{
				Message:   "Released under the MIT License.",
				Copyright: "Copyright © 2023-present Grainular",
			},
			Outline: &Outline{Level: []int{2, 3}},
		},
		Sitemap: &Sitemap{Hostname: Hostname},
	}
}

func boolPtr(b bool) *bool { return &b }
