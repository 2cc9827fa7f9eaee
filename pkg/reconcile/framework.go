package reconcile

// Package is a name and version specifier pair.
type Package struct {
	Name    string
	Version string
}

// frameworkPackages are installed in every build workspace at fixed
// versions. They override whatever the manifest declares and are stripped
// before a manifest is reflected to the source workspace.
var frameworkPackages = []Package{
	{"react", "^16.8.1"},
	{"react-dom", "^16.8.1"},
	{"react-helmet", "^5.2.0"},
	{"@babel/runtime", "^7.3.1"},
	{"regenerator-runtime", "^0.12.0"},
	{"sass", "^1.17.2"},
	{"postcss-modules", "1.4.1"},
	{"cssnano", "4.1.10"},
	{"react-hot-loader", "^4.6.5"},
	{"@mdx-js/tag", "^0.16.8"},
	{"@babel/plugin-transform-runtime", "^7.2.0"},
	{"@babel/plugin-proposal-class-properties", "^7.3.4"},
	{"babel-plugin-react-require", "^3.1.1"},
	{"@babel/core", "^7.2.2"},
}

var frameworkIndex = func() map[string]string {
	m := make(map[string]string, len(frameworkPackages))
	for _, p := range frameworkPackages {
		m[p.Name] = p.Version
	}
	return m
}()

// FrameworkPackages returns the pinned framework packages in install order.
func FrameworkPackages() []Package {
	return append([]Package(nil), frameworkPackages...)
}

// IsFrameworkPackage reports whether name is pinned by the framework.
func IsFrameworkPackage(name string) bool {
	_, ok := frameworkIndex[name]
	return ok
}
