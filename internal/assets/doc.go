// Package assets provides the CSS styles and the page template used to
// assemble rendered documents.
//
// # Loaders
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in styles and the page template (go:embed)
//	    ├── FilesystemLoader  - a custom directory on disk
//	    └── AssetResolver     - custom first, embedded as fallback
//
// A custom directory only needs the files it overrides:
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css
//	└── templates/
//	    └── page.html
//
// Asset names are validated, and FilesystemLoader resolves symlinks and
// checks every path stays inside basePath.
package assets
