package internal

import "path/filepath"

// Paths locates the well-known files and directories of a service.
type Paths struct {
	Base     string
	Public   string
	Views    string
	Layouts  string
	Partials string
	Manifest string
}

// ManifestFile is the name of the service manifest relative to the base path.
const ManifestFile = "manifest.yaml"

// DerivePaths joins the conventional layout onto base. It never touches
// the file system.
func DerivePaths(base string) Paths {
	views := filepath.Join(base, "views")
	return Paths{
		Base:     base,
		Public:   filepath.Join(base, "public"),
		Views:    views,
		Layouts:  filepath.Join(views, "layouts"),
		Partials: filepath.Join(views, "partials"),
		Manifest: filepath.Join(base, ManifestFile),
	}
}
