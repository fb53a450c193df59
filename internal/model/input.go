package model

// Document is a documentation file resolved by the discovery layer,
// already read into memory and under the configured size cap.
type Document struct {
	Path    string // Relative to the project root
	Content string
}

// SourceFile is a source file resolved by the discovery layer
type SourceFile struct {
	Path    string
	Content string
}

// ManifestKind identifies a dependency manifest format
type ManifestKind string

const (
	ManifestGoMod        ManifestKind = "go.mod"
	ManifestPackageJSON  ManifestKind = "package.json"
	ManifestRequirements ManifestKind = "requirements.txt"
	ManifestCargoToml    ManifestKind = "Cargo.toml"
)

// Manifest is a dependency manifest resolved by the discovery layer
type Manifest struct {
	Path    string
	Kind    ManifestKind
	Content string
}
