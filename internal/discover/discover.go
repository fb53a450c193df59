package discover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/claimlens/claimlens/internal/model"
)

// Discoverer resolves a project root into documentation, source, and
// manifest inputs for the pipeline. Files over the size cap or that
// fail to read are skipped and recorded, never fatal.
type Discoverer struct {
	fs  afero.Fs
	cfg model.DiscoveryConfig
}

// ProjectFiles is the discovery output, in canonical path order
type ProjectFiles struct {
	Documents []model.Document
	Sources   []model.SourceFile
	Manifests []model.Manifest
	Warnings  []model.Warning
}

// NewDiscoverer creates a discoverer over the given filesystem
func NewDiscoverer(fs afero.Fs, cfg model.DiscoveryConfig) *Discoverer {
	return &Discoverer{fs: fs, cfg: cfg}
}

// Discover walks the project root and classifies every file. Paths in
// the result are relative to root and sorted, so downstream scanning
// order is reproducible regardless of walk order. Cancellation
// between files returns what was collected so far.
func (d *Discoverer) Discover(ctx context.Context, root string) (*ProjectFiles, error) {
	info, err := d.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", root)
	}

	result := &ProjectFiles{}

	walkErr := afero.Walk(d.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			result.Warnings = append(result.Warnings, model.Warning{
				Stage:  "discover",
				File:   path,
				Reason: fmt.Sprintf("walk: %v", err),
			})
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			if d.skipDir(info.Name()) && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		kind := d.classify(rel, info.Name())
		if kind == fileIgnored {
			return nil
		}

		if info.Size() > d.cfg.MaxFileBytes {
			result.Warnings = append(result.Warnings, model.Warning{
				Stage:  "discover",
				File:   rel,
				Reason: fmt.Sprintf("file exceeds size cap (%d > %d bytes)", info.Size(), d.cfg.MaxFileBytes),
			})
			return nil
		}

		content, err := afero.ReadFile(d.fs, path)
		if err != nil {
			result.Warnings = append(result.Warnings, model.Warning{
				Stage:  "discover",
				File:   rel,
				Reason: fmt.Sprintf("read: %v", err),
			})
			return nil
		}

		switch kind {
		case fileDocument:
			result.Documents = append(result.Documents, model.Document{Path: rel, Content: string(content)})
		case fileManifest:
			result.Manifests = append(result.Manifests, model.Manifest{
				Path:    rel,
				Kind:    model.ManifestKind(info.Name()),
				Content: string(content),
			})
		case fileSource:
			result.Sources = append(result.Sources, model.SourceFile{Path: rel, Content: string(content)})
		}

		return nil
	})

	if walkErr != nil && walkErr != context.Canceled && walkErr != context.DeadlineExceeded {
		if ctx.Err() == nil {
			return nil, fmt.Errorf("walk project: %w", walkErr)
		}
	}

	sort.Slice(result.Documents, func(i, j int) bool { return result.Documents[i].Path < result.Documents[j].Path })
	sort.Slice(result.Sources, func(i, j int) bool { return result.Sources[i].Path < result.Sources[j].Path })
	sort.Slice(result.Manifests, func(i, j int) bool { return result.Manifests[i].Path < result.Manifests[j].Path })

	return result, nil
}

type fileKind int

const (
	fileIgnored fileKind = iota
	fileDocument
	fileSource
	fileManifest
)

// classify decides what a file is. Manifests win over source
// extensions; documentation wins over source for doc extensions.
func (d *Discoverer) classify(rel, name string) fileKind {
	for _, m := range d.cfg.ManifestNames {
		if name == m {
			return fileManifest
		}
	}

	ext := strings.ToLower(filepath.Ext(name))

	if d.isDocExt(ext) {
		upper := strings.ToUpper(name)
		for _, prefix := range d.cfg.DocNamePrefixes {
			if strings.HasPrefix(upper, prefix) {
				return fileDocument
			}
		}
		for _, dir := range d.cfg.DocDirs {
			if strings.HasPrefix(rel, dir+"/") {
				return fileDocument
			}
		}
		// Other doc-extension files anywhere still count as documentation
		if ext == ".md" || ext == ".markdown" || ext == ".rst" {
			return fileDocument
		}
		return fileIgnored
	}

	for _, n := range d.cfg.SourceFilenames {
		if name == n {
			return fileSource
		}
	}
	for _, e := range d.cfg.SourceExtensions {
		if ext == e {
			return fileSource
		}
	}

	return fileIgnored
}

func (d *Discoverer) isDocExt(ext string) bool {
	for _, e := range d.cfg.DocExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (d *Discoverer) skipDir(name string) bool {
	for _, s := range d.cfg.SkipDirs {
		if name == s {
			return true
		}
	}
	return false
}
