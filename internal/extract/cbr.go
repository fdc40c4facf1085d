// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/convert2cbz/pkg/types"
)

// CBR extracts comic book RAR archives through an external decompressor.
// Archives that carry a .cbr extension but are ZIP files are read directly.
type CBR struct {
	tools Toolbox
}

// NewCBR returns a CBR extractor using tb to locate the decompressor.
func NewCBR(tb Toolbox) *CBR { return &CBR{tools: tb} }

// Extract returns the archive's images in stored order.
func (c *CBR) Extract(ctx context.Context, path string, _ types.Options) (*types.Document, error) {
	head, err := readHead(path, len(rarMagic))
	if err != nil {
		return nil, extractionError(path, err)
	}
	switch {
	case isZip(head):
		return zipImages(path, types.KindCBR)
	case isRar(head):
		return c.extractRAR(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %s is neither a RAR nor a ZIP archive", types.ErrExtraction, path)
	}
}

func (c *CBR) extractRAR(ctx context.Context, path string) (*types.Document, error) {
	if c.tools.RAR == nil {
		return nil, fmt.Errorf("%w: no RAR decompressor configured", types.ErrDependencyMissing)
	}
	rar, err := c.tools.RAR()
	if err != nil {
		return nil, err
	}

	names, err := rar.List(ctx, path)
	if err != nil {
		return nil, extractionError(path, err)
	}

	doc := &types.Document{Path: path, Kind: types.KindCBR}
	err = withTempDir(func(dir string) error {
		if err := rar.Extract(ctx, path, dir); err != nil {
			return extractionError(path, err)
		}
		for _, name := range names {
			if !isPageEntry(name) {
				continue
			}
			member, ok := memberPath(dir, name)
			if !ok {
				continue
			}
			data, err := os.ReadFile(member)
			if err != nil {
				if os.IsNotExist(err) {
					// Listed directories and entries unrar skipped.
					continue
				}
				return extractionError(path, err)
			}
			if page, ok := newPage(len(doc.Pages), name, data); ok {
				doc.Pages = append(doc.Pages, page)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrEmptyDocument, path)
	}
	return doc, nil
}

// memberPath maps an archive entry name onto dir, refusing names that would
// escape it.
func memberPath(dir, name string) (string, bool) {
	p := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return p, true
}
