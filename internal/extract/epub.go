// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"golang.org/x/net/html"

	"github.com/pdiddy/convert2cbz/pkg/types"
)

const (
	epubMimetype  = "application/epub+zip"
	containerPath = "META-INF/container.xml"
)

// EPUB extracts the images referenced by an EPUB's reading order.
type EPUB struct{}

// NewEPUB returns an EPUB extractor.
func NewEPUB() *EPUB { return &EPUB{} }

type epubContainer struct {
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	Manifest []opfItem `xml:"manifest>item"`
	Spine    []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

type opfItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

// epubBook is an opened EPUB container with its members indexed by name.
type epubBook struct {
	path  string
	files map[string]*zip.File
}

// Extract walks the spine in reading order. Spine items that are images
// become pages directly; XHTML and SVG documents contribute the images they
// reference. An image referenced twice appears once, at its first position.
// When the spine yields no image, the manifest's images are used in
// manifest order.
func (e *EPUB) Extract(ctx context.Context, epubPath string, _ types.Options) (*types.Document, error) {
	zr, err := zip.OpenReader(epubPath)
	if err != nil {
		return nil, extractionError(epubPath, err)
	}
	defer zr.Close()

	book := &epubBook{path: epubPath, files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		book.files[f.Name] = f
	}

	if err := book.checkMimetype(); err != nil {
		return nil, err
	}
	opfPath, err := book.rootfile()
	if err != nil {
		return nil, err
	}
	pkg, err := book.readOPF(opfPath)
	if err != nil {
		return nil, err
	}

	opfDir := path.Dir(opfPath)
	manifest := make(map[string]opfItem, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		manifest[item.ID] = item
	}

	var refs []string
	for _, ref := range pkg.Spine {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item, ok := manifest[ref.IDRef]
		if !ok {
			continue
		}
		target := resolveHref(opfDir, item.Href)
		switch {
		case strings.HasPrefix(item.MediaType, "image/") && item.MediaType != "image/svg+xml":
			refs = append(refs, target)
		case isContentDocument(item.MediaType):
			found, err := book.documentImages(target, item.MediaType)
			if err != nil {
				return nil, err
			}
			refs = append(refs, found...)
		}
	}
	if len(refs) == 0 {
		for _, item := range pkg.Manifest {
			if strings.HasPrefix(item.MediaType, "image/") && item.MediaType != "image/svg+xml" {
				refs = append(refs, resolveHref(opfDir, item.Href))
			}
		}
	}

	doc := &types.Document{Path: epubPath, Kind: types.KindEPUB}
	seen := make(map[string]bool, len(refs))
	for _, name := range refs {
		if seen[name] {
			continue
		}
		seen[name] = true
		f, ok := book.files[name]
		if !ok {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, extractionError(epubPath, err)
		}
		if page, ok := newPage(len(doc.Pages), name, data); ok {
			doc.Pages = append(doc.Pages, page)
		}
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrEmptyDocument, epubPath)
	}
	return doc, nil
}

func (b *epubBook) read(name string) ([]byte, error) {
	f, ok := b.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s: missing %s", types.ErrExtraction, b.path, name)
	}
	data, err := readZipFile(f)
	if err != nil {
		return nil, extractionError(b.path, err)
	}
	return data, nil
}

func (b *epubBook) checkMimetype() error {
	data, err := b.read("mimetype")
	if err != nil {
		return err
	}
	if got := strings.TrimSpace(string(data)); got != epubMimetype {
		return fmt.Errorf("%w: %s: mimetype is %q, not %q", types.ErrExtraction, b.path, got, epubMimetype)
	}
	return nil
}

// rootfile returns the OPF path named by META-INF/container.xml.
func (b *epubBook) rootfile() (string, error) {
	data, err := b.read(containerPath)
	if err != nil {
		return "", err
	}
	var c epubContainer
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", extractionError(b.path, fmt.Errorf("parsing %s: %w", containerPath, err))
	}
	for _, rf := range c.Rootfiles {
		if rf.FullPath != "" && (rf.MediaType == "" || rf.MediaType == "application/oebps-package+xml") {
			return path.Clean(rf.FullPath), nil
		}
	}
	return "", fmt.Errorf("%w: %s: %s names no package document", types.ErrExtraction, b.path, containerPath)
}

func (b *epubBook) readOPF(opfPath string) (*opfPackage, error) {
	data, err := b.read(opfPath)
	if err != nil {
		return nil, err
	}
	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, extractionError(b.path, fmt.Errorf("parsing %s: %w", opfPath, err))
	}
	return &pkg, nil
}

// documentImages returns the archive names of the images a content
// document references, in document order. XHTML and SVG documents are read
// as XML so self-closed elements such as <title/> are honoured; plain HTML,
// and XHTML that is not well-formed, go through the HTML parser. A missing
// document contributes nothing.
func (b *epubBook) documentImages(name, mediaType string) ([]string, error) {
	f, ok := b.files[name]
	if !ok {
		return nil, nil
	}
	data, err := readZipFile(f)
	if err != nil {
		return nil, extractionError(b.path, err)
	}

	var hrefs []string
	if mediaType == "text/html" {
		hrefs = htmlImageRefs(data)
	} else if hrefs, err = xmlImageRefs(data); err != nil {
		hrefs = htmlImageRefs(data)
	}

	dir := path.Dir(name)
	refs := make([]string, len(hrefs))
	for i, href := range hrefs {
		refs[i] = resolveHref(dir, href)
	}
	return refs, nil
}

// xmlImageRefs collects img@src and image@href (in any namespace) from an
// XML document. HTML named entities are accepted.
func xmlImageRefs(data []byte) ([]string, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Entity = xml.HTMLEntity

	var refs []string
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return refs, nil
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		var want string
		switch se.Name.Local {
		case "img":
			want = "src"
		case "image":
			want = "href"
		default:
			continue
		}
		for _, a := range se.Attr {
			if a.Name.Local == want && a.Value != "" {
				refs = append(refs, a.Value)
				break
			}
		}
	}
}

// htmlImageRefs collects image references with the HTML parser. Unparsable
// input yields nothing.
func htmlImageRefs(data []byte) []string {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	var refs []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if href := imageRef(n); href != "" {
				refs = append(refs, href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return refs
}

// imageRef returns the image reference of an <img> or SVG <image> element.
// The HTML parser reports xlink:href with Key "href" in the xlink namespace.
func imageRef(n *html.Node) string {
	switch n.Data {
	case "img":
		for _, a := range n.Attr {
			if a.Key == "src" {
				return a.Val
			}
		}
	case "image":
		for _, a := range n.Attr {
			if a.Key == "href" || a.Key == "xlink:href" {
				return a.Val
			}
		}
	}
	return ""
}

func isContentDocument(mediaType string) bool {
	switch mediaType {
	case "application/xhtml+xml", "text/html", "image/svg+xml":
		return true
	}
	return false
}

// resolveHref resolves an href found in a document located in dir to an
// archive member name. Fragments and queries are dropped.
func resolveHref(dir, href string) string {
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		href = href[:i]
	}
	if u, err := url.PathUnescape(href); err == nil {
		href = u
	}
	if strings.HasPrefix(href, "/") {
		return path.Clean(strings.TrimPrefix(href, "/"))
	}
	return path.Clean(path.Join(dir, href))
}
