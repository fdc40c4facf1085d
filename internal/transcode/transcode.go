// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transcode identifies page image formats and re-encodes rendered
// PDF pages to the requested output format and quality.
package transcode

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/pdiddy/convert2cbz/pkg/types"
)

// magic is a file signature checked at a fixed offset.
type magic struct {
	offset int
	sig    []byte
	format types.PageFormat
}

var signatures = []magic{
	{0, []byte{0xFF, 0xD8, 0xFF}, types.PageJPEG},
	{0, []byte("\x89PNG\r\n\x1a\n"), types.PagePNG},
	{0, []byte("GIF87a"), types.PageGIF},
	{0, []byte("GIF89a"), types.PageGIF},
	{8, []byte("WEBP"), types.PageWebP},
	{0, []byte("BM"), types.PageBMP},
	{0, []byte("II*\x00"), types.PageTIFF},
	{0, []byte("MM\x00*"), types.PageTIFF},
}

// Sniff returns the image format of data from its leading bytes, or
// PageUnknown when data is not a recognized image.
func Sniff(data []byte) types.PageFormat {
	for _, m := range signatures {
		end := m.offset + len(m.sig)
		if len(data) >= end && bytes.Equal(data[m.offset:end], m.sig) {
			if m.format == types.PageWebP && !bytes.HasPrefix(data, []byte("RIFF")) {
				continue
			}
			return m.format
		}
	}
	return types.PageUnknown
}

// Inspect fills Format, Width and Height of page from its bytes without
// re-encoding it. Dimensions stay zero when the image header is damaged.
func Inspect(page *types.Page) {
	page.Format = Sniff(page.Data)
	if page.Format == types.PageUnknown {
		return
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(page.Data))
	if err == nil {
		page.Width, page.Height = cfg.Width, cfg.Height
	}
}

// Transcode re-encodes page to format. JPEG output uses quality (1-100); a
// page already in the requested format is returned as is for PNG, since
// lossless re-encoding cannot change it.
func Transcode(page types.Page, format types.ImageFormat, quality int) (types.Page, error) {
	if page.Format == types.PageUnknown {
		Inspect(&page)
	}
	if format == types.FormatPNG && page.Format == types.PagePNG {
		return page, nil
	}

	img, err := decode(page)
	if err != nil {
		return page, err
	}

	var buf bytes.Buffer
	out := page
	switch format {
	case types.FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return page, fmt.Errorf("encoding page %d as JPEG: %w", page.Index+1, err)
		}
		out.Format = types.PageJPEG
	case types.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return page, fmt.Errorf("encoding page %d as PNG: %w", page.Index+1, err)
		}
		out.Format = types.PagePNG
	default:
		return page, fmt.Errorf("%w: image format %q", types.ErrInvalidOption, format)
	}

	bounds := img.Bounds()
	out.Data = buf.Bytes()
	out.Width, out.Height = bounds.Dx(), bounds.Dy()
	return out, nil
}

func decode(page types.Page) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	r := bytes.NewReader(page.Data)
	switch page.Format {
	case types.PagePNG:
		img, err = png.Decode(r)
	case types.PageJPEG:
		img, err = jpeg.Decode(r)
	case types.PageGIF:
		img, err = gif.Decode(r)
	case types.PageWebP:
		img, err = webp.Decode(r)
	case types.PageBMP:
		img, err = bmp.Decode(r)
	case types.PageTIFF:
		img, err = tiff.Decode(r)
	default:
		return nil, fmt.Errorf("decoding page %d: %w: %q image", page.Index+1, types.ErrUnsupportedFormat, page.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding page %d: %w", page.Index+1, err)
	}
	return img, nil
}
