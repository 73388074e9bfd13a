package svgdoc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders
	_ "image/png"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var errRemoteImage = errors.New("remote images are not supported")

// openHref returns the content referenced by an image href:
// a data URI or a local file path.
func openHref(href, baseDir string) (io.ReadCloser, error) {
	if data, ok := strings.CutPrefix(href, "data:"); ok {
		header, payload, ok := strings.Cut(data, ",")
		if !ok {
			return nil, fmt.Errorf("invalid data URI")
		}
		var content []byte
		if strings.HasSuffix(header, ";base64") {
			var err error
			content, err = base64.StdEncoding.DecodeString(strings.Join(strings.Fields(payload), ""))
			if err != nil {
				return nil, err
			}
		} else {
			s, err := url.PathUnescape(payload)
			if err != nil {
				return nil, err
			}
			content = []byte(s)
		}
		return io.NopCloser(bytes.NewReader(content)), nil
	}

	if u, err := url.Parse(href); err == nil && u.Scheme != "" {
		if u.Scheme != "file" {
			return nil, errRemoteImage
		}
		href = u.Path
	}
	if !filepath.IsAbs(href) {
		href = filepath.Join(baseDir, href)
	}
	return os.Open(href)
}

// loadImage decodes the image referenced by im. Failures are
// not errors: the image is simply not drawn.
func (ld *loader) loadImage(im *Image) {
	if im.Href == "" {
		return
	}
	r, err := openHref(im.Href, ld.doc.BaseDir)
	if err != nil {
		ld.doc.logger.Debug("image unavailable", "err", err)
		return
	}
	defer r.Close()
	img, format, err := image.Decode(r)
	if err != nil {
		ld.doc.logger.Debug("image unavailable", "err", err)
		return
	}
	ld.doc.logger.Debug("image loaded", "format", format, "bounds", img.Bounds())
	im.Img = img
}
