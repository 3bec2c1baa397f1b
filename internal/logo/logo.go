// Package logo decodes template logos given as base64 data URIs.
package logo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxHeight is the tallest logo kept at full resolution. Taller images are
// downscaled before embedding.
const MaxHeight = 512

// Image types, named the way the page renderer registers them.
const (
	TypePNG = "PNG"
	TypeJPG = "JPG"
)

// ErrDecode is returned for logos that cannot be used.
var ErrDecode = errors.New("logo decode")

// Image is a decoded logo ready to embed.
type Image struct {
	Data   []byte
	Type   string // TypePNG or TypeJPG
	Width  int    // Pixels
	Height int
}

// Decode parses a data URI (or bare base64) into an embeddable image. The
// codec is chosen from the URI prefix and confirmed by sniffing the bytes;
// GIF, WebP and BMP logos are transcoded to PNG.
func Decode(uri string) (*Image, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("%w: empty logo", ErrDecode)
	}

	declared := TypePNG
	payload := uri
	if strings.HasPrefix(uri, "data:") {
		comma := strings.IndexByte(uri, ',')
		if comma < 0 {
			return nil, fmt.Errorf("%w: malformed data uri", ErrDecode)
		}
		header := strings.ToLower(uri[:comma])
		if strings.Contains(header, "jpeg") || strings.Contains(header, "jpg") {
			declared = TypeJPG
		}
		payload = uri[comma+1:]
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	img := &Image{Data: data, Type: declared}
	switch mt := mimetype.Detect(data); {
	case mt.Is("image/png"):
		img.Type = TypePNG
	case mt.Is("image/jpeg"):
		img.Type = TypeJPG
	case mt.Is("image/gif"), mt.Is("image/webp"), mt.Is("image/bmp"):
		if img, err = transcode(data); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unsupported image type %s", ErrDecode, mt.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	img.Width, img.Height = cfg.Width, cfg.Height

	if img.Height > MaxHeight {
		return img.ScaleToHeight(MaxHeight)
	}
	return img, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

func transcode(data []byte) (*Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", ErrDecode, err)
	}
	return &Image{Data: buf.Bytes(), Type: TypePNG}, nil
}

// WidthFor returns the width that keeps the aspect ratio at height h.
func (img *Image) WidthFor(h float64) float64 {
	return h * float64(img.Width) / float64(img.Height)
}

// ScaleToHeight resamples the image to px pixels tall, keeping its type.
func (img *Image) ScaleToHeight(px int) (*Image, error) {
	if px <= 0 {
		return nil, fmt.Errorf("%w: bad target height %d", ErrDecode, px)
	}
	if px == img.Height {
		return img, nil
	}
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	w := int(math.Max(1, math.Round(img.WidthFor(float64(px)))))
	dst := image.NewRGBA(image.Rect(0, 0, w, px))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if img.Type == TypeJPG {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90})
	} else {
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: re-encode: %v", ErrDecode, err)
	}
	return &Image{Data: buf.Bytes(), Type: img.Type, Width: w, Height: px}, nil
}
