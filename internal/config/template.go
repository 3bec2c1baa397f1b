package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/msgexport/internal/render"
	"github.com/goccy/go-yaml"
)

// MaxTemplateSize limits template files; logos are referenced by path,
// not inlined, so real templates are tiny.
const MaxTemplateSize = 1 << 20

var ErrTemplateTooLarge = errors.New("template file too large")

// templateFile is the on-disk form of a render.Template. LogoFile, when
// set, is read relative to the template and inlined as a data URI.
type templateFile struct {
	Variant         render.Variant `yaml:"variant"`
	Font            render.Font    `yaml:"font"`
	Logo            string         `yaml:"logo,omitempty"`
	LogoFile        string         `yaml:"logoFile,omitempty"`
	LogoPosition    render.Anchor  `yaml:"logoPosition,omitempty"`
	SenderText      string         `yaml:"senderText,omitempty"`
	RecipientText   string         `yaml:"recipientText,omitempty"`
	FooterText      string         `yaml:"footerText,omitempty"`
	ShowPageNumbers bool           `yaml:"showPageNumbers"`
}

// LoadTemplate reads a YAML template such as:
//
//	variant: footer
//	font: times
//	logoFile: logo.png
//	logoPosition: top-right
//	footerText: |
//	  Acme Ltd
//	  Registered in England
//	showPageNumbers: true
//
// Unknown keys are rejected. The template is validated before it is
// returned.
func LoadTemplate(path string) (*render.Template, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat template: %w", err)
	}
	if info.Size() > MaxTemplateSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTemplateTooLarge, info.Size(), MaxTemplateSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	var tf templateFile
	if err := yaml.UnmarshalWithOptions(data, &tf, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}

	tmpl := render.Template{
		Variant:         tf.Variant,
		Font:            tf.Font,
		Logo:            tf.Logo,
		LogoPosition:    tf.LogoPosition,
		SenderText:      tf.SenderText,
		RecipientText:   tf.RecipientText,
		FooterText:      tf.FooterText,
		ShowPageNumbers: tf.ShowPageNumbers,
	}
	if tf.LogoFile != "" {
		logoPath := tf.LogoFile
		if !filepath.IsAbs(logoPath) {
			logoPath = filepath.Join(filepath.Dir(path), logoPath)
		}
		img, err := os.ReadFile(logoPath)
		if err != nil {
			return nil, fmt.Errorf("read logo: %w", err)
		}
		tmpl.Logo = logoDataURI(logoPath, img)
	}

	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func logoDataURI(path string, data []byte) string {
	mime := "image/png"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
