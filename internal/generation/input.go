package generation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind is the type of source material a teacher supplied.
type Kind string

const (
	KindText Kind = "text"
	KindURL  Kind = "url"
	KindFile Kind = "file"
)

// MaxFileSize bounds uploaded documents.
const MaxFileSize = 20 << 20

// ErrInvalidInput is returned for empty or unsupported source material.
var ErrInvalidInput = errors.New("invalid generation input")

// Input is the raw material for one quiz.
type Input struct {
	Kind     Kind
	Text     string
	URL      string
	Data     []byte
	MIMEType string
}

// TextInput wraps typed or pasted text.
func TextInput(text string) Input {
	return Input{Kind: KindText, Text: text}
}

// URLInput wraps a link to an article.
func URLInput(link string) Input {
	return Input{Kind: KindURL, URL: link}
}

// FileInput wraps an uploaded PDF or image. An empty mediaType is detected
// from the content.
func FileInput(data []byte, mediaType string) Input {
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = mimetype.Detect(data).String()
	}
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	return Input{Kind: KindFile, Data: data, MIMEType: mediaType}
}

// Validate rejects input the gateway cannot send.
func (in Input) Validate() error {
	switch in.Kind {
	case KindText:
		if strings.TrimSpace(in.Text) == "" {
			return fmt.Errorf("%w: text is empty", ErrInvalidInput)
		}
	case KindURL:
		u, err := url.Parse(strings.TrimSpace(in.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q is not an http(s) link", ErrInvalidInput, in.URL)
		}
	case KindFile:
		if len(in.Data) == 0 {
			return fmt.Errorf("%w: file is empty", ErrInvalidInput)
		}
		if len(in.Data) > MaxFileSize {
			return fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, MaxFileSize)
		}
		if !supportedMediaType(in.MIMEType) {
			return fmt.Errorf("%w: unsupported media type %q", ErrInvalidInput, in.MIMEType)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, in.Kind)
	}
	return nil
}

func supportedMediaType(mediaType string) bool {
	switch mediaType {
	case "application/pdf", "image/png", "image/jpeg", "image/webp", "image/heic", "image/heif":
		return true
	}
	return false
}

// EmbeddableText reports whether the source can be shown to students as-is.
func (in Input) EmbeddableText() (string, bool) {
	if in.Kind == KindText {
		return in.Text, true
	}
	return "", false
}
