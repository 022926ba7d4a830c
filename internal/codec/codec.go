// Package codec turns a quiz into a string that fits in a URL query parameter
// and back. The payload is the quiz JSON, as UTF-8, in standard base64.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"reading-quiz-service/internal/domain"
)

// LinkParam is the query parameter carrying an encoded quiz.
const LinkParam = "d"

// Encode serializes quiz for a portable link.
func Encode(quiz domain.Quiz) (string, error) {
	data, err := json.Marshal(quiz)
	if err != nil {
		return "", &EncodeError{Err: err}
	}
	// json.Marshal already yields UTF-8, so the bytes go straight to base64.
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode reverses Encode. Every failure is a *DecodeError; a quiz that parses
// but breaks the data model is rejected with ReasonInvalidQuiz.
func Decode(encoded string) (domain.Quiz, error) {
	raw, err := decodeBase64(encoded)
	if err != nil {
		return domain.Quiz{}, &DecodeError{Reason: ReasonInvalidEncoding, Err: err}
	}
	if !utf8.Valid(raw) {
		return domain.Quiz{}, &DecodeError{Reason: ReasonInvalidUTF8}
	}

	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, &DecodeError{Reason: ReasonMalformedJSON, Err: err}
	}
	if err := domain.Validate(quiz); err != nil {
		return domain.Quiz{}, &DecodeError{Reason: ReasonInvalidQuiz, Err: err}
	}
	return quiz, nil
}

var errEmptyPayload = errors.New("empty payload")

// decodeBase64 accepts padded or unpadded standard base64. Spaces are read
// as '+', which is what an unescaped '+' turns into after query parsing.
func decodeBase64(encoded string) ([]byte, error) {
	s := strings.Trim(encoded, "\r\n\t")
	if s == "" {
		return nil, errEmptyPayload
	}
	s = strings.ReplaceAll(s, " ", "+")
	if strings.HasSuffix(s, "=") || len(s)%4 == 0 {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}

// Link returns base with the encoded quiz set as the LinkParam query value.
func Link(base string, quiz domain.Quiz) (string, error) {
	encoded, err := Encode(quiz)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", &EncodeError{Err: err}
	}
	q := u.Query()
	q.Set(LinkParam, encoded)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FromLink decodes the quiz carried by a full link, or by a bare parameter value.
func FromLink(link string) (domain.Quiz, error) {
	if u, err := url.Parse(strings.TrimSpace(link)); err == nil && u.RawQuery != "" {
		if param := u.Query().Get(LinkParam); param != "" {
			return Decode(param)
		}
	}
	return Decode(link)
}
