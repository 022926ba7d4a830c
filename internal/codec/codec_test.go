package codec

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
	"testing"

	"reading-quiz-service/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func sampleQuiz() domain.Quiz {
	closed := domain.NewClosedQuestion("q1", domain.CategoryMainIdea, "Waar gaat de tekst over? 🦦", []string{"Otters", "Bevers", "Vissen", "Eenden"}, 0)
	closed.Explanation = "De tekst noemt otters in elke alinea."
	return domain.Quiz{
		ID:       "quiz-1",
		Title:    "De otter 🦦 – مرحبا – 你好",
		FullText: "Otters leven in het water.\nשלום עולם\n",
		Questions: []domain.Question{
			closed,
			domain.NewClosedQuestion("q2", domain.CategoryWH, "Wie?", []string{"", "עברית"}, 1),
			domain.NewOpenQuestion("q3", domain.CategoryOpinion, "Wat vind jij? <b>&</b>"),
		},
		CreatedAt: 1718000000123,
	}
}

func TestRoundTrip(t *testing.T) {
	cases := map[string]domain.Quiz{
		"unicode": sampleQuiz(),
		"empty strings": {
			ID:        "x",
			Questions: []domain.Question{domain.NewOpenQuestion("q", domain.CategoryTextType, "?")},
		},
	}
	for name, quiz := range cases {
		t.Run(name, func(t *testing.T) {
			encoded, err := Encode(quiz)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if diff := cmp.Diff(quiz, decoded); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeAlphabet(t *testing.T) {
	encoded, err := Encode(sampleQuiz())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, r := range encoded {
		ok := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '+' || r == '/' || r == '='
		if !ok {
			t.Fatalf("unexpected character %q in payload", r)
		}
	}
}

func TestDecodeFailures(t *testing.T) {
	cases := map[string]struct {
		input  string
		reason Reason
	}{
		"empty":          {"", ReasonInvalidEncoding},
		"not base64":     {"not-valid-base64!!", ReasonInvalidEncoding},
		"non utf8":       {base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd}), ReasonInvalidUTF8},
		"not json":       {base64.StdEncoding.EncodeToString([]byte("hello")), ReasonMalformedJSON},
		"json array":     {base64.StdEncoding.EncodeToString([]byte(`[1,2]`)), ReasonMalformedJSON},
		"missing fields": {base64.StdEncoding.EncodeToString([]byte(`{"title":"x"}`)), ReasonInvalidQuiz},
		"index out of range": {base64.StdEncoding.EncodeToString([]byte(
			`{"id":"a","title":"t","fullText":"","createdAt":1,"questions":[{"id":"q","category":"Tekstsoort","text":"?","isOpen":false,"options":["a","b"],"correctAnswerIndex":5}]}`,
		)), ReasonInvalidQuiz},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			quiz, err := Decode(tc.input)
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected DecodeError, got %v", err)
			}
			if decodeErr.Reason != tc.reason {
				t.Fatalf("expected reason %s, got %s", tc.reason, decodeErr.Reason)
			}
			if quiz.ID != "" || quiz.Questions != nil {
				t.Fatalf("expected zero quiz on failure, got %+v", quiz)
			}
		})
	}
}

func TestDecodeLenientInput(t *testing.T) {
	encoded, err := Encode(sampleQuiz())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	unpadded := strings.TrimRight(encoded, "=")
	if _, err := Decode(unpadded); err != nil {
		t.Fatalf("unpadded decode: %v", err)
	}
	spaced := strings.ReplaceAll(encoded, "+", " ")
	if _, err := Decode(spaced + "\n"); err != nil {
		t.Fatalf("decode with spaces for plus: %v", err)
	}

	raw, err := decodeBase64(" /8=")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != 2 || raw[0] != 0xfb || raw[1] != 0xff {
		t.Fatalf("expected leading space read as plus, got %x", raw)
	}
}

func TestLinkRoundTrip(t *testing.T) {
	quiz := sampleQuiz()
	link, err := Link("https://quiz.example.org/play?lang=nl", quiz)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	if u.Query().Get("lang") != "nl" {
		t.Fatalf("existing query lost: %s", link)
	}
	if strings.Contains(u.RawQuery, "+") {
		t.Fatalf("plus must be escaped in query: %s", u.RawQuery)
	}

	decoded, err := FromLink(link)
	if err != nil {
		t.Fatalf("from link: %v", err)
	}
	if diff := cmp.Diff(quiz, decoded); diff != "" {
		t.Fatalf("link round trip mismatch (-want +got):\n%s", diff)
	}

	param, _ := Encode(quiz)
	if _, err := FromLink(param); err != nil {
		t.Fatalf("bare param: %v", err)
	}
}
