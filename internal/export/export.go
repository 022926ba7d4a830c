// Package export renders quizzes as plain text for other tools and for paper.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"reading-quiz-service/internal/domain"
)

// Format names an export layout.
type Format string

const (
	FormatSheet Format = "sheet"
	FormatList  Format = "list"
)

// QuestionSeconds is the answer time written to every import-sheet row.
const QuestionSeconds = 20

const sheetOptions = 4

// Render returns quiz in the requested format.
func Render(quiz domain.Quiz, format Format) (string, error) {
	switch format {
	case FormatSheet:
		return ImportSheet(quiz), nil
	case FormatList, "":
		return NumberedList(quiz), nil
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
}

// ImportSheet writes one tab separated row per multiple-choice question:
// text, four option cells (blank when unused), time limit and the 1-based
// correct option. Open questions are left out.
func ImportSheet(quiz domain.Quiz) string {
	rows := make([]string, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		if q.IsOpen() {
			continue
		}
		cells := make([]string, 0, sheetOptions+3)
		cells = append(cells, sanitizeCell(q.Text))
		for i := 0; i < sheetOptions; i++ {
			opt := ""
			if i < len(q.Choice.Options) {
				opt = sanitizeCell(q.Choice.Options[i])
			}
			cells = append(cells, opt)
		}
		cells = append(cells, strconv.Itoa(QuestionSeconds), strconv.Itoa(q.Choice.CorrectIndex+1))
		rows = append(rows, strings.Join(cells, "\t"))
	}
	return strings.Join(rows, "\n")
}

// NumberedList writes a printable worksheet with the answer key inline.
func NumberedList(quiz domain.Quiz) string {
	blocks := make([]string, 0, len(quiz.Questions))
	for i, q := range quiz.Questions {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Text)
		if q.IsOpen() {
			b.WriteString("[Open question]\n")
		} else {
			for j, opt := range q.Choice.Options {
				fmt.Fprintf(&b, "%s) %s\n", optionLetter(j), opt)
			}
			fmt.Fprintf(&b, "Correct: %s\n", optionLetter(q.Choice.CorrectIndex))
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n")
}

func optionLetter(i int) string {
	return string(rune('A' + i))
}

// sanitizeCell keeps a row on one line with the right number of columns.
func sanitizeCell(s string) string {
	return strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
