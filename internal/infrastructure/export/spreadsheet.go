package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
)

const (
	questionsSheet  = "Questions"
	flashcardsSheet = "Flashcards"
)

// WriteQuestions renders a question set as a single-sheet workbook.
func WriteQuestions(w io.Writer, questions domain.QuestionSet) error {
	rows := make([][]any, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, []any{q.Question, q.Answer, q.Type, q.Location})
	}
	return writeSheet(w, questionsSheet, []any{"Question", "Answer", "Type", "Location"}, rows)
}

// WriteFlashcards renders a flashcard deck as a single-sheet workbook.
func WriteFlashcards(w io.Writer, cards domain.FlashcardSet) error {
	rows := make([][]any, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, []any{c.Front, c.Back, c.Location})
	}
	return writeSheet(w, flashcardsSheet, []any{"Front", "Back", "Location"}, rows)
}

func writeSheet(w io.Writer, sheet string, header []any, rows [][]any) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolve cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return fmt.Errorf("resolve column: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 48); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
