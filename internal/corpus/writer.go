package corpus

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/agenthands/absa/internal/core/model"
)

var csvHeader = []string{"id", "sentence", "sentence_raw", "aspect", "polarity", "window", "input_full", "aligned"}

// WriteDatasetJSONL writes one JSON object per row.
func WriteDatasetJSONL(w io.Writer, rows []model.DatasetRow) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteDatasetCSV writes rows as CSV with a header line.
func WriteDatasetCSV(w io.Writer, rows []model.DatasetRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		err := cw.Write([]string{
			row.ID,
			row.Sentence,
			row.SentenceRaw,
			row.Aspect,
			string(row.Polarity),
			row.Window,
			row.InputFull,
			strconv.FormatBool(row.Aligned),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLines writes each line followed by a newline.
func WriteLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := bw.WriteString(l + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
