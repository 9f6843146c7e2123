package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agenthands/absa/internal/core/model"
)

var ErrUnknownFormat = errors.New("unknown corpus format")

type Format string

const (
	FormatXML   Format = "xml"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML, nil
	case ".jsonl", ".json", ".ndjson":
		return FormatJSONL, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// LoadRecords reads span-annotated sentences from a SemEval XML or JSONL file.
func LoadRecords(path string) ([]model.SentenceRecord, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case FormatXML:
		sentences, err := ParseSemEval(f)
		if err != nil {
			return nil, err
		}
		return Records(sentences), nil
	case FormatJSONL:
		return ReadRecords(f)
	}
	return nil, fmt.Errorf("%w: cannot read records from %s", ErrUnknownFormat, format)
}

// LoadGold reads the gold side of an evaluation from a SemEval XML or JSONL file.
func LoadGold(path string) ([]model.GoldSentence, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case FormatXML:
		sentences, err := ParseSemEval(f)
		if err != nil {
			return nil, err
		}
		return Gold(sentences), nil
	case FormatJSONL:
		records, err := ReadRecords(f)
		if err != nil {
			return nil, err
		}
		return GoldFromRecords(records), nil
	}
	return nil, fmt.Errorf("%w: cannot read gold from %s", ErrUnknownFormat, format)
}

func LoadPredictions(path string) ([]model.PredictionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPredictions(f)
}

// LoadSentences returns up to limit sentence texts of a SemEval XML file.
func LoadSentences(path string, limit int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sentences, err := ParseSemEval(f)
	if err != nil {
		return nil, err
	}
	return ExtractSentences(sentences, limit), nil
}

// WriteDataset creates path and writes rows in the format its extension names.
func WriteDataset(path string, rows []model.DatasetRow) (err error) {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	if format == FormatXML {
		return fmt.Errorf("%w: cannot write dataset as %s", ErrUnknownFormat, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if format == FormatCSV {
		return WriteDatasetCSV(f, rows)
	}
	return WriteDatasetJSONL(f, rows)
}
