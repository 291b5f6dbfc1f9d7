package ocr

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TSV column order written by "tesseract ... tsv".
const (
	tsvLevel = iota
	tsvPage
	tsvBlock
	tsvPar
	tsvLine
	tsvWord
	tsvLeft
	tsvTop
	tsvWidth
	tsvHeight
	tsvConf
	tsvText
	tsvColumns
)

// tsvWordLevel is the row level for individual words.
const tsvWordLevel = 5

type tsvLineKey struct{ page, block, par, line int }

// parseTSV groups word rows by (page, block, paragraph, line) in order of first
// appearance. Rows with empty text are skipped.
func parseTSV(r io.Reader) ([]Line, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var lines []Line
	index := make(map[tsvLineKey]int)
	row := 0

	for sc.Scan() {
		row++
		raw := strings.TrimRight(sc.Text(), "\r")
		if raw == "" {
			continue
		}
		fields := strings.SplitN(raw, "\t", tsvColumns)
		if row == 1 && fields[0] == "level" {
			continue
		}
		if len(fields) < tsvColumns-1 {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", row, tsvColumns, len(fields))
		}

		nums := make([]int, tsvConf)
		for i := 0; i < tsvConf; i++ {
			n, err := strconv.Atoi(fields[i])
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", row, i+1, err)
			}
			nums[i] = n
		}
		if nums[tsvLevel] != tsvWordLevel || len(fields) < tsvColumns {
			continue
		}
		text := strings.TrimSpace(fields[tsvText])
		if text == "" {
			continue
		}

		conf, err := strconv.ParseFloat(fields[tsvConf], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d confidence: %w", row, err)
		}
		if conf >= 0 {
			conf /= 100.0
		} else {
			conf = -1
		}

		key := tsvLineKey{nums[tsvPage], nums[tsvBlock], nums[tsvPar], nums[tsvLine]}
		idx, ok := index[key]
		if !ok {
			idx = len(lines)
			index[key] = idx
			lines = append(lines, Line{})
		}

		left, top := int32(nums[tsvLeft]), int32(nums[tsvTop])
		lines[idx].Words = append(lines[idx].Words, Word{
			Text:       text,
			LineIndex:  uint16(idx),
			Rect:       Rect{XMin: left, YMin: top, XMax: left + int32(nums[tsvWidth]), YMax: top + int32(nums[tsvHeight])},
			Confidence: conf,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
