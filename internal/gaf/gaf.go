// Package gaf parses gene annotation (GAF) files: one tab-separated row per
// gene/GO-term pair. Rows may carry two extra trailing columns with the GO
// term's label and definition pre-resolved.
package gaf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one annotation row. List-valued columns are already split on
// the GAF '|' separator.
type Record struct {
	DB           string
	ObjectID     string
	ObjectSymbol string
	Qualifier    string
	GOID         string
	Reference    string
	EvidenceCode string
	WithOrFrom   string
	Aspect       string
	ObjectName   string
	Synonyms     []string
	ObjectType   string
	Taxon        []string
	Date         string
	AssignedBy   string

	GOLabel      string
	GODefinition string
}

const minColumns = 15

func ParseFile(path string) ([]Record, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("gaf: open %s: %w", path, err)
	}
	defer f.Close()
	recs, skipped, err := Parse(f)
	if err != nil {
		return nil, 0, fmt.Errorf("gaf: parse %s: %w", path, err)
	}
	return recs, skipped, nil
}

// Parse returns the well-formed rows plus the count of truncated rows it
// skipped. A malformed row never aborts the parse.
func Parse(r io.Reader) ([]Record, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var records []Record
	line := 0
	skipped := 0
	for scanner.Scan() {
		line++
		raw := scanner.Text()
		if raw == "" || strings.HasPrefix(raw, "!") {
			continue
		}
		cols := strings.Split(raw, "\t")
		if len(cols) < minColumns {
			skipped++
			continue
		}

		rec := Record{
			DB:           strings.TrimSpace(cols[0]),
			ObjectID:     strings.TrimSpace(cols[1]),
			ObjectSymbol: strings.TrimSpace(cols[2]),
			Qualifier:    strings.TrimSpace(cols[3]),
			GOID:         strings.TrimSpace(cols[4]),
			Reference:    strings.TrimSpace(cols[5]),
			EvidenceCode: strings.TrimSpace(cols[6]),
			WithOrFrom:   strings.TrimSpace(cols[7]),
			Aspect:       strings.TrimSpace(cols[8]),
			ObjectName:   strings.TrimSpace(cols[9]),
			Synonyms:     splitList(cols[10]),
			ObjectType:   strings.TrimSpace(cols[11]),
			Taxon:        splitList(cols[12]),
			Date:         strings.TrimSpace(cols[13]),
			AssignedBy:   strings.TrimSpace(cols[14]),
		}
		if len(cols) > 17 {
			rec.GOLabel = strings.TrimSpace(cols[17])
		}
		if len(cols) > 18 {
			rec.GODefinition = strings.TrimSpace(cols[18])
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan: %w", err)
	}
	return records, skipped, nil
}

func splitList(col string) []string {
	col = strings.TrimSpace(col)
	if col == "" {
		return nil
	}
	parts := strings.Split(col, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
