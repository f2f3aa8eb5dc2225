// Package kgml parses KEGG pathway markup (KGML) files into the gene
// entries and interaction records consumed by the graph builder.
package kgml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

type Pathway struct {
	ID           string
	Name         string
	Genes        []GeneEntry
	Interactions []Interaction
}

// GeneEntry is one KGML <entry type="gene">. Names are the KEGG identifiers
// from the entry's name attribute; Symbols are the display symbols from the
// graphics element.
type GeneEntry struct {
	ID      string
	Names   []string
	Symbols []string
}

type Interaction struct {
	Entry1   string
	Entry2   string
	Type     string
	Subtypes []string
}

type xmlPathway struct {
	XMLName   xml.Name      `xml:"pathway"`
	Number    string        `xml:"number,attr"`
	Title     string        `xml:"title,attr"`
	Entries   []xmlEntry    `xml:"entry"`
	Relations []xmlRelation `xml:"relation"`
}

type xmlEntry struct {
	ID       string       `xml:"id,attr"`
	Type     string       `xml:"type,attr"`
	Name     string       `xml:"name,attr"`
	Graphics *xmlGraphics `xml:"graphics"`
}

type xmlGraphics struct {
	Name string `xml:"name,attr"`
}

type xmlRelation struct {
	Entry1   string       `xml:"entry1,attr"`
	Entry2   string       `xml:"entry2,attr"`
	Type     string       `xml:"type,attr"`
	Subtypes []xmlSubtype `xml:"subtype"`
}

type xmlSubtype struct {
	Name string `xml:"name,attr"`
}

func ParseFile(path string) (*Pathway, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("kgml: open %s: %w", path, err)
	}
	defer f.Close()
	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("kgml: parse %s: %w", path, err)
	}
	return p, nil
}

func Parse(r io.Reader) (*Pathway, error) {
	var doc xmlPathway
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode pathway: %w", err)
	}
	if strings.TrimSpace(doc.Number) == "" {
		return nil, fmt.Errorf("pathway has no number attribute")
	}

	p := &Pathway{
		ID:   strings.TrimSpace(doc.Number),
		Name: strings.TrimSpace(doc.Title),
	}

	for _, e := range doc.Entries {
		if e.Type != "gene" {
			continue
		}
		entry := GeneEntry{
			ID:    strings.TrimSpace(e.ID),
			Names: strings.Fields(e.Name),
		}
		if e.Graphics != nil {
			for _, sym := range strings.Split(e.Graphics.Name, ", ") {
				// KGML truncates long symbol lists with a trailing ellipsis.
				sym = strings.TrimSuffix(strings.TrimSpace(sym), "...")
				if sym != "" {
					entry.Symbols = append(entry.Symbols, sym)
				}
			}
		}
		p.Genes = append(p.Genes, entry)
	}

	for _, rel := range doc.Relations {
		inter := Interaction{
			Entry1: strings.TrimSpace(rel.Entry1),
			Entry2: strings.TrimSpace(rel.Entry2),
			Type:   strings.TrimSpace(rel.Type),
		}
		for _, st := range rel.Subtypes {
			if name := strings.TrimSpace(st.Name); name != "" {
				inter.Subtypes = append(inter.Subtypes, name)
			}
		}
		p.Interactions = append(p.Interactions, inter)
	}

	return p, nil
}
