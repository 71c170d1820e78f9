package jats

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"medlit/internal/chunker"
	"medlit/internal/models"
	"medlit/internal/util"
)

// Publishers that disallow full-text distribution leave this marker in the
// deposited XML; such papers carry only an abstract and are not ingested.
const restrictionMarker = "does not allow downloading of the full text in XML form"

const untitledSection = "Untitled Section"

// Processor turns a JATS XML paper file into a Paper record plus its
// ordered, provenance-tagged content chunks.
type Processor struct {
	chunkSize    int
	chunkOverlap int
	topics       *TopicCache
}

type ProcessedPaper struct {
	Paper  models.Paper
	Chunks []models.PaperChunk
}

func NewProcessor(chunkSize, chunkOverlap int, topics *TopicCache) *Processor {
	return &Processor{chunkSize: chunkSize, chunkOverlap: chunkOverlap, topics: topics}
}

// ProcessFile parses one paper. Abstract-only papers return
// util.ErrAbstractOnly so callers can tell an intentional skip from a parse
// failure; any other error means the paper must be skipped whole, never
// partially ingested.
func (p *Processor) ProcessFile(path string) (*ProcessedPaper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read paper: %w", err)
	}
	if bytes.Contains(data, []byte(restrictionMarker)) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), util.ErrAbstractOnly)
	}

	root, err := parseTree(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse jats %s: %w", filepath.Base(path), err)
	}

	body := root.find("body")
	if body == nil || !body.hasChildElements() {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), util.ErrAbstractOnly)
	}

	title := util.NormalizeSpace(textOf(root.find("article-title")))
	if title == "" {
		title = filepath.Base(path)
	}

	paper := models.Paper{
		Title:     title,
		PMCID:     trimmedText(root.findWithAttr("article-id", "pub-id-type", "pmcid")),
		DOI:       trimmedText(root.findWithAttr("article-id", "pub-id-type", "doi")),
		Journal:   trimmedText(root.find("journal-title")),
		Year:      extractYear(root),
		PaperType: extractPaperType(root),
		Authors:   extractAuthors(root),
		Keywords:  extractKeywords(root),
		Topic:     p.topics.Lookup(title),
	}

	chunks := make([]models.PaperChunk, 0)
	index := 0

	// The abstract is always one chunk, regardless of length, and always
	// first when present.
	if abstract := util.NormalizeSpace(textOf(root.find("abstract"))); abstract != "" {
		chunks = append(chunks, p.contextChunk(paper, "Abstract", abstract, index))
		index++
	}

	for _, sec := range body.findAll("sec") {
		label := untitledSection
		if t := sec.child("title"); t != nil {
			if s := util.NormalizeSpace(t.text()); s != "" {
				label = s
			}
		}
		parts := make([]string, 0)
		for _, para := range sec.findAll("p") {
			if s := strings.TrimSpace(para.text()); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			continue
		}
		content := util.NormalizeSpace(strings.Join(parts, " "))
		for _, piece := range chunker.Split(content, p.chunkSize, p.chunkOverlap) {
			chunks = append(chunks, p.contextChunk(paper, label, piece, index))
			index++
		}
	}

	return &ProcessedPaper{Paper: paper, Chunks: chunks}, nil
}

func (p *Processor) contextChunk(paper models.Paper, section, text string, index int) models.PaperChunk {
	return models.PaperChunk{
		Content:      fmt.Sprintf("Paper: %s | Section: %s\n%s", paper.Title, section, text),
		PaperTitle:   paper.Title,
		PMCID:        paper.PMCID,
		DOI:          paper.DOI,
		Journal:      paper.Journal,
		Year:         paper.Year,
		Topic:        paper.Topic,
		SectionTitle: section,
		ChunkIndex:   index,
	}
}

func extractYear(root *element) *int {
	for _, pd := range root.findAll("pub-date") {
		y := pd.child("year")
		if y == nil {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(y.text()))
		if err != nil {
			return nil
		}
		return &n
	}
	return nil
}

func extractPaperType(root *element) string {
	group := root.findWithAttr("subj-group", "subj-group-type", "heading")
	if group == nil {
		return ""
	}
	return trimmedText(group.child("subject"))
}

func extractAuthors(root *element) []string {
	group := root.find("contrib-group")
	if group == nil {
		return nil
	}
	var authors []string
	for _, contrib := range group.findAll("contrib") {
		if contrib.attr("contrib-type") != "author" {
			continue
		}
		surname := trimmedText(contrib.find("surname"))
		if surname == "" {
			continue
		}
		if given := trimmedText(contrib.find("given-names")); given != "" {
			authors = append(authors, given+" "+surname)
		} else {
			authors = append(authors, surname)
		}
	}
	return authors
}

func extractKeywords(root *element) []string {
	var keywords []string
	for _, kwd := range root.findAll("kwd") {
		if s := strings.TrimSpace(kwd.text()); s != "" {
			keywords = append(keywords, s)
		}
	}
	return keywords
}

func textOf(e *element) string {
	if e == nil {
		return ""
	}
	return e.text()
}

func trimmedText(e *element) string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.text())
}
