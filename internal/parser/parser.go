package parser

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"medicalbot/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

const defaultPageNumber = 1

type loaderFunc func(filePath string) ([]models.Page, error)

var loaders = map[string]loaderFunc{
	".pdf":  parsePDF,
	".docx": parseDOCX,
	".pptx": parsePPTX,
	".xlsx": parseXLSX,
	".ods":  parseODS,
	".txt":  parseText,
	".md":   parseText,
}

// Supported reports whether filePath has an extension the loader understands.
func Supported(filePath string) bool {
	_, ok := loaders[strings.ToLower(filepath.Ext(filePath))]
	return ok
}

// LoadFile extracts the pages of a single document.
func LoadFile(filePath string) ([]models.Page, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	load, ok := loaders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
	pages, err := load(filePath)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}
	return pages, nil
}

// LoadDir extracts every supported document under dir, in lexical order.
// Unsupported files are skipped.
func LoadDir(dir string, recursive bool) ([]models.Page, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !Supported(path) {
			log.Debug().Str("file", path).Msg("Skipping unsupported file")
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var pages []models.Page
	for _, f := range files {
		p, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		log.Info().Str("file", f).Int("pages", len(p)).Msg("Loaded document")
		pages = append(pages, p...)
	}
	return pages, nil
}

func parsePDF(filePath string) ([]models.Page, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []models.Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = appendPage(pages, filePath, i, pageText)
	}
	return pages, nil
}

func parseDOCX(filePath string) ([]models.Page, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	// DOCX has no page numbers
	content := stripXMLTags(r.Editable().GetContent())
	return appendPage(nil, filePath, defaultPageNumber, content), nil
}

func parsePPTX(filePath string) ([]models.Page, error) {
	f, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []models.Page
	slideNum := 0
	for _, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") || !strings.HasSuffix(file.Name, ".xml") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		slideNum++
		pages = appendPage(pages, filePath, slideNum, extractTextFromXML(string(data)))
	}
	return pages, nil
}

func parseXLSX(filePath string) ([]models.Page, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var pages []models.Page
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		pages = appendPage(pages, filePath, sheetNum+1, text.String())
	}
	return pages, nil
}

func parseODS(filePath string) ([]models.Page, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []models.Page
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheetName, err)
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			text.WriteString(strings.Join(row, "\t"))
			text.WriteString("\n")
		}
		pages = appendPage(pages, filePath, sheetNum+1, text.String())
	}
	return pages, nil
}

func parseText(filePath string) ([]models.Page, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return appendPage(nil, filePath, defaultPageNumber, string(data)), nil
}

// appendPage drops pages that carry no text.
func appendPage(pages []models.Page, source string, number int, content string) []models.Page {
	if strings.TrimSpace(content) == "" {
		return pages
	}
	return append(pages, models.Page{Source: source, PageNumber: number, Content: content})
}

func extractTextFromXML(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		endIdx := strings.Index(part, "</a:t>")
		if endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}

// stripXMLTags turns WordprocessingML into plain text, one paragraph per line.
func stripXMLTags(s string) string {
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	var out strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			out.WriteRune(r)
		}
	}
	return out.String()
}
