package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/iksnae/docchat/internal"
)

// Document is one entry of GET /documents/
type Document struct {
	ID         string `json:"_id"`
	Name       string `json:"name,omitempty"`
	Filename   string `json:"filename,omitempty"`
	UploadDate string `json:"uploadDate,omitempty"`
}

// Title is the display name: name, else filename, else the id
func (d Document) Title() string {
	switch {
	case d.Name != "":
		return d.Name
	case d.Filename != "":
		return d.Filename
	default:
		return d.ID
	}
}

// FilterDocuments keeps documents whose name or filename contains term,
// ignoring case. An empty term keeps everything.
func FilterDocuments(docs []Document, term string) []Document {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return docs
	}

	var filtered []Document
	for _, doc := range docs {
		title := doc.Name
		if title == "" {
			title = doc.Filename
		}
		if strings.Contains(strings.ToLower(title), term) {
			filtered = append(filtered, doc)
		}
	}
	return filtered
}

// FindDocument returns the document with id
func FindDocument(docs []Document, id string) (Document, bool) {
	for _, doc := range docs {
		if doc.ID == id {
			return doc, true
		}
	}
	return Document{}, false
}

// PDFInfo describes a local PDF file
type PDFInfo struct {
	Path  string
	Size  int64
	Pages int
}

// InspectPDF checks that path names a readable PDF with at least one page
func InspectPDF(path string) (info *PDFInfo, err error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, &internal.ValidationError{Field: "file", Reason: fmt.Sprintf("%s is not a .pdf file", filepath.Base(path))}
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, &internal.ValidationError{Field: "file", Reason: err.Error()}
	}
	if stat.IsDir() {
		return nil, &internal.ValidationError{Field: "file", Reason: path + " is a directory"}
	}

	// the parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = &internal.ValidationError{Field: "file", Reason: fmt.Sprintf("unreadable PDF: %v", r)}
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &internal.ValidationError{Field: "file", Reason: fmt.Sprintf("unreadable PDF: %v", err)}
	}
	defer func() { _ = f.Close() }()

	pages := r.NumPage()
	if pages < 1 {
		return nil, &internal.ValidationError{Field: "file", Reason: "PDF has no pages"}
	}
	return &PDFInfo{Path: path, Size: stat.Size(), Pages: pages}, nil
}
