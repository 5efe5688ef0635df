package scaffold

import (
	"fmt"
	"strings"

	gopdf "github.com/ledongthuc/pdf"
)

// maxDesignDocPages caps how much of a design brief is ingested in one
// pass, mirroring the teacher's own per-request PDF page cap.
const maxDesignDocPages = 40

// IngestDesignDoc extracts the text of a PDF design brief at path and
// returns it for use as Brief.Notes. This is the generator's optional
// PDF-ingestion path (spec §6: "the technical-brief JSON store used only
// by the scaffold generator"); a project scaffolded without a design doc
// simply leaves Brief.Notes empty.
func IngestDesignDoc(path string) (string, error) {
	pdfFile, reader, err := gopdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("scaffold: open design doc: %w", err)
	}
	defer pdfFile.Close()

	totalPages := reader.NumPage()
	if totalPages == 0 {
		return "", nil
	}
	endPage := totalPages
	if endPage > maxDesignDocPages {
		endPage = maxDesignDocPages
	}

	var b strings.Builder
	for p := 1; p <= endPage; p++ {
		page := reader.Page(p)
		if page.V.IsNull() {
			continue
		}
		text, extractErr := page.GetPlainText(nil)
		if extractErr != nil {
			fmt.Fprintf(&b, "[page %d: error extracting text: %s]\n", p, extractErr)
			continue
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	if totalPages > maxDesignDocPages {
		fmt.Fprintf(&b, "\n[design doc has %d pages; only the first %d were ingested]\n", totalPages, maxDesignDocPages)
	}
	return strings.TrimSpace(b.String()), nil
}
