package services

import (
	"bytes"
	"context"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/AlexNguyen244/casebase-takehome/models"
)

func init() {
	// Load .env file from the current directory
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	err := license.SetMeteredKey(os.Getenv("UNIDOC_LICENSE_KEY"))
	if err != nil {
		log.Printf("ERROR: Failed to set Unidoc license key: %v. PDF processing will fail.", err)
	}
}

// PDFParserService extracts plain text from uploaded PDF bytes using UniPDF.
type PDFParserService struct{}

func NewPDFParserService() *PDFParserService {
	return &PDFParserService{}
}

// Parse extracts per-page text from a PDF. Pages with no extractable text
// are skipped in the result but still counted in TotalPages. FullText joins
// the page texts with a blank line in page order; downstream page
// attribution relies on that ordering staying monotonic.
func (p *PDFParserService) Parse(ctx context.Context, content []byte, fileName string) (*models.ParsedDocument, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ExtractionError{FileName: fileName, Err: err}
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, &ExtractionError{FileName: fileName, Err: err}
	}

	var pages []models.ExtractedPage
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, &ExtractionError{FileName: fileName, Err: err}
		}

		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, &ExtractionError{FileName: fileName, Err: err}
		}

		ex, err := extractor.New(page)
		if err != nil {
			return nil, &ExtractionError{FileName: fileName, Err: err}
		}

		text, err := ex.ExtractText()
		if err != nil {
			return nil, &ExtractionError{FileName: fileName, Err: err}
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, models.ExtractedPage{PageNumber: i, Text: text})
	}

	fullText := joinPages(pages)

	log.Printf("PARSER: Successfully parsed %s: %d pages, %d characters", fileName, numPages, len(fullText))

	return &models.ParsedDocument{
		FileName:       fileName,
		TotalPages:     numPages,
		Pages:          pages,
		FullText:       fullText,
		CharacterCount: len(fullText),
	}, nil
}

func joinPages(pages []models.ExtractedPage) string {
	texts := make([]string, len(pages))
	for i, page := range pages {
		texts[i] = page.Text
	}
	return strings.Join(texts, "\n\n")
}
