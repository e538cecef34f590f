// package formatter provides functions to export a book library to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/inkwell/internal/models"
)

// ExportToCSV converts a book listing to CSV format with columns: ID, Title, Domain, SubNiche, Pages, Status, Downloadable, Created
func ExportToCSV(books []models.Book) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Domain", "SubNiche", "Pages", "Status", "Downloadable", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, book := range books {
		record := []string{
			strconv.Itoa(book.ID),
			book.Title,
			book.Domain,
			book.SubNiche,
			strconv.Itoa(book.PageLength),
			string(book.Status),
			strconv.FormatBool(book.CanDownload),
			book.CreatedAt,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a book listing to Markdown format
func ExportToMarkdown(books []models.Book, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Book Library"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Books**: %d\n\n", len(books)))

	buf.WriteString("## Books\n\n")
	for i, book := range books {
		nichePart := ""
		if book.SubNiche != "" {
			nichePart = fmt.Sprintf(" (%s)", book.SubNiche)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s [%s, %dp]\n", i+1, book.Title, nichePart, book.Status, book.PageLength))
		if book.ErrorMessage != nil {
			buf.WriteString(fmt.Sprintf("   - failed: %s\n", *book.ErrorMessage))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a book listing to plain text format
func ExportToText(books []models.Book) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Books: %d\n\n", len(books)))
	for i, book := range books {
		marker := " "
		if book.CanDownload {
			marker = "*"
		}
		buf.WriteString(fmt.Sprintf("%d. %s %s [%s]\n", i+1, marker, book.Title, book.Status))
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates an indented JSON representation of the listing
func ToMetadataJSON(books []models.Book) ([]byte, error) {
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal books: %w", err)
	}
	return data, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	BooksFile    string
	MetadataFile string
}

// WriteCSVExport exports a book listing to CSV with an accompanying metadata JSON file.
//
// Creates {base}_books.csv and {base}_metadata.json
func WriteCSVExport(books []models.Book, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "library"
	}

	csvData, err := ExportToCSV(books)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	booksFile := baseFilepath + "_books.csv"
	if err := os.WriteFile(booksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(books)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		BooksFile:    booksFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a book listing to {dir}/README.md.
func WriteMarkdownExport(books []models.Book, outputDir, title string) (string, error) {
	if outputDir == "" {
		outputDir = "library"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(books, title)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport exports a book listing to plain text format.
//
// Defaults to library_books.txt as the filename.
func WriteTextExport(books []models.Book, filepath string) (string, error) {
	if filepath == "" {
		filepath = "library_books.txt"
	}

	textData, err := ExportToText(books)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
