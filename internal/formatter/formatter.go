// package formatter provides functions to export analyses and the library to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/melodycompare/mcx/internal/models"
)

// ExportLibraryToCSV converts library items to CSV with columns: ID, Title, Date, Risk Level, Risk Score, Similarity, AI Probability
func ExportLibraryToCSV(items []models.LibraryItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Date", "Risk Level", "Risk Score", "Similarity", "AI Probability"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{
			item.ID,
			item.SongTitle,
			item.Date.Format(time.RFC3339),
			string(item.Data.RiskLevel),
			formatScore(item.Data.RiskScore),
			formatScore(item.Data.OverallSimilarity),
			formatScore(item.Data.AIProbability),
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

// ExportAnalysisToMarkdown renders one analysis as a Markdown document,
// optionally appending the generated narrative report.
func ExportAnalysisToMarkdown(data models.AnalysisData, reportText string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", data.SongTitle))
	if data.Artist != "" {
		buf.WriteString(fmt.Sprintf("**Artist**: %s\n\n", data.Artist))
	}

	buf.WriteString(fmt.Sprintf("**Risk Level**: %s\n", data.RiskLevel))
	buf.WriteString(fmt.Sprintf("**Risk Score**: %s/100\n", formatScore(data.RiskScore)))
	buf.WriteString(fmt.Sprintf("**Overall Similarity**: %s%%\n", formatScore(data.OverallSimilarity)))
	buf.WriteString(fmt.Sprintf("**AI Probability**: %s%%\n\n", formatScore(data.AIProbability)))

	if data.AIAnalysis != nil {
		buf.WriteString("## AI Detection\n\n")
		buf.WriteString(fmt.Sprintf("Suspected platform: %s (%s%% confidence)\n\n", data.AIAnalysis.Platform, formatScore(data.AIAnalysis.Confidence)))
	}

	if len(data.StemAnalysis) > 0 {
		buf.WriteString("## Stem Similarity\n\n")
		for _, stem := range sortedStems(data.StemAnalysis) {
			buf.WriteString(fmt.Sprintf("- %s: %s%%\n", stem, formatScore(data.StemAnalysis[stem])))
		}
		buf.WriteString("\n")
	}

	if data.Fingerprinting != nil && data.Fingerprinting.Matches > 0 {
		buf.WriteString("## Fingerprint Matches\n\n")
		buf.WriteString(fmt.Sprintf("**Matches**: %d\n", data.Fingerprinting.Matches))
		buf.WriteString(fmt.Sprintf("**Highest Similarity**: %s%%\n\n", formatScore(data.Fingerprinting.HighestSimilarity)))
		for i, m := range data.Fingerprinting.Results {
			buf.WriteString(fmt.Sprintf("%d. %s - %s [%s%%]\n", i+1, m.Artist, m.Title, formatScore(m.Similarity)))
		}
		buf.WriteString("\n")
	}

	if reportText != "" {
		buf.WriteString("## Report\n\n")
		buf.WriteString(reportText)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportLibraryToText converts library items to a plain text listing
func ExportLibraryToText(items []models.LibraryItem) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Library: %d analyses\n\n", len(items)))
	for i, item := range items {
		buf.WriteString(fmt.Sprintf("%d. %s - %s risk (%s/100) [%s]\n",
			i+1, item.SongTitle, item.Data.RiskLevel, formatScore(item.Data.RiskScore),
			item.Date.Format("2006-01-02")))
	}

	return buf.Bytes(), nil
}

// ToAnalysisJSON generates an indented JSON representation of an analysis.
func ToAnalysisJSON(data models.AnalysisData) ([]byte, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	return out, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	LibraryFile string
}

// WriteCSVExport writes the library to {base}_library.csv.
//
// Defaults the base filename to "melodycompare".
func WriteCSVExport(items []models.LibraryItem, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "melodycompare"
	}

	csvData, err := ExportLibraryToCSV(items)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	libraryFile := baseFilepath + "_library.csv"
	if err := os.WriteFile(libraryFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	return &CSVExportResult{LibraryFile: libraryFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	AudioFile string
}

// WriteMarkdownExport exports one analysis to a dedicated directory.
//
// Directory name defaults to the item ID. audio is optional; when present it
// is saved alongside as audio.mp3. Creates {dir}/README.md, {dir}/analysis.json,
// and optionally {dir}/audio.mp3.
func WriteMarkdownExport(item *models.LibraryItem, reportText, outputDir string, audio []byte) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = item.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	if len(audio) > 0 {
		audioPath := filepath.Join(outputDir, "audio.mp3")
		if err := os.WriteFile(audioPath, audio, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save audio: %v\n", err)
		} else {
			result.AudioFile = audioPath
			result.Files = append(result.Files, audioPath)
		}
	}

	mdData, err := ExportAnalysisToMarkdown(item.Data, reportText)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)

	jsonData, err := ToAnalysisJSON(item.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate analysis JSON: %w", err)
	}

	jsonFile := filepath.Join(outputDir, "analysis.json")
	if err := os.WriteFile(jsonFile, jsonData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write analysis JSON: %w", err)
	}
	result.Files = append(result.Files, jsonFile)

	return result, nil
}

// WriteTextExport writes the library listing to plain text.
//
// Defaults to melodycompare_library.txt as the filename.
func WriteTextExport(items []models.LibraryItem, path string) (string, error) {
	if path == "" {
		path = "melodycompare_library.txt"
	}

	textData, err := ExportLibraryToText(items)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sortedStems(stems map[string]float64) []string {
	names := make([]string, 0, len(stems))
	for name := range stems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
