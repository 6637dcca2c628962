package urls

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// FileFetcher reads product source URLs from a file (one URL per line).
type FileFetcher struct{}

// NewFileFetcher creates a new file fetcher
func NewFileFetcher() *FileFetcher {
	return &FileFetcher{}
}

// Fetch reads URLs from a file (file path is passed as the "url" parameter)
func (p *FileFetcher) Fetch(filePath string) ([]URL, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var found []URL
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Remove trailing commas and whitespace
		line = strings.TrimRight(line, ", \t")

		if line == "" {
			continue
		}

		found = append(found, URL{
			Location: line,
			Title:    "", // Title not available from file
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file at line %d: %w", lineNum, err)
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("no URLs found in file")
	}

	return found, nil
}
