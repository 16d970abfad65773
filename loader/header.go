package loader

import (
	"fmt"
	"strings"
)

// ValidateHeaders trims header cells and renames duplicates to name_1,
// name_2, ... so every column key is unique. Blank cells become column_N.
func ValidateHeaders(headers []string) []string {
	seen := make(map[string]int)
	result := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = generateColumnName(i)
		}
		originalHeader := header
		counter := 1

		for {
			if count, exists := seen[header]; exists {
				header = fmt.Sprintf("%s_%d", originalHeader, counter)
				counter++
			} else {
				seen[header] = count + 1
				break
			}
		}

		result[i] = header
	}

	return result
}

func generateColumnName(index int) string {
	return fmt.Sprintf("column_%d", index+1)
}
