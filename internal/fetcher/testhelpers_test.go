package fetcher

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTestFile is a helper that writes data to a file path.
func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func collectRecords(t *testing.T, rowCh <-chan Record, errCh <-chan error) ([]Record, error) {
	t.Helper()
	var rows []Record
	for row := range rowCh {
		rows = append(rows, row)
	}
	// Drain error channel
	for err := range errCh {
		if err != nil {
			return rows, err
		}
	}
	return rows, nil
}

func collectLines(t *testing.T, outCh <-chan []byte, errCh <-chan error) []string {
	t.Helper()
	var lines []string
	for line := range outCh {
		lines = append(lines, string(line))
	}
	for err := range errCh {
		require.NoError(t, err)
	}
	return lines
}
