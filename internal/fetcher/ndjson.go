package fetcher

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/rotisserie/eris"
)

// maxLineSize bounds a single NDJSON line.
const maxLineSize = 16 << 20

// StreamLines reads newline-delimited records and sends each non-blank
// line. Lines are copied, so receivers may retain them. Both channels are
// closed when processing completes.
func StreamLines(ctx context.Context, r io.Reader) (<-chan []byte, <-chan error) {
	outCh := make(chan []byte, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		for scanner.Scan() {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "ndjson: context cancelled")
				return
			}

			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			select {
			case outCh <- bytes.Clone(line):
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "ndjson: context cancelled")
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errCh <- eris.Wrap(err, "ndjson: read line")
		}
	}()

	return outCh, errCh
}
