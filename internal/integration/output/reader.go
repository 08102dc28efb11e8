package output

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ReadLines reads newline-delimited lines from r and calls fn for each one.
//
// Line terminators ("\n" and "\r\n") are stripped. A final line without a
// terminator is still delivered once. Lines have no length limit. ReadLines
// returns nil at end of stream.
func ReadLines(r io.Reader, fn func(line string)) error {
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if strings.HasSuffix(line, "\n") {
				line = strings.TrimSuffix(line[:len(line)-1], "\r")
			}
			fn(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
