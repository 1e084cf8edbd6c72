package omegamatch

import (
	"os"

	"github.com/scholarsmate/omega-match/bytescan"
)

// LoadDictionary reads a newline-delimited pattern file: one pattern per
// line, LF or CRLF terminated, with a trailing CR stripped and empty lines
// skipped. The file is treated as raw bytes, not validated as UTF-8: the
// matcher operates byte-for-byte, so a dictionary may contain arbitrary
// binary lines as long as they're newline-delimited.
func LoadDictionary(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FormatError{Detail: "read dictionary", Err: wrapIOErr(err)}
	}
	return splitLines(data), nil
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	for len(data) > 0 {
		i := bytescan.IndexEither(data, '\n', '\r')
		var line []byte
		if i < 0 {
			line = data
			data = nil
		} else {
			line = data[:i]
			if data[i] == '\r' {
				if i+1 < len(data) && data[i+1] == '\n' {
					data = data[i+2:]
				} else {
					data = data[i+1:]
				}
			} else {
				data = data[i+1:]
			}
		}
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}
