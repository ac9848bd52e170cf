package pgnarchive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/park285/chess-archive/internal/domain"
)

// ErrSourceUnavailable wraps every failure to obtain archive lines.
var ErrSourceUnavailable = errors.New("archive source unavailable")

const maxLineBytes = 16 << 20

// ReadLines reads r to the end and splits it into lines without terminators.
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return lines, nil
}

// ReadFile reads the archive at path into lines.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer f.Close()
	return ReadLines(f)
}

// Parse reads r completely and parses it.
func Parse(r io.Reader) ([]domain.GameRecord, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	return ParseLines(lines), nil
}

// ParseFile reads and parses the archive at path.
func ParseFile(path string) ([]domain.GameRecord, error) {
	lines, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLines(lines), nil
}
