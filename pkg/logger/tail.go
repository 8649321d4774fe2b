package logger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

const maxTailLines = 500

// Tail returns the last n lines of the log file at path, newest first.
// A missing file yields an empty slice.
func Tail(path string, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}
	if n > maxTailLines {
		n = maxTailLines
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	return tailReader(f, n)
}

func tailReader(r io.Reader, n int) ([]string, error) {
	ring := make([]string, n)
	count := 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		ring[count%n] = line
		count++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan log file: %w", err)
	}

	size := count
	if size > n {
		size = n
	}
	out := make([]string, 0, size)
	for i := 0; i < size; i++ {
		out = append(out, ring[(count-1-i)%n])
	}
	return out, nil
}
