package cgi

import (
	"bufio"
	"bytes"
	"io"
	"sync"
)

const blockSize = 64 << 10

// InputStream reads the request body the way CGI programs read stdin. Every
// read style shares one carry-over buffer, so mixing line reads with block
// reads never loses or duplicates bytes.
type InputStream struct {
	mu  sync.Mutex
	r   *bufio.Reader
	pos int64
}

// NewInputStream wraps src, usually a hook.Request.
func NewInputStream(src io.Reader) *InputStream {
	return &InputStream{r: bufio.NewReaderSize(src, blockSize)}
}

func (in *InputStream) Read(p []byte) (int, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	n, err := in.r.Read(p)
	in.pos += int64(n)
	return n, err
}

// ReadAll drains the body in fixed-size chunks until EOF.
func (in *InputStream) ReadAll() ([]byte, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	var out bytes.Buffer
	chunk := make([]byte, blockSize)
	for {
		n, err := in.r.Read(chunk)
		out.Write(chunk[:n])
		in.pos += int64(n)
		if err == io.EOF {
			return out.Bytes(), nil
		}
		if err != nil {
			return out.Bytes(), err
		}
	}
}

// ReadN returns up to n bytes, fewer only at end of body. A negative n reads
// everything. io.EOF is returned only when nothing was left.
func (in *InputStream) ReadN(n int) ([]byte, error) {
	if n < 0 {
		return in.ReadAll()
	}
	if n == 0 {
		return nil, nil
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	buf := make([]byte, n)
	m, err := io.ReadFull(in.r, buf)
	in.pos += int64(m)
	switch {
	case err == io.EOF:
		return nil, io.EOF
	case err == io.ErrUnexpectedEOF:
		return buf[:m], nil
	}
	return buf[:m], err
}

// ReadLine returns the next line including its newline. A positive limit
// caps the line length; the rest of the line stays buffered for the next
// read. At end of body the unterminated remainder is returned, then io.EOF.
func (in *InputStream) ReadLine(limit int) ([]byte, error) {
	if limit == 0 {
		return nil, nil
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	line, err := in.readLine(limit)
	in.pos += int64(len(line))
	return line, err
}

func (in *InputStream) readLine(limit int) ([]byte, error) {
	var line []byte
	for limit < 0 || len(line) < limit {
		if _, err := in.r.Peek(1); err != nil {
			if err == io.EOF && len(line) > 0 {
				return line, nil
			}
			return line, err
		}
		buf, _ := in.r.Peek(in.r.Buffered())
		if limit > 0 && len(buf) > limit-len(line) {
			buf = buf[:limit-len(line)]
		}
		if i := bytes.IndexByte(buf, '\n'); i >= 0 {
			line = append(line, buf[:i+1]...)
			_, _ = in.r.Discard(i + 1)
			return line, nil
		}
		line = append(line, buf...)
		_, _ = in.r.Discard(len(buf))
	}
	return line, nil
}

// ReadLines reads every remaining line.
func (in *InputStream) ReadLines() ([][]byte, error) {
	var lines [][]byte
	for {
		line, err := in.ReadLine(-1)
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}
}

// Tell reports how many body bytes were consumed.
func (in *InputStream) Tell() int64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.pos
}
