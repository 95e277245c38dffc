package utils

import (
	"io"
	"strings"
	"sync"
)

const lineTerminatorConstant = "\n"

// FlushingWriter serializes writes from concurrent producers and flushes buffered writers after each write.
type FlushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewFlushingWriter wraps the provided writer. Wrapping an existing FlushingWriter returns it unchanged.
func NewFlushingWriter(writer io.Writer) *FlushingWriter {
	if writer == nil {
		writer = io.Discard
	}
	if alreadyWrapped, isFlushingWriter := writer.(*FlushingWriter); isFlushingWriter {
		return alreadyWrapped
	}
	return &FlushingWriter{writer: writer}
}

// Write delegates to the underlying writer and flushes it when possible.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	return flushingWriter.writeLocked(data)
}

// WriteLines writes each line followed by a newline as one uninterrupted block.
func (flushingWriter *FlushingWriter) WriteLines(lines []string) error {
	if flushingWriter == nil || flushingWriter.writer == nil || len(lines) == 0 {
		return nil
	}

	var blockBuilder strings.Builder
	for _, line := range lines {
		blockBuilder.WriteString(line)
		blockBuilder.WriteString(lineTerminatorConstant)
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	_, writeError := flushingWriter.writeLocked([]byte(blockBuilder.String()))
	return writeError
}

func (flushingWriter *FlushingWriter) writeLocked(data []byte) (int, error) {
	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	if flushableWriter, implementsFlush := flushingWriter.writer.(interface{ Flush() error }); implementsFlush {
		if flushError := flushableWriter.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}

	return bytesWritten, nil
}
