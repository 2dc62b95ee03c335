package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// LogWriter receives application, access and SQL logs.
var LogWriter io.Writer = os.Stdout

var logPath = filepath.Join("logs", "rkive-api.log")

// InitLogging tees the standard logger into path. When the file cannot be
// opened logging stays on stdout and the returned closer is nil.
func InitLogging(path string) (io.Closer, io.Writer) {
	if path != "" {
		logPath = path
	}
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		log.Printf("Warning: Failed to create logs directory: %v", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Warning: Failed to open log file %s: %v", logPath, err)
		LogWriter = os.Stdout
		log.SetOutput(LogWriter)
		return nil, LogWriter
	}

	LogWriter = io.MultiWriter(os.Stdout, file)
	log.SetOutput(LogWriter)
	return file, LogWriter
}

// TailLog returns at most the last maxBytes of the log file.
func TailLog(maxBytes int64) ([]byte, error) {
	f, err := os.Open(logPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	var offset int64
	if maxBytes > 0 && info.Size() > maxBytes {
		offset = info.Size() - maxBytes
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(f)
}
