package historysink

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
)

var _ output.HistorySink = (*FileSink)(nil)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileSink appends one JSON object per outcome to a file.
type FileSink struct {
	mu     sync.Mutex
	file   *os.File
	w      *bufio.Writer
	closed bool
}

// Open creates path and its parent directories if needed. A leading ~ is
// expanded to the user's home directory.
func Open(path string) (*FileSink, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand history path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	file, err := os.OpenFile(expanded, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open history file: %w", err)
	}
	return &FileSink{file: file, w: bufio.NewWriter(file)}, nil
}

func (s *FileSink) Path() string {
	return s.file.Name()
}

// Write encodes outcome and flushes it so a crash loses at most the line
// being written.
func (s *FileSink) Write(outcome entity.ActionOutcome) error {
	line, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return entity.ErrAgentClosed
	}
	if _, err := s.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write outcome: %w", err)
	}
	return s.w.Flush()
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	flushErr := s.w.Flush()
	if err := s.file.Close(); err != nil {
		return err
	}
	return flushErr
}

// ReadAll decodes every outcome in a sink file. Used by tooling and tests;
// the agent never reads its own history back.
func ReadAll(path string) ([]entity.ActionOutcome, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(expanded)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var outcomes []entity.ActionOutcome
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var o entity.ActionOutcome
		if err := json.Unmarshal(scanner.Bytes(), &o); err != nil {
			return nil, fmt.Errorf("decode outcome %d: %w", len(outcomes)+1, err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, scanner.Err()
}
