package auditlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cagrik/pazarly/pkg/logger"
	"go.uber.org/zap"
)

// Message lifecycle events
const (
	EventMessageSent    = "message_sent"
	EventMessageEdited  = "message_edited"
	EventMessageDeleted = "message_deleted"
)

// Entry is one line of the chat audit trail
type Entry struct {
	Event          string    `json:"event"`
	MessageID      uint      `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	ActorID        uint      `json:"actor_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// Log is an append-only JSONL file recording message mutations
type Log struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

// NewLog opens (or creates) the audit log file
func NewLog(filePath string) (*Log, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Log{
		filePath: filePath,
		file:     file,
	}, nil
}

// Append writes one entry and syncs it to disk
func (l *Log) Append(entry Entry) error {
	start := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		logger.Log.Error("Audit: Failed to marshal entry",
			zap.String("event", entry.Event),
			zap.Uint("message_id", entry.MessageID),
			zap.Error(err),
		)
		return err
	}

	if _, err := l.file.WriteString(string(data) + "\n"); err != nil {
		logger.Log.Error("Audit: Failed to write to file",
			zap.String("event", entry.Event),
			zap.Uint("message_id", entry.MessageID),
			zap.Error(err),
		)
		return err
	}

	if err := l.file.Sync(); err != nil {
		logger.Log.Error("Audit: Failed to sync to disk",
			zap.String("event", entry.Event),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Debug("Audit: Entry written",
		zap.String("event", entry.Event),
		zap.Uint("message_id", entry.MessageID),
		zap.String("conversation_id", entry.ConversationID),
		zap.Duration("duration", time.Since(start)),
	)

	return nil
}

// ReadAll returns every entry in the log, oldest first
func (l *Log) ReadAll() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

// Close closes the underlying file
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
