package bot

import (
	"sync"

	"github.com/brauni/drive-canvas-importer/internal/bridge"
	"github.com/brauni/drive-canvas-importer/internal/canvas"
	"github.com/brauni/drive-canvas-importer/internal/drive"
	"go.uber.org/zap"
)

// BridgeFactory builds the bridge serving one chat's canvas
type BridgeFactory func(sink canvas.Sink) *bridge.Bridge

// Session is the per-chat state: the canvas being built and the records of
// the last scan waiting to be imported
type Session struct {
	document   *canvas.Document
	bridge     *bridge.Bridge
	pending    []drive.FileRecord
	folderName string
}

func (s *Session) Document() *canvas.Document {
	return s.document
}

func (s *Session) Bridge() *bridge.Bridge {
	return s.bridge
}

// SessionManager keeps sessions in memory; they are lost on restart
type SessionManager struct {
	sessions  map[int64]*Session
	mutex     sync.RWMutex
	newBridge BridgeFactory
	logger    *zap.Logger
}

func NewSessionManager(newBridge BridgeFactory, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		sessions:  make(map[int64]*Session),
		newBridge: newBridge,
		logger:    logger,
	}
}

// Get returns the chat's session, creating an empty canvas on first use
func (sm *SessionManager) Get(chatID int64) *Session {
	sm.mutex.RLock()
	session, exists := sm.sessions[chatID]
	sm.mutex.RUnlock()
	if exists {
		return session
	}

	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	if session, exists := sm.sessions[chatID]; exists {
		return session
	}
	session = sm.newSession()
	sm.sessions[chatID] = session
	sm.logger.Info("Session created", zap.Int64("chat_id", chatID))
	return session
}

func (sm *SessionManager) newSession() *Session {
	document := canvas.NewDocument()
	return &Session{
		document: document,
		bridge:   sm.newBridge(document),
	}
}

// SetPending stores the records of a finished scan
func (sm *SessionManager) SetPending(chatID int64, records []drive.FileRecord, folderName string) {
	session := sm.Get(chatID)

	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	session.pending = append([]drive.FileRecord(nil), records...)
	session.folderName = folderName

	sm.logger.Info("Scan results stored",
		zap.Int64("chat_id", chatID),
		zap.Int("records", len(records)),
		zap.String("folder_name", folderName))
}

// Pending returns a copy of the records waiting to be imported
func (sm *SessionManager) Pending(chatID int64) ([]drive.FileRecord, string) {
	session := sm.Get(chatID)

	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return append([]drive.FileRecord(nil), session.pending...), session.folderName
}

func (sm *SessionManager) ClearPending(chatID int64) {
	session := sm.Get(chatID)

	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	session.pending = nil
	session.folderName = ""
}

// Reset drops the chat's canvas and pending records
func (sm *SessionManager) Reset(chatID int64) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	delete(sm.sessions, chatID)
	sm.logger.Info("Session reset", zap.Int64("chat_id", chatID))
}

func (sm *SessionManager) Count() int {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return len(sm.sessions)
}
