package prebatch

import "sync"

// SessionManager mantiene una sesión de pesaje por operador.
type SessionManager struct {
	mu       sync.Mutex
	deps     SessionDeps
	sessions map[string]*Session
}

// NewSessionManager construye el gestor con dependencias compartidas.
func NewSessionManager(deps SessionDeps) *SessionManager {
	return &SessionManager{deps: deps, sessions: make(map[string]*Session)}
}

// Get devuelve la sesión del operador, creándola si no existe.
func (m *SessionManager) Get(operator string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[operator]
	if !ok {
		s = NewSession(operator, m.deps)
		m.sessions[operator] = s
	}
	return s
}

// Drop descarta la sesión del operador.
func (m *SessionManager) Drop(operator string) {
	m.mu.Lock()
	delete(m.sessions, operator)
	m.mu.Unlock()
}

// Len cantidad de sesiones activas.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
