// Package session хранит имя локального пользователя. Это не аутентификация:
// имя не проверяется и служит только признаком "вход выполнен".
package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"taskDesk/internal/logger"
	"taskDesk/internal/storage"

	"go.uber.org/zap"
)

const DefaultUsernameKey = "username"

// Gate помнит имя и в памяти: без хранилища вход действует до конца процесса
type Gate struct {
	adapter *storage.Adapter
	key     string

	mtx  sync.Mutex
	name string
}

func NewGate(adapter *storage.Adapter, key string) *Gate {
	if key == "" {
		key = DefaultUsernameKey
	}
	return &Gate{adapter: adapter, key: key}
}

// Login сохраняет обрезанное имя как обычный текст, пустое имя отклоняется
func (g *Gate) Login(ctx context.Context, username string) bool {
	username = strings.TrimSpace(username)
	if username == "" {
		return false
	}

	g.mtx.Lock()
	g.name = username
	g.mtx.Unlock()

	g.adapter.WriteRaw(ctx, g.key, username)
	logger.Info("Session: Вход выполнен", zap.String("username", username))
	return true
}

// Username возвращает сохранённое имя или пустую строку.
// Решает текст слота, а не JSON-разбор: имя "null" остаётся именем.
func (g *Gate) Username(ctx context.Context) string {
	if raw, ok := g.adapter.ReadRaw(ctx, g.key); ok {
		return decodeName(raw)
	}

	g.mtx.Lock()
	defer g.mtx.Unlock()
	return g.name
}

func (g *Gate) IsAuthenticated(ctx context.Context) bool {
	return g.Username(ctx) != ""
}

func (g *Gate) Logout(ctx context.Context) {
	g.mtx.Lock()
	g.name = ""
	g.mtx.Unlock()

	g.adapter.Remove(ctx, g.key)
	logger.Info("Session: Выход выполнен")
}

// decodeName снимает JSON-кавычки со слота, записанного с сериализацией.
// Если в кавычках пусто, имя - сам текст слота.
func decodeName(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, `"`) {
		var decoded string
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			if decoded = strings.TrimSpace(decoded); decoded != "" {
				return decoded
			}
		}
	}
	return raw
}
