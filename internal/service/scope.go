package service

import (
	"regexp"
	"strings"
	"sync"
)

var scopePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// NormalizeScope 校验并规范化门店范围（门店ID）
func NormalizeScope(raw string) (string, error) {
	scope := strings.TrimSpace(raw)
	if !scopePattern.MatchString(scope) {
		return "", ErrScopeInvalid
	}
	return scope, nil
}

// keyedMutex 按 key 串行化读改写
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock 加锁并返回解锁函数
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &keyedLock{}
		k.locks[key] = lock
	}
	lock.refs++
	k.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		k.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func sessionScopeKey(sessionID, scope string) string {
	return sessionID + "|" + scope
}
