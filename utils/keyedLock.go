package utils

import (
	"fmt"
	"sync"
)

// KeyedMutex serializes critical sections by string key. Progress
// recomputation locks on the (student, course) or (student, exam) pair so
// concurrent completions for the same student cannot lose updates. Entries
// are refcounted and dropped from the map once the last holder unlocks.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock acquires the mutex for key and returns its unlock function
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// ProgressLocks guards per-student progress read-modify-write sequences
var ProgressLocks = NewKeyedMutex()

// ProgressKey builds the lock key for a (student, entity) pair
func ProgressKey(kind string, studentID, entityID uint) string {
	return fmt.Sprintf("%s:%d:%d", kind, studentID, entityID)
}
