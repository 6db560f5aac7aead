package conversation

import "sync"

// keyedMutex serializes work per string key. Used to order concurrent
// messages within one session without blocking other sessions.
type keyedMutex struct {
	locks sync.Map
}

// lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
