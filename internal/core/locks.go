package core

import "sync"

// keyedMutex serializes read-modify-write cycles per subscription so that a
// concurrent user action and webhook update cannot interleave. Mutexes are
// retained for the process lifetime; the set is bounded by the number of
// subscriptions touched.
type keyedMutex struct {
	locks sync.Map // key -> *sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
