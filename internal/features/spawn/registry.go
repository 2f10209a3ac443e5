package spawn

import "sync"

// registry — ленивая карта состояний по ключу (чату). Общий мьютекс держится
// только на время поиска; у каждого значения свой замок.
type registry[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]*V
	init  func() *V
}

func newRegistry[K comparable, V any](init func() *V) *registry[K, V] {
	return &registry[K, V]{items: make(map[K]*V), init: init}
}

func (r *registry[K, V]) get(key K) *V {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[key]
	if !ok {
		v = r.init()
		r.items[key] = v
	}
	return v
}

// snapshot — копия значений для обхода без общего замка.
func (r *registry[K, V]) snapshot() []*V {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*V, 0, len(r.items))
	for _, v := range r.items {
		out = append(out, v)
	}
	return out
}
