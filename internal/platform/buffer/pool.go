package buffer

import "sync"

// ChunkSize is the relay chunk: one buffer per active stream.
const ChunkSize = 8 * 1024

type Pool struct {
	pool sync.Pool
	size int
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = ChunkSize
	}
	return &Pool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, size)
				return &b
			},
		},
	}
}

// Get returns a buffer of exactly the pool size.
func (p *Pool) Get() *[]byte {
	return p.pool.Get().(*[]byte)
}

func (p *Pool) Put(b *[]byte) {
	if b == nil || cap(*b) < p.size {
		return
	}
	*b = (*b)[:p.size]
	p.pool.Put(b)
}

func (p *Pool) Size() int { return p.size }
