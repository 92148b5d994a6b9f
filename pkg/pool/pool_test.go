package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// pointBuffer — тестовый буфер точек истории с методом Reset().
type pointBuffer struct {
	Session string
	Tick    int64
	Values  []int64
}

func (b *pointBuffer) Reset() {
	b.Session = ""
	b.Tick = 0
	b.Values = b.Values[:0]
}

func newBufferPool() *Pool[*pointBuffer] {
	return New(func() *pointBuffer {
		return &pointBuffer{Values: make([]int64, 0, 10)}
	})
}

func TestPool_NewAndGet(t *testing.T) {
	obj := newBufferPool().Get()
	require.NotNil(t, obj)
	require.NotNil(t, obj.Values)
	require.Equal(t, 10, cap(obj.Values))
}

func TestPool_PutCallsReset(t *testing.T) {
	p := newBufferPool()
	obj := p.Get()
	obj.Session = "s"
	obj.Tick = 42
	obj.Values = append(obj.Values, 1200, 1210, 1195)

	p.Put(obj)
	require.Empty(t, obj.Session)
	require.Zero(t, obj.Tick)
	require.Empty(t, obj.Values)
	require.Equal(t, 10, cap(obj.Values), "capacity preserved")

	// пул может вернуть тот же или новый объект, оба должны быть чистыми
	obj2 := p.Get()
	require.Zero(t, obj2.Tick)
	require.Empty(t, obj2.Values)
}

func TestPool_Concurrent(t *testing.T) {
	p := newBufferPool()

	const goroutines = 100
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			obj := p.Get()
			obj.Tick = int64(id)
			obj.Values = append(obj.Values, int64(id))
			p.Put(obj)
		}(i)
	}
	wg.Wait()

	obj := p.Get()
	require.Zero(t, obj.Tick)
	require.Empty(t, obj.Values)
}

// BenchmarkPool_GetPut проверяет производительность пула.
func BenchmarkPool_GetPut(b *testing.B) {
	p := New(func() *pointBuffer {
		return &pointBuffer{Values: make([]int64, 0, 100)}
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		obj := p.Get()
		obj.Tick = int64(i)
		obj.Values = append(obj.Values, 1, 2, 3, 4, 5)
		p.Put(obj)
	}
}

// BenchmarkWithoutPool сравнивает производительность без использования пула.
func BenchmarkWithoutPool(b *testing.B) {
	for i := 0; i < b.N; i++ {
		obj := &pointBuffer{Values: make([]int64, 0, 100)}
		obj.Tick = int64(i)
		obj.Values = append(obj.Values, 1, 2, 3, 4, 5)
	}
}
