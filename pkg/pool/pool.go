// Package pool содержит типизированную обёртку над sync.Pool.
package pool

import "sync"

// Resetter — объект, который можно вернуть в исходное состояние перед повторным использованием.
type Resetter interface {
	Reset()
}

// Pool — типизированный пул объектов. Put сбрасывает объект вызовом Reset.
type Pool[T Resetter] struct {
	p sync.Pool
}

// New создаёт пул; newFn вызывается, когда свободных объектов нет.
func New[T Resetter](newFn func() T) *Pool[T] {
	return &Pool[T]{
		p: sync.Pool{
			New: func() any { return newFn() },
		},
	}
}

// Get возвращает объект из пула или новый.
func (p *Pool[T]) Get() T {
	return p.p.Get().(T)
}

// Put сбрасывает объект и возвращает его в пул.
func (p *Pool[T]) Put(obj T) {
	obj.Reset()
	p.p.Put(obj)
}
