package usecase

import (
	"context"
	"sync"
)

// KeyedMutexは顧客IDごとの排他を取る。
// カートのread-modify-writeを同じ顧客について直列化するために使う。
// カートと注文で同じインスタンスを共有する（注文確定もカートを書き換えるため）。
// ロック待ちはcontextのキャンセル・期限で打ち切れる。
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	ch   chan struct{} // バッファ1のセマフォ
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: map[string]*keyedLock{}}
}

// Lockはkeyのロックを取得する。ctxが先に終わればそのエラーを返す。
func (m *KeyedMutex) Lock(ctx context.Context, key string) error {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyedLock{ch: make(chan struct{}, 1)}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		m.release(key, l)
		return ctx.Err()
	}
}

func (m *KeyedMutex) Unlock(key string) {
	m.mu.Lock()
	l, ok := m.locks[key]
	m.mu.Unlock()
	if !ok {
		return
	}

	<-l.ch
	m.release(key, l)
}

// 参照が無くなったエントリはマップから消す（顧客数ぶん溜め込まない）
func (m *KeyedMutex) release(key string, l *keyedLock) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}
