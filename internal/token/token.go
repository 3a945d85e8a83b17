// Package token provides reference-counted "reason flags".
//
// A List is active while at least one of its tokens is held. Each holder
// takes its own token and releases it when the reason goes away, so several
// independent reasons can keep the same flag set without stepping on each
// other. Inside task bodies the usual pattern is:
//
//	tok := p.Invincible.TakeFlag("Dash")
//	defer tok.Release()
//
// which also clears the flag when the task is killed.
package token

import (
	"cmp"
	"fmt"
	"strings"
)

// Token is one holder's claim on a List.
type Token[T any] struct {
	list     *List[T]
	name     string
	data     T
	released bool
}

// Name returns the debug name the token was taken with.
func (t *Token[T]) Name() string { return t.name }

// Data returns the data attached to the token.
func (t *Token[T]) Data() T { return t.data }

// Released reports whether Release has been called.
func (t *Token[T]) Released() bool { return t == nil || t.released }

// Release removes the token from its list. Releasing twice, or releasing
// a nil token, is a no-op.
func (t *Token[T]) Release() {
	if t == nil || t.released {
		return
	}
	t.released = true
	t.list.remove(t)
}

// List holds the live tokens for one flag, in the order they were taken.
// The zero value is ready to use.
type List[T any] struct {
	tokens []*Token[T]
}

// Flags is a List whose tokens carry no data.
type Flags = List[struct{}]

// Take adds a token carrying data and returns it.
func (l *List[T]) Take(name string, data T) *Token[T] {
	tok := &Token[T]{list: l, name: name, data: data}
	l.tokens = append(l.tokens, tok)
	return tok
}

// TakeFlag adds a token with zero data.
func (l *List[T]) TakeFlag(name string) *Token[T] {
	var zero T
	return l.Take(name, zero)
}

// HasTokens reports whether any token is held.
func (l *List[T]) HasTokens() bool { return len(l.tokens) > 0 }

// Len returns the number of live tokens.
func (l *List[T]) Len() int { return len(l.tokens) }

// Data returns the data of every live token, oldest first.
func (l *List[T]) Data() []T {
	out := make([]T, len(l.tokens))
	for i, tok := range l.tokens {
		out[i] = tok.data
	}
	return out
}

// LeastRecent returns the data of the oldest live token.
func (l *List[T]) LeastRecent() (T, bool) {
	if len(l.tokens) == 0 {
		var zero T
		return zero, false
	}
	return l.tokens[0].data, true
}

// MostRecent returns the data of the newest live token.
func (l *List[T]) MostRecent() (T, bool) {
	if len(l.tokens) == 0 {
		var zero T
		return zero, false
	}
	return l.tokens[len(l.tokens)-1].data, true
}

// Clear releases every live token.
func (l *List[T]) Clear() {
	for _, tok := range l.tokens {
		tok.released = true
	}
	l.tokens = nil
}

// DebugString lists the names of the live tokens.
func (l *List[T]) DebugString() string {
	if len(l.tokens) == 0 {
		return "[]"
	}
	names := make([]string, len(l.tokens))
	for i, tok := range l.tokens {
		names[i] = tok.name
	}
	return fmt.Sprintf("[%s]", strings.Join(names, ", "))
}

func (l *List[T]) remove(tok *Token[T]) {
	for i, t := range l.tokens {
		if t == tok {
			l.tokens = append(l.tokens[:i], l.tokens[i+1:]...)
			return
		}
	}
}

// Min returns the smallest data value among the live tokens.
func Min[T cmp.Ordered](l *List[T]) (T, bool) {
	if len(l.tokens) == 0 {
		var zero T
		return zero, false
	}
	m := l.tokens[0].data
	for _, tok := range l.tokens[1:] {
		m = min(m, tok.data)
	}
	return m, true
}

// Max returns the largest data value among the live tokens.
func Max[T cmp.Ordered](l *List[T]) (T, bool) {
	if len(l.tokens) == 0 {
		var zero T
		return zero, false
	}
	m := l.tokens[0].data
	for _, tok := range l.tokens[1:] {
		m = max(m, tok.data)
	}
	return m, true
}
