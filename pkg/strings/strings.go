// Package strings provides pooled string building for hot formatting paths.
// Error construction and handle debugging format many short strings; routing
// them through a shared builder pool keeps those paths allocation-light.
package strings

import (
	"fmt"
	"sync"
)

// Builder is a byte-backed string builder that can be pooled and reused.
type Builder struct {
	buf []byte
}

// NewBuilder creates a builder with the given initial capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{buf: make([]byte, 0, capacity)}
}

// WriteString appends s to the builder.
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (n int, err error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns the accumulated string. The result is a copy and stays
// valid after the builder is reset or pooled again.
func (b *Builder) String() string {
	return string(b.buf)
}

// Len returns the number of accumulated bytes.
func (b *Builder) Len() int { return len(b.buf) }

// Reset truncates the builder without releasing capacity.
func (b *Builder) Reset() { b.buf = b.buf[:0] }

var builderPool = sync.Pool{
	New: func() any {
		return NewBuilder(256)
	},
}

// GetBuilder retrieves a reset builder from the shared pool.
func GetBuilder() *Builder {
	b := builderPool.Get().(*Builder)
	b.Reset()
	return b
}

// PutBuilder returns a builder to the shared pool.
func PutBuilder(b *Builder) {
	if b == nil {
		return
	}
	builderPool.Put(b)
}

// Sprintf formats like fmt.Sprintf but writes through a pooled builder.
func Sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	b := GetBuilder()
	defer PutBuilder(b)
	fmt.Fprintf(b, format, args...)
	return b.String()
}

// Concat joins the parts through a pooled builder.
func Concat(parts ...string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	b := GetBuilder()
	defer PutBuilder(b)
	for _, s := range parts {
		b.WriteString(s)
	}
	return b.String()
}
