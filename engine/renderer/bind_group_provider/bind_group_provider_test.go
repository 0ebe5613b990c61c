package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachAndRelease(t *testing.T) {
	p := NewBindGroupProvider("camera", WithGroup(1))
	assert.Equal(t, "camera", p.Label())
	assert.Equal(t, 1, p.Group())
	assert.False(t, p.Bound())
	assert.Zero(t, p.Size(0))

	p.Attach(nil, nil, map[int]uint64{0: 48})
	assert.True(t, p.Bound())
	assert.Equal(t, uint64(48), p.Size(0))
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))

	p.Release()
	assert.False(t, p.Bound())
	assert.Zero(t, p.Size(0))
}

func TestNegativeGroupClamps(t *testing.T) {
	assert.Equal(t, 0, NewBindGroupProvider("x", WithGroup(-2)).Group())
}

func TestBufferWriteClipped(t *testing.T) {
	p := NewBindGroupProvider("uniform")
	data := []byte{1, 2, 3, 4, 5, 6}

	_, ok := BufferWrite{Provider: p, Data: data}.Clipped()
	assert.False(t, ok, "unbound provider")

	p.Attach(nil, nil, map[int]uint64{0: 4})
	tests := []struct {
		name   string
		write  BufferWrite
		want   []byte
		wantOK bool
	}{
		{"fits", BufferWrite{Provider: p, Data: data[:4]}, data[:4], true},
		{"truncated", BufferWrite{Provider: p, Data: data}, data[:4], true},
		{"offset truncates", BufferWrite{Provider: p, Offset: 2, Data: data}, data[:2], true},
		{"offset past end", BufferWrite{Provider: p, Offset: 4, Data: data}, nil, false},
		{"unknown binding", BufferWrite{Provider: p, Binding: 3, Data: data}, nil, false},
		{"no provider", BufferWrite{Data: data}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.write.Clipped()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
