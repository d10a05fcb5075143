package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("paint material", WithSourceVersion(3))

	assert.Equal(t, "paint material", p.Label())
	assert.Equal(t, uint64(3), p.SourceVersion())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.TextureView(1))
	assert.Zero(t, p.IndexCount())
}

func TestSetMeshAndRelease(t *testing.T) {
	p := NewBindGroupProvider("mesh")
	p.SetMesh(nil, nil, 36)
	assert.Equal(t, 36, p.IndexCount())

	p.SetSourceVersion(7)
	assert.Equal(t, uint64(7), p.SourceVersion())

	assert.NotPanics(t, p.Release)
	assert.Zero(t, p.IndexCount())
}

func TestWriteBuffersSkipsMissingBuffers(t *testing.T) {
	p := NewBindGroupProvider("material")
	writes := []BufferWrite{
		{Provider: p, Binding: 0, Data: []byte{1, 2, 3, 4}},
		{Provider: nil, Binding: 0},
	}
	assert.Equal(t, 0, WriteBuffers(nil, writes))
}
