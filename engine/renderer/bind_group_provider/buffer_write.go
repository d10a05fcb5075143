package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// WriteBuffers uploads each write through the queue. Writes whose buffer does not exist are skipped.
//
// Parameters:
//   - queue: the queue to write through
//   - writes: the writes to apply in order
//
// Returns:
//   - int: the number of writes applied
func WriteBuffers(queue *wgpu.Queue, writes []BufferWrite) int {
	applied := 0
	for _, w := range writes {
		if w.Provider == nil {
			continue
		}
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		queue.WriteBuffer(buf, w.Offset, w.Data)
		applied++
	}
	return applied
}
