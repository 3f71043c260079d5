package commands

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/tessel/pulse/driver"
)

// writes to a buffer must be a multiple of this size
const copyBufferAlignment = 4

// gpuBuffer is a buffer with a fixed capacity. Contents that fit are written
// in place, larger contents replace the buffer with a new one of exactly their size.
type gpuBuffer struct {
	device driver.Device
	queue  driver.Queue

	label  string
	usage  wgpu.BufferUsage
	buffer driver.Buffer
}

func newGPUBuffer(device driver.Device, queue driver.Queue, label string, usage wgpu.BufferUsage) (*gpuBuffer, error) {
	buffer, err := device.CreateBuffer(wgpu.BufferDescriptor{
		Label: label,
		Usage: usage | wgpu.BufferUsageCopyDst,
		Size:  copyBufferAlignment,
	})

	if err != nil {
		return nil, fmt.Errorf("create buffer %q: %w", label, err)
	}

	return &gpuBuffer{
		device: device,
		queue:  queue,
		label:  label,
		usage:  usage | wgpu.BufferUsageCopyDst,
		buffer: buffer,
	}, nil
}

func (b *gpuBuffer) Capacity() uint64 {
	return b.buffer.Size()
}

// Replace replaces the content of the buffer with the given bytes.
func (b *gpuBuffer) Replace(contents []byte) error {
	if len(contents) == 0 {
		return nil
	}

	contents = padTo(contents, copyBufferAlignment)

	if uint64(len(contents)) <= b.buffer.Size() {
		if err := b.queue.WriteBuffer(b.buffer, 0, contents); err != nil {
			return fmt.Errorf("write buffer %q: %w", b.label, err)
		}

		return nil
	}

	buffer, err := b.device.CreateBufferInit(wgpu.BufferInitDescriptor{
		Label:    b.label,
		Contents: contents,
		Usage:    b.usage,
	})

	if err != nil {
		return fmt.Errorf("grow buffer %q to %d bytes: %w", b.label, len(contents), err)
	}

	b.buffer.Release()
	b.buffer = buffer

	return nil
}

func (b *gpuBuffer) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}

func padTo(buf []byte, alignment int) []byte {
	if rem := len(buf) % alignment; rem != 0 {
		padded := make([]byte, len(buf)+alignment-rem)
		copy(padded, buf)
		return padded
	}

	return buf
}
