package vkb

import (
	vk "github.com/vulkan-go/vulkan"
)

// HostBoundBuffer pairs a buffer with host visible memory and the object
// whose bytes it shadows.
type HostBoundBuffer struct {
	HostBuffer       *Buffer
	HostMemory       *DeviceMemory
	HostMemoryOffset uint64
	BufferObject     BufferObject
}

// StagedBoundBuffer adds a device local copy fed from the host side through
// a transfer.
type StagedBoundBuffer struct {
	HostBoundBuffer

	DeviceBuffer       *Buffer
	DeviceMemory       *DeviceMemory
	DeviceMemoryOffset uint64
}

func (d *Device) CreateAndBindBufferAndMemory(size uint64, offset uint64, usage vk.BufferUsageFlags, mprops vk.MemoryPropertyFlags, sharing vk.SharingMode) (*Buffer, *DeviceMemory, error) {

	buffer, err := d.CreateBufferWithOptions(size, usage, sharing)
	if err != nil {
		return nil, nil, err
	}
	memory, err := d.AllocateForBuffer(buffer, mprops)
	if err != nil {
		buffer.Destroy()
		return nil, nil, err
	}
	err = buffer.Bind(memory, offset)
	if err != nil {
		memory.Destroy()
		buffer.Destroy()
		return nil, nil, err
	}
	return buffer, memory, nil
}

func (d *Device) CreateHostBoundBuffer(bo BufferObject) (*HostBoundBuffer, error) {
	h := &HostBoundBuffer{BufferObject: bo}

	size := uint64(len(bo.Bytes()))

	var usage vk.BufferUsageFlags

	if _, ok := bo.(VertexSource); ok {
		usage |= vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	}
	if _, ok := bo.(IndexSource); ok {
		usage |= vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	}
	if usage == 0 {
		usage = vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	}

	buffer, memory, err := d.CreateAndBindBufferAndMemory(size, 0,
		usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		vk.SharingModeExclusive)

	if err != nil {
		return nil, err
	}

	h.HostBuffer = buffer
	h.HostMemory = memory

	return h, nil
}

// Map pushes the buffer object's current bytes into the host memory.
func (h *HostBoundBuffer) Map() error {
	return h.HostMemory.MapCopyUnmap(h.BufferObject.Bytes())
}

func (h *HostBoundBuffer) Destroy() {
	if h.HostMemory != nil {
		h.HostMemory.Destroy()
	}
	if h.HostBuffer != nil {
		h.HostBuffer.Destroy()
	}
}

func (d *Device) CreateStagedBoundBuffer(bo BufferObject) (*StagedBoundBuffer, error) {
	s := &StagedBoundBuffer{}

	s.BufferObject = bo

	size := uint64(len(bo.Bytes()))

	buffer, memory, err := d.CreateAndBindBufferAndMemory(size, 0,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		vk.SharingModeExclusive)

	if err != nil {
		return nil, err
	}

	s.HostBuffer = buffer
	s.HostMemory = memory

	usage := vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)

	if _, ok := s.BufferObject.(VertexSource); ok {
		usage |= vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	}
	if _, ok := s.BufferObject.(IndexSource); ok {
		usage |= vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	}

	buffer, memory, err = d.CreateAndBindBufferAndMemory(size, 0,
		usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		vk.SharingModeExclusive)

	if err != nil {
		s.HostBoundBuffer.Destroy()
		return nil, err
	}

	s.DeviceBuffer = buffer
	s.DeviceMemory = memory

	return s, nil
}

func (s *StagedBoundBuffer) Destroy() {
	s.HostBoundBuffer.Destroy()
	if s.DeviceMemory != nil {
		s.DeviceMemory.Destroy()
	}
	if s.DeviceBuffer != nil {
		s.DeviceBuffer.Destroy()
	}
}

// CopyBuffer records the host to device copy for a staged buffer.
func (cb *CommandBuffer) CopyBuffer(s *StagedBoundBuffer) {
	vk.CmdCopyBuffer(cb.VK(), s.HostBuffer.VKBuffer, s.DeviceBuffer.VKBuffer, 1, []vk.BufferCopy{
		{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      vk.DeviceSize(s.HostBuffer.Size),
		},
	})
}
