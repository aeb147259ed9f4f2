package vkb

import (
	"fmt"
	"log"

	gu "github.com/docker/go-units"
	vk "github.com/vulkan-go/vulkan"
)

const StagingPoolName = "staging"

var errInsufficientPoolSpace = fmt.Errorf("insufficient storage space in resource pool")

// BufferResource is a buffer sub-allocated out of a pool's memory. Freeing it
// returns its region to the pool allocator.
type BufferResource struct {
	Buffer
	Allocation   *Allocation
	ResourcePool *BufferResourcePool
}

// Write maps the pool memory behind this resource and copies data into it.
// Only valid for host visible pools.
func (b *BufferResource) Write(data []byte) error {
	pm, err := b.ResourcePool.Memory.MapWithOffset(uint64(len(data)), b.Allocation.Offset)
	if err != nil {
		return err
	}
	copy(ToBytes(pm, len(data)), data)
	b.ResourcePool.Memory.Unmap()
	return nil
}

func (b *BufferResource) Free() {
	b.Buffer.Destroy()
	b.ResourcePool.Allocator.Free(b.Allocation)
}

// Destroy releases the native buffer without touching the pool allocator,
// used during pool teardown.
func (b *BufferResource) Destroy() {
	b.Buffer.Destroy()
}

// ImageResource is an image bound to a region of a pool's memory.
type ImageResource struct {
	Image
	Allocation   *Allocation
	ResourcePool *ImageResourcePool
}

func (i *ImageResource) Free() {
	i.Image.Destroy()
	i.ResourcePool.Allocator.Free(i.Allocation)
}

func (i *ImageResource) Destroy() {
	i.Image.Destroy()
}

// BufferResourcePool owns one device memory allocation and carves buffers out
// of it.
type BufferResourcePool struct {
	Device           *Device
	Name             string
	Usage            vk.BufferUsageFlagBits
	Sharing          vk.SharingMode
	MemoryProperties vk.MemoryPropertyFlagBits
	Size             uint64
	Allocator        IAllocator
	Memory           *DeviceMemory
	ResourceManager  *ResourceManager
}

func (p *BufferResourcePool) AllocateBuffer(size uint64, usage vk.BufferUsageFlagBits) (*BufferResource, error) {

	buffer, err := p.Device.CreateBufferWithOptions(size, vk.BufferUsageFlags(usage), p.Sharing)
	if err != nil {
		return nil, err
	}

	mr := buffer.VKMemoryRequirements()
	mr.Deref()

	allocation := p.Allocator.Allocate(uint64(mr.Size), uint64(mr.Alignment))
	if allocation == nil {
		buffer.Destroy()
		return nil, errInsufficientPoolSpace
	}

	err = buffer.Bind(p.Memory, allocation.Offset)
	if err != nil {
		buffer.Destroy()
		p.Allocator.Free(allocation)
		return nil, err
	}

	ret := &BufferResource{
		Allocation:   allocation,
		ResourcePool: p,
	}

	ret.VKBuffer = buffer.VKBuffer
	ret.Device = buffer.Device
	ret.Size = buffer.Size

	allocation.Object = ret

	return ret, nil
}

// AllocateFor sizes and flags a pooled buffer for a vertex or index source.
func (p *BufferResourcePool) AllocateFor(src BufferObject) (*BufferResource, error) {
	size := uint64(len(src.Bytes()))
	if _, ok := src.(VertexSource); ok {
		return p.AllocateBuffer(size, vk.BufferUsageVertexBufferBit)
	}
	if _, ok := src.(IndexSource); ok {
		return p.AllocateBuffer(size, vk.BufferUsageIndexBufferBit)
	}
	return nil, fmt.Errorf("unknown buffer object type")
}

// UsageString reports the pool's occupancy in human readable sizes.
func (p *BufferResourcePool) UsageString() string {
	return poolUsage(p.Name, p.Allocator, p.Size)
}

func (p *BufferResourcePool) LogDetails() {
	log.Printf("%s %v", p.UsageString(), p.Allocator.Allocations())
}

func (p *BufferResourcePool) Destroy() {
	if p.Allocator != nil {
		for _, a := range p.Allocator.Allocations() {
			if a.Object != nil {
				a.Object.Destroy()
			}
		}
		p.Allocator = nil
	}
	if p.Memory != nil {
		p.Memory.Destroy()
		p.Memory = nil
	}
	delete(p.ResourceManager.bufferPools, p.Name)
}

// ImageResourcePool owns one device memory allocation and binds images into
// it.
type ImageResourcePool struct {
	Device           *Device
	Name             string
	Usage            vk.ImageUsageFlagBits
	Sharing          vk.SharingMode
	MemoryProperties vk.MemoryPropertyFlagBits
	Size             uint64
	Allocator        IAllocator
	Memory           *DeviceMemory
	ResourceManager  *ResourceManager
}

func (p *ImageResourcePool) AllocateImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlagBits) (*ImageResource, error) {
	i, err := p.Device.CreateImage(extent, format, tiling, vk.ImageUsageFlags(usage))
	if err != nil {
		return nil, err
	}

	mr := i.VKMemoryRequirements()
	mr.Deref()

	allocation := p.Allocator.Allocate(uint64(mr.Size), uint64(mr.Alignment))
	if allocation == nil {
		i.Destroy()
		return nil, errInsufficientPoolSpace
	}

	err = vk.Error(vk.BindImageMemory(p.Device.VKDevice, i.VKImage, p.Memory.VKDeviceMemory, vk.DeviceSize(allocation.Offset)))
	if err != nil {
		i.Destroy()
		p.Allocator.Free(allocation)
		return nil, err
	}

	img := &ImageResource{}
	img.VKImage = i.VKImage
	img.Device = i.Device
	img.VKFormat = i.VKFormat
	img.VKExtent = extent
	img.Allocation = allocation
	img.ResourcePool = p

	allocation.Object = img

	return img, nil
}

// UsageString reports the pool's occupancy in human readable sizes.
func (p *ImageResourcePool) UsageString() string {
	return poolUsage(p.Name, p.Allocator, p.Size)
}

func (p *ImageResourcePool) LogDetails() {
	log.Printf("%s %v", p.UsageString(), p.Allocator.Allocations())
}

func (p *ImageResourcePool) Destroy() {
	if p.Allocator != nil {
		for _, a := range p.Allocator.Allocations() {
			if a.Object != nil {
				a.Object.Destroy()
			}
		}
		p.Allocator = nil
	}
	if p.Memory != nil {
		p.Memory.Destroy()
		p.Memory = nil
	}
	delete(p.ResourceManager.imagePools, p.Name)
}

func poolUsage(name string, allocator IAllocator, size uint64) string {
	var used uint64
	allocs := allocator.Allocations()
	for _, a := range allocs {
		used += a.Size
	}
	return fmt.Sprintf("pool %s: %s of %s used in %d allocations",
		name, gu.BytesSize(float64(used)), gu.BytesSize(float64(size)), len(allocs))
}

// ResourceManager tracks named buffer and image pools for a device.
type ResourceManager struct {
	Device      *Device
	bufferPools map[string]*BufferResourcePool
	imagePools  map[string]*ImageResourcePool
}

func (d *Device) CreateResourceManager() *ResourceManager {
	return &ResourceManager{Device: d, bufferPools: make(map[string]*BufferResourcePool), imagePools: make(map[string]*ImageResourcePool)}
}

func (r *ResourceManager) GetStagingPool() *BufferResourcePool {
	return r.bufferPools[StagingPoolName]
}

func (r *ResourceManager) HasStagingPool() bool {
	return r.bufferPools[StagingPoolName] != nil
}

func (r *ResourceManager) AllocateStagingPool(size uint64) (*BufferResourcePool, error) {
	return r.AllocateBufferPoolWithOptions(StagingPoolName, size, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit, vk.BufferUsageTransferSrcBit, vk.SharingModeExclusive)
}

func (r *ResourceManager) AllocateHostVertexAndIndexBufferPool(name string, size uint64) (*BufferResourcePool, error) {
	return r.AllocateBufferPoolWithOptions(name, size, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit, vk.BufferUsageVertexBufferBit|vk.BufferUsageIndexBufferBit, vk.SharingModeExclusive)
}

func (r *ResourceManager) AllocateDeviceTexturePool(name string, size uint64) (*ImageResourcePool, error) {
	return r.AllocateImagePoolWithOptions(name, size, vk.MemoryPropertyDeviceLocalBit, vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit, vk.SharingModeExclusive)
}

func (r *ResourceManager) AllocateBufferPoolWithOptions(name string, size uint64, mprops vk.MemoryPropertyFlagBits, usage vk.BufferUsageFlagBits, sharing vk.SharingMode) (*BufferResourcePool, error) {

	p := &BufferResourcePool{
		Device:           r.Device,
		Name:             name,
		Usage:            usage,
		Sharing:          sharing,
		MemoryProperties: mprops,
		Size:             size,
		Allocator:        &LinearAllocator{Size: size},
		ResourceManager:  r,
	}

	// A throwaway buffer with the pool's usage yields the memory type bits
	// the whole pool must satisfy.
	probe, err := r.Device.CreateBufferWithOptions(size, vk.BufferUsageFlags(usage), sharing)
	if err != nil {
		return nil, err
	}
	defer probe.Destroy()

	mr := probe.VKMemoryRequirements()
	mr.Deref()

	memory, err := r.Device.Allocate(int(size), mr.MemoryTypeBits, vk.MemoryPropertyFlags(mprops))
	if err != nil {
		return nil, err
	}
	p.Memory = memory

	r.bufferPools[name] = p

	return p, nil
}

func (r *ResourceManager) AllocateImagePoolWithOptions(name string, size uint64, mprops vk.MemoryPropertyFlagBits, usage vk.ImageUsageFlagBits, sharing vk.SharingMode) (*ImageResourcePool, error) {

	p := &ImageResourcePool{
		Device:           r.Device,
		Name:             name,
		Usage:            usage,
		Sharing:          sharing,
		MemoryProperties: mprops,
		Size:             size,
		Allocator:        &LinearAllocator{Size: size},
		ResourceManager:  r,
	}

	probe, err := r.Device.CreateImage(vk.Extent2D{Width: 800, Height: 600}, vk.FormatR8g8b8a8Unorm, vk.ImageTilingOptimal, vk.ImageUsageFlags(usage))
	if err != nil {
		return nil, err
	}
	defer probe.Destroy()

	mr := probe.VKMemoryRequirements()
	mr.Deref()

	memory, err := r.Device.Allocate(int(size), mr.MemoryTypeBits, vk.MemoryPropertyFlags(mprops))
	if err != nil {
		return nil, err
	}
	p.Memory = memory

	r.imagePools[name] = p

	return p, nil
}

func (r *ResourceManager) ImagePool(name string) *ImageResourcePool {
	return r.imagePools[name]
}

func (r *ResourceManager) BufferPool(name string) *BufferResourcePool {
	return r.bufferPools[name]
}

func (r *ResourceManager) LogDetails() {
	for _, pool := range r.bufferPools {
		pool.LogDetails()
	}
	for _, pool := range r.imagePools {
		pool.LogDetails()
	}
}

func (r *ResourceManager) Destroy() {
	for _, p := range r.bufferPools {
		p.Destroy()
	}
	for _, p := range r.imagePools {
		p.Destroy()
	}
}
