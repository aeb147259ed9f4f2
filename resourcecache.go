package vkb

import (
	"encoding/binary"
	"hash/fnv"
	"sync"
)

// ResourceCache hands out descriptor set layouts and pipeline layouts keyed
// by the content that defines them, so identical requests share one object.
// The cache owns everything it returns; callers borrow and never destroy.
//
// Requests are safe for concurrent use. Each kind has its own lock because a
// pipeline layout request issues descriptor set layout requests while it is
// being built.
type ResourceCache struct {
	device *Device

	setLayoutsMu sync.RWMutex
	setLayouts   map[uint64]*DescriptorSetLayout

	pipelineLayoutsMu sync.RWMutex
	pipelineLayouts   map[uint64]*PipelineLayout

	hits   uint64
	misses uint64
}

func newResourceCache(d *Device) *ResourceCache {
	return &ResourceCache{
		device:          d,
		setLayouts:      make(map[uint64]*DescriptorSetLayout),
		pipelineLayouts: make(map[uint64]*PipelineLayout),
	}
}

func hashDescriptorSetLayout(setIndex uint32, resourceSet []ShaderResource, dynamic bool) uint64 {
	h := fnv.New64a()
	var buf [4]byte

	put := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:], v)
		h.Write(buf[:])
	}

	put(setIndex)
	for _, res := range resourceSet {
		h.Write([]byte(res.Name))
		put(uint32(res.Type))
		put(uint32(res.Stages))
		put(res.Set)
		put(res.Binding)
		put(res.ArraySize)
		put(res.Offset)
		put(res.Size)
	}
	if dynamic {
		put(1)
	} else {
		put(0)
	}
	return h.Sum64()
}

func hashPipelineLayout(program *ShaderProgram, dynamic bool) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	for _, m := range program.Modules {
		binary.LittleEndian.PutUint64(buf[:], m.ID())
		h.Write(buf[:])
	}
	if dynamic {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// RequestDescriptorSetLayout returns the cached layout for this resource set,
// deriving and creating it on first request.
func (c *ResourceCache) RequestDescriptorSetLayout(setIndex uint32, resourceSet []ShaderResource, dynamic bool) (*DescriptorSetLayout, error) {
	key := hashDescriptorSetLayout(setIndex, resourceSet, dynamic)

	c.setLayoutsMu.RLock()
	layout, ok := c.setLayouts[key]
	c.setLayoutsMu.RUnlock()
	if ok {
		c.setLayoutsMu.Lock()
		c.hits++
		c.setLayoutsMu.Unlock()
		return layout, nil
	}

	c.setLayoutsMu.Lock()
	defer c.setLayoutsMu.Unlock()
	if layout, ok := c.setLayouts[key]; ok {
		c.hits++
		return layout, nil
	}

	layout, err := c.device.CreateDescriptorSetLayoutFromResources(resourceSet, dynamic)
	if err != nil {
		return nil, err
	}
	c.setLayouts[key] = layout
	c.misses++
	return layout, nil
}

// RequestPipelineLayout returns the cached pipeline layout for this program,
// deriving it on first request. The derivation pulls its per set layouts
// through RequestDescriptorSetLayout, so those are shared as well.
func (c *ResourceCache) RequestPipelineLayout(program *ShaderProgram, dynamic bool) (*PipelineLayout, error) {
	key := hashPipelineLayout(program, dynamic)

	c.pipelineLayoutsMu.RLock()
	layout, ok := c.pipelineLayouts[key]
	c.pipelineLayoutsMu.RUnlock()
	if ok {
		return layout, nil
	}

	c.pipelineLayoutsMu.Lock()
	defer c.pipelineLayoutsMu.Unlock()
	if layout, ok := c.pipelineLayouts[key]; ok {
		return layout, nil
	}

	layout, err := newPipelineLayout(c.device, program, dynamic)
	if err != nil {
		return nil, err
	}
	c.pipelineLayouts[key] = layout
	return layout, nil
}

// Stats reports how many descriptor set layout requests were served from the
// cache versus derived.
func (c *ResourceCache) Stats() (hits, misses uint64) {
	c.setLayoutsMu.RLock()
	defer c.setLayoutsMu.RUnlock()
	return c.hits, c.misses
}

// Destroy tears the cache down in dependency order. Pipeline layouts borrow
// the descriptor set layouts, so they go first.
func (c *ResourceCache) Destroy() {
	c.pipelineLayoutsMu.Lock()
	for key, layout := range c.pipelineLayouts {
		layout.Destroy()
		delete(c.pipelineLayouts, key)
	}
	c.pipelineLayoutsMu.Unlock()

	c.setLayoutsMu.Lock()
	for key, layout := range c.setLayouts {
		layout.Destroy()
		delete(c.setLayouts, key)
	}
	c.setLayoutsMu.Unlock()
}
