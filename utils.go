package vkb

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Native calls expect C strings, so every string handed to Vulkan goes
// through safeString first.
var end = "\x00"
var endChar byte = '\x00'

// DestroyAny destroys a raw Vulkan handle or anything implementing
// IDestructable. Unknown types are silently ignored.
func (d *Device) DestroyAny(i interface{}) {
	switch t := i.(type) {
	case vk.ImageView:
		vk.DestroyImageView(d.VKDevice, t, nil)
	case vk.Sampler:
		vk.DestroySampler(d.VKDevice, t, nil)
	case vk.DescriptorPool:
		vk.DestroyDescriptorPool(d.VKDevice, t, nil)
	case vk.Buffer:
		vk.DestroyBuffer(d.VKDevice, t, nil)
	case vk.Image:
		vk.DestroyImage(d.VKDevice, t, nil)
	case vk.Pipeline:
		vk.DestroyPipeline(d.VKDevice, t, nil)
	case vk.PipelineCache:
		vk.DestroyPipelineCache(d.VKDevice, t, nil)
	case vk.Fence:
		vk.DestroyFence(d.VKDevice, t, nil)
	case vk.RenderPass:
		vk.DestroyRenderPass(d.VKDevice, t, nil)
	case vk.Semaphore:
		vk.DestroySemaphore(d.VKDevice, t, nil)
	case IDestructable:
		t.Destroy()
	}
}

// ToBytes views lenInBytes of memory behind ptr as a byte slice, without
// copying.
func ToBytes(ptr unsafe.Pointer, lenInBytes int) []byte {
	const m = 0x7fffffff
	return (*[m]byte)(ptr)[:lenInBytes]
}

// safeString null terminates a string unless it already is.
func safeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

func safeStrings(list []string) []string {
	for i := range list {
		list[i] = safeString(list[i])
	}
	return list
}
