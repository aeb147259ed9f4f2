package vkb

import (
	vk "github.com/vulkan-go/vulkan"
)

type IDestructable interface {
	Destroy()
}

type BufferObject interface {
	Bytes() []byte
}

type IndexSource interface {
	BufferObject
	IndexType() vk.IndexType
}

type VertexSource interface {
	BufferObject
	GetBindingDescription() vk.VertexInputBindingDescription
	GetAttributeDescriptions() []vk.VertexInputAttributeDescription
}
