package vkb

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

func IsDepthOnlyFormat(format vk.Format) bool {
	return format == vk.FormatD16Unorm || format == vk.FormatD32Sfloat
}

func IsDepthStencilFormat(format vk.Format) bool {
	return format == vk.FormatD16UnormS8Uint ||
		format == vk.FormatD24UnormS8Uint ||
		format == vk.FormatD32SfloatS8Uint ||
		IsDepthOnlyFormat(format)
}

func IsDynamicBufferDescriptorType(descriptorType vk.DescriptorType) bool {
	return descriptorType == vk.DescriptorTypeStorageBufferDynamic ||
		descriptorType == vk.DescriptorTypeUniformBufferDynamic
}

func IsBufferDescriptorType(descriptorType vk.DescriptorType) bool {
	return descriptorType == vk.DescriptorTypeStorageBuffer ||
		descriptorType == vk.DescriptorTypeUniformBuffer ||
		IsDynamicBufferDescriptorType(descriptorType)
}

// GetSupportedDepthFormat returns the highest precision depth format the
// device can use as a depth stencil attachment with optimal tiling.
func (p *PhysicalDevice) GetSupportedDepthFormat() (vk.Format, error) {
	priority := []vk.Format{
		vk.FormatD32SfloatS8Uint,
		vk.FormatD32Sfloat,
		vk.FormatD24UnormS8Uint,
		vk.FormatD16UnormS8Uint,
		vk.FormatD16Unorm,
	}

	for _, format := range priority {
		var props vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(p.VKPhysicalDevice, format, &props)
		props.Deref()
		if vk.FormatFeatureFlagBits(props.OptimalTilingFeatures)&vk.FormatFeatureDepthStencilAttachmentBit != 0 {
			return format, nil
		}
	}
	return vk.FormatUndefined, fmt.Errorf("no suitable depth format found")
}

// BitsPerPixel returns the storage size of one pixel in the given format, or
// -1 for compressed and otherwise unsized formats.
func BitsPerPixel(format vk.Format) int {
	switch format {
	case vk.FormatR4g4UnormPack8, vk.FormatR8Unorm, vk.FormatR8Snorm,
		vk.FormatR8Uscaled, vk.FormatR8Sscaled, vk.FormatR8Uint,
		vk.FormatR8Sint, vk.FormatR8Srgb, vk.FormatS8Uint:
		return 8
	case vk.FormatR4g4b4a4UnormPack16, vk.FormatB4g4r4a4UnormPack16,
		vk.FormatR5g6b5UnormPack16, vk.FormatB5g6r5UnormPack16,
		vk.FormatR5g5b5a1UnormPack16, vk.FormatB5g5r5a1UnormPack16,
		vk.FormatA1r5g5b5UnormPack16, vk.FormatR8g8Unorm, vk.FormatR8g8Snorm,
		vk.FormatR8g8Uscaled, vk.FormatR8g8Sscaled, vk.FormatR8g8Uint,
		vk.FormatR8g8Sint, vk.FormatR8g8Srgb, vk.FormatR16Unorm,
		vk.FormatR16Snorm, vk.FormatR16Uscaled, vk.FormatR16Sscaled,
		vk.FormatR16Uint, vk.FormatR16Sint, vk.FormatR16Sfloat,
		vk.FormatD16Unorm:
		return 16
	case vk.FormatR8g8b8Unorm, vk.FormatR8g8b8Snorm, vk.FormatR8g8b8Uscaled,
		vk.FormatR8g8b8Sscaled, vk.FormatR8g8b8Uint, vk.FormatR8g8b8Sint,
		vk.FormatR8g8b8Srgb, vk.FormatB8g8r8Unorm, vk.FormatB8g8r8Snorm,
		vk.FormatB8g8r8Uscaled, vk.FormatB8g8r8Sscaled, vk.FormatB8g8r8Uint,
		vk.FormatB8g8r8Sint, vk.FormatB8g8r8Srgb, vk.FormatD16UnormS8Uint:
		return 24
	case vk.FormatR8g8b8a8Unorm, vk.FormatR8g8b8a8Snorm,
		vk.FormatR8g8b8a8Uscaled, vk.FormatR8g8b8a8Sscaled,
		vk.FormatR8g8b8a8Uint, vk.FormatR8g8b8a8Sint, vk.FormatR8g8b8a8Srgb,
		vk.FormatB8g8r8a8Unorm, vk.FormatB8g8r8a8Snorm,
		vk.FormatB8g8r8a8Uscaled, vk.FormatB8g8r8a8Sscaled,
		vk.FormatB8g8r8a8Uint, vk.FormatB8g8r8a8Sint, vk.FormatB8g8r8a8Srgb,
		vk.FormatA8b8g8r8UnormPack32, vk.FormatA8b8g8r8SnormPack32,
		vk.FormatA8b8g8r8UscaledPack32, vk.FormatA8b8g8r8SscaledPack32,
		vk.FormatA8b8g8r8UintPack32, vk.FormatA8b8g8r8SintPack32,
		vk.FormatA8b8g8r8SrgbPack32, vk.FormatA2r10g10b10UnormPack32,
		vk.FormatA2r10g10b10SnormPack32, vk.FormatA2r10g10b10UscaledPack32,
		vk.FormatA2r10g10b10SscaledPack32, vk.FormatA2r10g10b10UintPack32,
		vk.FormatA2r10g10b10SintPack32, vk.FormatA2b10g10r10UnormPack32,
		vk.FormatA2b10g10r10SnormPack32, vk.FormatA2b10g10r10UscaledPack32,
		vk.FormatA2b10g10r10SscaledPack32, vk.FormatA2b10g10r10UintPack32,
		vk.FormatA2b10g10r10SintPack32, vk.FormatR16g16Unorm,
		vk.FormatR16g16Snorm, vk.FormatR16g16Uscaled, vk.FormatR16g16Sscaled,
		vk.FormatR16g16Uint, vk.FormatR16g16Sint, vk.FormatR16g16Sfloat,
		vk.FormatR32Uint, vk.FormatR32Sint, vk.FormatR32Sfloat,
		vk.FormatB10g11r11UfloatPack32, vk.FormatE5b9g9r9UfloatPack32,
		vk.FormatD32Sfloat, vk.FormatD24UnormS8Uint:
		return 32
	case vk.FormatD32SfloatS8Uint:
		return 40
	case vk.FormatR16g16b16Unorm, vk.FormatR16g16b16Snorm,
		vk.FormatR16g16b16Uscaled, vk.FormatR16g16b16Sscaled,
		vk.FormatR16g16b16Uint, vk.FormatR16g16b16Sint,
		vk.FormatR16g16b16Sfloat:
		return 48
	case vk.FormatR16g16b16a16Unorm, vk.FormatR16g16b16a16Snorm,
		vk.FormatR16g16b16a16Uscaled, vk.FormatR16g16b16a16Sscaled,
		vk.FormatR16g16b16a16Uint, vk.FormatR16g16b16a16Sint,
		vk.FormatR16g16b16a16Sfloat, vk.FormatR32g32Uint, vk.FormatR32g32Sint,
		vk.FormatR32g32Sfloat, vk.FormatR64Uint, vk.FormatR64Sint,
		vk.FormatR64Sfloat:
		return 64
	case vk.FormatR32g32b32Uint, vk.FormatR32g32b32Sint, vk.FormatR32g32b32Sfloat:
		return 96
	case vk.FormatR32g32b32a32Uint, vk.FormatR32g32b32a32Sint,
		vk.FormatR32g32b32a32Sfloat, vk.FormatR64g64Uint, vk.FormatR64g64Sint,
		vk.FormatR64g64Sfloat:
		return 128
	case vk.FormatR64g64b64Uint, vk.FormatR64g64b64Sint, vk.FormatR64g64b64Sfloat:
		return 192
	case vk.FormatR64g64b64a64Uint, vk.FormatR64g64b64a64Sint, vk.FormatR64g64b64a64Sfloat:
		return 256
	}
	return -1
}

// InsertImageMemoryBarrier records a pipeline barrier with explicit access
// masks and layouts for one image subresource range.
func (c *CommandBuffer) InsertImageMemoryBarrier(image vk.Image,
	srcAccessMask, dstAccessMask vk.AccessFlags,
	oldLayout, newLayout vk.ImageLayout,
	srcStageMask, dstStageMask vk.PipelineStageFlags,
	subresourceRange vk.ImageSubresourceRange) {

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       srcAccessMask,
		DstAccessMask:       dstAccessMask,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange:    subresourceRange,
	}

	vk.CmdPipelineBarrier(c.VKCommandBuffer, srcStageMask, dstStageMask, 0,
		0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

// SetImageLayout transitions an image between layouts, deriving the access
// masks from the layouts themselves.
func (c *CommandBuffer) SetImageLayout(image vk.Image,
	oldLayout, newLayout vk.ImageLayout,
	srcStageMask, dstStageMask vk.PipelineStageFlags,
	subresourceRange vk.ImageSubresourceRange) {

	var srcAccessMask, dstAccessMask vk.AccessFlags

	switch oldLayout {
	case vk.ImageLayoutUndefined:
		// Only valid as an initial layout, no contents to preserve.
		srcAccessMask = 0
	case vk.ImageLayoutPreinitialized:
		srcAccessMask = vk.AccessFlags(vk.AccessHostWriteBit)
	case vk.ImageLayoutColorAttachmentOptimal:
		srcAccessMask = vk.AccessFlags(vk.AccessColorAttachmentWriteBit)
	case vk.ImageLayoutDepthStencilAttachmentOptimal:
		srcAccessMask = vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit)
	case vk.ImageLayoutTransferSrcOptimal:
		srcAccessMask = vk.AccessFlags(vk.AccessTransferReadBit)
	case vk.ImageLayoutTransferDstOptimal:
		srcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
	case vk.ImageLayoutShaderReadOnlyOptimal:
		srcAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
	}

	switch newLayout {
	case vk.ImageLayoutTransferDstOptimal:
		dstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
	case vk.ImageLayoutTransferSrcOptimal:
		dstAccessMask = vk.AccessFlags(vk.AccessTransferReadBit)
	case vk.ImageLayoutColorAttachmentOptimal:
		dstAccessMask = vk.AccessFlags(vk.AccessColorAttachmentWriteBit)
	case vk.ImageLayoutDepthStencilAttachmentOptimal:
		dstAccessMask |= vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit)
	case vk.ImageLayoutShaderReadOnlyOptimal:
		if srcAccessMask == 0 {
			srcAccessMask = vk.AccessFlags(vk.AccessHostWriteBit | vk.AccessTransferWriteBit)
		}
		dstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
	}

	c.InsertImageMemoryBarrier(image, srcAccessMask, dstAccessMask,
		oldLayout, newLayout, srcStageMask, dstStageMask, subresourceRange)
}
