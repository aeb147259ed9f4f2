package vkb

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestIsDepthOnlyFormat(t *testing.T) {
	if !IsDepthOnlyFormat(vk.FormatD32Sfloat) {
		t.Error("D32Sfloat is depth only")
	}
	if !IsDepthOnlyFormat(vk.FormatD16Unorm) {
		t.Error("D16Unorm is depth only")
	}
	if IsDepthOnlyFormat(vk.FormatD24UnormS8Uint) {
		t.Error("D24UnormS8Uint carries stencil")
	}
	if IsDepthOnlyFormat(vk.FormatR8g8b8a8Unorm) {
		t.Error("R8g8b8a8Unorm is a color format")
	}
}

func TestIsDepthStencilFormat(t *testing.T) {
	for _, f := range []vk.Format{
		vk.FormatD16Unorm,
		vk.FormatD32Sfloat,
		vk.FormatD16UnormS8Uint,
		vk.FormatD24UnormS8Uint,
		vk.FormatD32SfloatS8Uint,
	} {
		if !IsDepthStencilFormat(f) {
			t.Errorf("%v is a depth stencil format", f)
		}
	}
	if IsDepthStencilFormat(vk.FormatB8g8r8a8Unorm) {
		t.Error("B8g8r8a8Unorm is a color format")
	}
}

func TestIsBufferDescriptorType(t *testing.T) {
	for _, d := range []vk.DescriptorType{
		vk.DescriptorTypeUniformBuffer,
		vk.DescriptorTypeStorageBuffer,
		vk.DescriptorTypeUniformBufferDynamic,
		vk.DescriptorTypeStorageBufferDynamic,
	} {
		if !IsBufferDescriptorType(d) {
			t.Errorf("%v is a buffer descriptor type", d)
		}
	}

	if IsBufferDescriptorType(vk.DescriptorTypeCombinedImageSampler) {
		t.Error("combined image sampler is not a buffer descriptor type")
	}

	if IsDynamicBufferDescriptorType(vk.DescriptorTypeUniformBuffer) {
		t.Error("plain uniform buffer is not dynamic")
	}
	if !IsDynamicBufferDescriptorType(vk.DescriptorTypeStorageBufferDynamic) {
		t.Error("dynamic storage buffer is dynamic")
	}
}

func TestBitsPerPixel(t *testing.T) {
	cases := []struct {
		format vk.Format
		want   int
	}{
		{vk.FormatR8Unorm, 8},
		{vk.FormatR5g6b5UnormPack16, 16},
		{vk.FormatD16Unorm, 16},
		{vk.FormatR8g8b8Srgb, 24},
		{vk.FormatR8g8b8a8Unorm, 32},
		{vk.FormatB8g8r8a8Srgb, 32},
		{vk.FormatD24UnormS8Uint, 32},
		{vk.FormatD32SfloatS8Uint, 40},
		{vk.FormatR16g16b16Sfloat, 48},
		{vk.FormatR16g16b16a16Sfloat, 64},
		{vk.FormatR32g32b32Sfloat, 96},
		{vk.FormatR32g32b32a32Sfloat, 128},
		{vk.FormatR64g64b64Sfloat, 192},
		{vk.FormatR64g64b64a64Sfloat, 256},
		{vk.FormatBc1RgbUnormBlock, -1},
		{vk.FormatUndefined, -1},
	}

	for _, c := range cases {
		if got := BitsPerPixel(c.format); got != c.want {
			t.Errorf("BitsPerPixel(%v) = %d, want %d", c.format, got, c.want)
		}
	}
}
