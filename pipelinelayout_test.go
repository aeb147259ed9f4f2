package vkb

import (
	"errors"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestGetPushConstantRangeStage(t *testing.T) {
	layout := &PipelineLayout{
		pushConstantRanges: []vk.PushConstantRange{
			{StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit), Offset: 0, Size: 16},
			{StageFlags: vk.ShaderStageFlags(vk.ShaderStageFragmentBit), Offset: 16, Size: 8},
		},
	}

	cases := []struct {
		offset, size uint32
		want         vk.ShaderStageFlags
	}{
		{0, 16, vk.ShaderStageFlags(vk.ShaderStageVertexBit)},
		{4, 8, vk.ShaderStageFlags(vk.ShaderStageVertexBit)},
		{16, 8, vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
		{20, 4, vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
		// Spans both ranges, contained by neither.
		{0, 24, 0},
		{24, 8, 0},
		{0, 0, vk.ShaderStageFlags(vk.ShaderStageVertexBit)},
	}

	for _, c := range cases {
		got := layout.GetPushConstantRangeStage(c.offset, c.size)
		if got != c.want {
			t.Errorf("GetPushConstantRangeStage(%d, %d) = %v, want %v", c.offset, c.size, got, c.want)
		}
	}
}

func TestGetPushConstantRangeStageUnion(t *testing.T) {
	layout := &PipelineLayout{
		pushConstantRanges: []vk.PushConstantRange{
			{StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit), Offset: 0, Size: 16},
			{StageFlags: vk.ShaderStageFlags(vk.ShaderStageComputeBit), Offset: 0, Size: 32},
		},
	}

	want := vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageComputeBit)
	if got := layout.GetPushConstantRangeStage(4, 8); got != want {
		t.Errorf("overlapping ranges = %v, want %v", got, want)
	}

	if got := layout.GetPushConstantRangeStage(16, 8); got != vk.ShaderStageFlags(vk.ShaderStageComputeBit) {
		t.Errorf("tail of larger range = %v, want compute only", got)
	}
}

func TestHasDescriptorSetLayoutSparseSets(t *testing.T) {
	// Shader programs may skip set indices entirely, leaving holes.
	layout := &PipelineLayout{
		setLayouts: map[uint32]*DescriptorSetLayout{
			0: {},
			2: {},
		},
	}

	if !layout.HasDescriptorSetLayout(0) {
		t.Error("set 0 should exist")
	}
	if layout.HasDescriptorSetLayout(1) {
		t.Error("set 1 should not exist")
	}
	if !layout.HasDescriptorSetLayout(2) {
		t.Error("set 2 should exist")
	}
	if layout.HasDescriptorSetLayout(3) {
		t.Error("set 3 should not exist")
	}
}

func TestGetDescriptorSetLayout(t *testing.T) {
	dsl := &DescriptorSetLayout{}
	layout := &PipelineLayout{
		setLayouts: map[uint32]*DescriptorSetLayout{2: dsl},
	}

	got, err := layout.GetDescriptorSetLayout(2)
	if err != nil {
		t.Fatal(err)
	}
	if got != dsl {
		t.Error("returned a different layout")
	}

	_, err = layout.GetDescriptorSetLayout(1)
	if !errors.Is(err, ErrUnknownSetIndex) {
		t.Errorf("error %v does not wrap ErrUnknownSetIndex", err)
	}
}

func TestPushConstantRangesOrder(t *testing.T) {
	ranges := []vk.PushConstantRange{
		{StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit), Offset: 0, Size: 8},
		{StageFlags: vk.ShaderStageFlags(vk.ShaderStageFragmentBit), Offset: 8, Size: 8},
	}
	layout := &PipelineLayout{pushConstantRanges: ranges}

	got := layout.PushConstantRanges()
	if len(got) != 2 || got[0].Offset != 0 || got[1].Offset != 8 {
		t.Errorf("ranges out of order: %+v", got)
	}
}
