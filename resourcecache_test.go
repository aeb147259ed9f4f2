package vkb

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestHashDescriptorSetLayoutDeterministic(t *testing.T) {
	resources := []ShaderResource{
		{Name: "ubo", Type: ShaderResourceBufferUniform, Set: 0, Binding: 0,
			ArraySize: 1, Stages: vk.ShaderStageFlags(vk.ShaderStageVertexBit)},
		{Name: "tex", Type: ShaderResourceImageSampler, Set: 0, Binding: 1,
			ArraySize: 1, Stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
	}

	a := hashDescriptorSetLayout(0, resources, false)
	b := hashDescriptorSetLayout(0, resources, false)
	if a != b {
		t.Error("same inputs hashed differently")
	}
}

func TestHashDescriptorSetLayoutDiverges(t *testing.T) {
	base := []ShaderResource{
		{Name: "ubo", Type: ShaderResourceBufferUniform, Set: 0, Binding: 0,
			ArraySize: 1, Stages: vk.ShaderStageFlags(vk.ShaderStageVertexBit)},
	}

	ref := hashDescriptorSetLayout(0, base, false)

	if hashDescriptorSetLayout(1, base, false) == ref {
		t.Error("set index not part of the key")
	}
	if hashDescriptorSetLayout(0, base, true) == ref {
		t.Error("dynamic flag not part of the key")
	}

	renamed := []ShaderResource{base[0]}
	renamed[0].Name = "ubo2"
	if hashDescriptorSetLayout(0, renamed, false) == ref {
		t.Error("resource name not part of the key")
	}

	rebound := []ShaderResource{base[0]}
	rebound[0].Binding = 7
	if hashDescriptorSetLayout(0, rebound, false) == ref {
		t.Error("binding index not part of the key")
	}

	restaged := []ShaderResource{base[0]}
	restaged[0].Stages = vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	if hashDescriptorSetLayout(0, restaged, false) == ref {
		t.Error("stage flags not part of the key")
	}
}

func TestHashPipelineLayout(t *testing.T) {
	vert := &ShaderModule{id: 101}
	frag := &ShaderModule{id: 202}
	otherFrag := &ShaderModule{id: 303}

	a := hashPipelineLayout(NewShaderProgram(vert, frag), false)
	b := hashPipelineLayout(NewShaderProgram(vert, frag), false)
	if a != b {
		t.Error("same modules hashed differently")
	}

	if hashPipelineLayout(NewShaderProgram(vert, otherFrag), false) == a {
		t.Error("module identity not part of the key")
	}
	if hashPipelineLayout(NewShaderProgram(vert, frag), true) == a {
		t.Error("dynamic flag not part of the key")
	}
}
