package vkb

import (
	"testing"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

func stampStages(resources []ShaderResource, stage vk.ShaderStageFlagBits) []ShaderResource {
	for i := range resources {
		resources[i].Stages |= vk.ShaderStageFlags(stage)
	}
	return resources
}

func TestGuiShaderResourcesDeriveLayout(t *testing.T) {
	vert := &ShaderModule{
		Stage:     vk.ShaderStageVertexBit,
		Resources: stampStages(GuiVertexShaderResources(), vk.ShaderStageVertexBit),
	}
	frag := &ShaderModule{
		Stage:     vk.ShaderStageFragmentBit,
		Resources: stampStages(GuiFragmentShaderResources(), vk.ShaderStageFragmentBit),
	}

	program := NewShaderProgram(vert, frag)

	sets := program.ShaderSets()
	if len(sets) != 1 {
		t.Fatalf("have %d shader sets, want 1", len(sets))
	}
	if len(sets[0]) != 1 || sets[0][0].Name != "fontTexture" {
		t.Errorf("unexpected set 0: %+v", sets[0])
	}

	bindings, _, byName, err := deriveBindings(sets[0], false)
	if err != nil {
		t.Fatal(err)
	}
	if len(bindings) != 1 || bindings[0].DescriptorType != vk.DescriptorTypeCombinedImageSampler {
		t.Errorf("unexpected bindings: %+v", bindings)
	}
	if idx, ok := byName["fontTexture"]; !ok || idx != 0 {
		t.Errorf("fontTexture lookup = %d %v", idx, ok)
	}

	push := program.Resources(ShaderResourcePushConstant)
	if len(push) != 1 {
		t.Fatalf("have %d push constant blocks, want 1", len(push))
	}
	if push[0].Size != uint32(unsafe.Sizeof(GuiPushConstants{})) {
		t.Errorf("push constant size %d does not match the block", push[0].Size)
	}
	if push[0].Stages != vk.ShaderStageFlags(vk.ShaderStageVertexBit) {
		t.Errorf("push constant stages = %v, want vertex", push[0].Stages)
	}
}

func TestGuiDestroyLeavesSharedPool(t *testing.T) {
	rm := &ResourceManager{
		bufferPools: map[string]*BufferResourcePool{},
		imagePools:  map[string]*ImageResourcePool{},
	}
	pool := &BufferResourcePool{Name: GuiPoolName, ResourceManager: rm, Allocator: &LinearAllocator{Size: 1024}}
	rm.bufferPools[GuiPoolName] = pool
	app := &GraphicsApp{ResourceManager: rm}

	second := &Gui{app: app}
	second.Destroy()
	if rm.BufferPool(GuiPoolName) == nil {
		t.Fatal("overlay that reused the pool destroyed it")
	}

	first := &Gui{app: app, ownsPool: true}
	first.Destroy()
	if rm.BufferPool(GuiPoolName) != nil {
		t.Error("overlay that created the pool should destroy it")
	}
}

func TestGuiPushConstantsBytes(t *testing.T) {
	pc := GuiPushConstants{}
	if len(pc.Bytes()) != 16 {
		t.Errorf("push constant block is %d bytes, want 16", len(pc.Bytes()))
	}
}
