package vkb

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestFindShaderStage(t *testing.T) {
	cases := []struct {
		ext  string
		want vk.ShaderStageFlagBits
	}{
		{"vert", vk.ShaderStageVertexBit},
		{"frag", vk.ShaderStageFragmentBit},
		{"comp", vk.ShaderStageComputeBit},
		{"geom", vk.ShaderStageGeometryBit},
		{"tesc", vk.ShaderStageTessellationControlBit},
		{"tese", vk.ShaderStageTessellationEvaluationBit},
		{"rgen", vk.ShaderStageRaygenBitNvx},
		{"rmiss", vk.ShaderStageMissBitNvx},
		{"rchit", vk.ShaderStageClosestHitBitNvx},
	}

	for _, c := range cases {
		got, err := FindShaderStage(c.ext)
		if err != nil {
			t.Errorf("FindShaderStage(%q): %v", c.ext, err)
			continue
		}
		if got != c.want {
			t.Errorf("FindShaderStage(%q) = %v, want %v", c.ext, got, c.want)
		}
	}

	if _, err := FindShaderStage("glsl"); err == nil {
		t.Error("unknown extension should fail")
	}
}

func TestNewShaderProgramMergesStages(t *testing.T) {
	vert := &ShaderModule{
		Stage: vk.ShaderStageVertexBit,
		Resources: []ShaderResource{
			{Name: "ubo", Type: ShaderResourceBufferUniform, Set: 0, Binding: 0,
				ArraySize: 1, Stages: vk.ShaderStageFlags(vk.ShaderStageVertexBit)},
		},
	}
	frag := &ShaderModule{
		Stage: vk.ShaderStageFragmentBit,
		Resources: []ShaderResource{
			{Name: "ubo", Type: ShaderResourceBufferUniform, Set: 0, Binding: 0,
				ArraySize: 1, Stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
			{Name: "tex", Type: ShaderResourceImageSampler, Set: 0, Binding: 1,
				ArraySize: 1, Stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
		},
	}

	program := NewShaderProgram(vert, frag)

	uniforms := program.Resources(ShaderResourceBufferUniform)
	if len(uniforms) != 1 {
		t.Fatalf("have %d uniform resources, want 1", len(uniforms))
	}

	want := vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit)
	if uniforms[0].Stages != want {
		t.Errorf("merged stages = %v, want %v", uniforms[0].Stages, want)
	}

	samplers := program.Resources(ShaderResourceImageSampler)
	if len(samplers) != 1 || samplers[0].Name != "tex" {
		t.Errorf("unexpected samplers: %+v", samplers)
	}
}

func TestNewShaderProgramKeepsStageIOSeparate(t *testing.T) {
	// The same name can legitimately be a vertex output and a fragment
	// input, those must not collapse into one resource.
	vert := &ShaderModule{
		Resources: []ShaderResource{
			{Name: "uv", Type: ShaderResourceOutput,
				Stages: vk.ShaderStageFlags(vk.ShaderStageVertexBit)},
		},
	}
	frag := &ShaderModule{
		Resources: []ShaderResource{
			{Name: "uv", Type: ShaderResourceInput,
				Stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
		},
	}

	program := NewShaderProgram(vert, frag)

	if len(program.Resources(ShaderResourceOutput)) != 1 {
		t.Error("vertex output lost in merge")
	}
	if len(program.Resources(ShaderResourceInput)) != 1 {
		t.Error("fragment input lost in merge")
	}
}

func TestShaderSets(t *testing.T) {
	module := &ShaderModule{
		Resources: []ShaderResource{
			{Name: "in_pos", Type: ShaderResourceInput},
			{Name: "push", Type: ShaderResourcePushConstant, Size: 16},
			{Name: "lod", Type: ShaderResourceSpecializationConstant},
			{Name: "ubo", Type: ShaderResourceBufferUniform, Set: 0, Binding: 0, ArraySize: 1},
			{Name: "tex", Type: ShaderResourceImageSampler, Set: 0, Binding: 1, ArraySize: 1},
			{Name: "lights", Type: ShaderResourceBufferStorage, Set: 2, Binding: 0, ArraySize: 1},
		},
	}

	sets := NewShaderProgram(module).ShaderSets()

	if len(sets) != 2 {
		t.Fatalf("have %d sets, want 2", len(sets))
	}
	if len(sets[0]) != 2 {
		t.Errorf("set 0 has %d resources, want 2", len(sets[0]))
	}
	if len(sets[2]) != 1 || sets[2][0].Name != "lights" {
		t.Errorf("unexpected set 2: %+v", sets[2])
	}
	if _, ok := sets[1]; ok {
		t.Error("set 1 should not exist")
	}
}

func TestShaderProgramResourcesOrder(t *testing.T) {
	module := &ShaderModule{
		Resources: []ShaderResource{
			{Name: "a", Type: ShaderResourceBufferUniform, Binding: 0, ArraySize: 1},
			{Name: "b", Type: ShaderResourceBufferUniform, Binding: 1, ArraySize: 1},
			{Name: "c", Type: ShaderResourceBufferUniform, Binding: 2, ArraySize: 1},
		},
	}

	got := NewShaderProgram(module).Resources(ShaderResourceBufferUniform)
	if len(got) != 3 || got[0].Name != "a" || got[1].Name != "b" || got[2].Name != "c" {
		t.Errorf("declaration order not preserved: %+v", got)
	}
}
