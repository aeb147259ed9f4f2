package vkb

import (
	"fmt"
	"hash/fnv"
	"io/ioutil"
	"path/filepath"
	"strings"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// ShaderResourceType identifies what kind of shader interface object a
// reflected resource is.
type ShaderResourceType int

const (
	ShaderResourceInput ShaderResourceType = iota
	ShaderResourceInputAttachment
	ShaderResourceOutput
	ShaderResourceImage
	ShaderResourceImageSampler
	ShaderResourceImageStorage
	ShaderResourceSampler
	ShaderResourceBufferUniform
	ShaderResourceBufferStorage
	ShaderResourcePushConstant
	ShaderResourceSpecializationConstant
)

func (t ShaderResourceType) String() string {
	switch t {
	case ShaderResourceInput:
		return "Input"
	case ShaderResourceInputAttachment:
		return "InputAttachment"
	case ShaderResourceOutput:
		return "Output"
	case ShaderResourceImage:
		return "Image"
	case ShaderResourceImageSampler:
		return "ImageSampler"
	case ShaderResourceImageStorage:
		return "ImageStorage"
	case ShaderResourceSampler:
		return "Sampler"
	case ShaderResourceBufferUniform:
		return "BufferUniform"
	case ShaderResourceBufferStorage:
		return "BufferStorage"
	case ShaderResourcePushConstant:
		return "PushConstant"
	case ShaderResourceSpecializationConstant:
		return "SpecializationConstant"
	}
	return fmt.Sprintf("ShaderResourceType(%d)", int(t))
}

// ShaderResource is one entry of a module's reflected interface. Set and
// Binding are only meaningful for resource types that live in descriptor
// sets; Offset and Size are only meaningful for push constant blocks.
type ShaderResource struct {
	Name      string
	Type      ShaderResourceType
	Stages    vk.ShaderStageFlags
	Set       uint32
	Binding   uint32
	ArraySize uint32
	Offset    uint32
	Size      uint32
}

// FindShaderStage maps a shader source file extension to its pipeline stage.
func FindShaderStage(ext string) (vk.ShaderStageFlagBits, error) {
	switch ext {
	case "vert":
		return vk.ShaderStageVertexBit, nil
	case "frag":
		return vk.ShaderStageFragmentBit, nil
	case "comp":
		return vk.ShaderStageComputeBit, nil
	case "geom":
		return vk.ShaderStageGeometryBit, nil
	case "tesc":
		return vk.ShaderStageTessellationControlBit, nil
	case "tese":
		return vk.ShaderStageTessellationEvaluationBit, nil
	case "rgen":
		return vk.ShaderStageRaygenBitNvx, nil
	case "rmiss":
		return vk.ShaderStageMissBitNvx, nil
	case "rchit":
		return vk.ShaderStageClosestHitBitNvx, nil
	}
	return 0, fmt.Errorf("no shader stage for extension %q", ext)
}

// ShaderModule wraps a native shader module together with the resources
// reflected from its SPIR-V.
type ShaderModule struct {
	Device         *Device
	Stage          vk.ShaderStageFlagBits
	EntryPoint     string
	Resources      []ShaderResource
	VKShaderModule vk.ShaderModule

	id uint64
}

// CreateShaderModule creates a shader module from SPIR-V bytes. The reflected
// resources, if any, are stamped with the module's stage.
func (d *Device) CreateShaderModule(data []byte, stage vk.ShaderStageFlagBits, entryPoint string, resources []ShaderResource) (*ShaderModule, error) {
	var module vk.ShaderModule
	err := vk.Error(vk.CreateShaderModule(d.VKDevice, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(data)),
		PCode:    sliceUint32(data),
	}, nil, &module))
	if err != nil {
		return nil, err
	}

	var ret ShaderModule
	ret.Device = d
	ret.Stage = stage
	ret.EntryPoint = entryPoint
	ret.VKShaderModule = module
	ret.Resources = make([]ShaderResource, len(resources))
	copy(ret.Resources, resources)
	for i := range ret.Resources {
		ret.Resources[i].Stages |= vk.ShaderStageFlags(stage)
	}

	h := fnv.New64a()
	h.Write(data)
	ret.id = h.Sum64()

	return &ret, nil
}

// LoadShaderModuleFromFile loads a SPIR-V file, deducing the stage from the
// source extension of its name ("overlay.vert.spv" is a vertex shader).
func (d *Device) LoadShaderModuleFromFile(file string, resources []ShaderResource) (*ShaderModule, error) {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(filepath.Base(file), ".spv")
	stage, err := FindShaderStage(strings.TrimPrefix(filepath.Ext(base), "."))
	if err != nil {
		return nil, err
	}
	return d.CreateShaderModule(data, stage, "main", resources)
}

func (s *ShaderModule) VKPipelineShaderStageCreateInfo() vk.PipelineShaderStageCreateInfo {
	var shaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{}
	shaderStageCreateInfo.SType = vk.StructureTypePipelineShaderStageCreateInfo
	shaderStageCreateInfo.Stage = s.Stage
	shaderStageCreateInfo.Module = s.VKShaderModule
	shaderStageCreateInfo.PName = safeString(s.EntryPoint)
	return shaderStageCreateInfo
}

// ID is a stable identity derived from the module's SPIR-V, used for cache keys.
func (s *ShaderModule) ID() uint64 {
	return s.id
}

func (s *ShaderModule) Destroy() {
	vk.DestroyShaderModule(s.Device.VKDevice, s.VKShaderModule, nil)
}

// ShaderProgram links a set of shader modules and merges their reflected
// resources. Resources with the same name in different stages collapse into
// one entry with the stage flags ORed together; stage inputs and outputs are
// kept per stage since a name may legitimately recur across stages.
type ShaderProgram struct {
	Modules   []*ShaderModule
	resources []ShaderResource
}

func NewShaderProgram(modules ...*ShaderModule) *ShaderProgram {
	p := &ShaderProgram{Modules: modules}

	index := make(map[string]int)
	for _, m := range modules {
		for _, res := range m.Resources {
			key := res.Name
			if res.Type == ShaderResourceInput || res.Type == ShaderResourceOutput {
				key = fmt.Sprintf("%d_%s", res.Stages, res.Name)
			}
			if i, ok := index[key]; ok {
				p.resources[i].Stages |= res.Stages
				continue
			}
			index[key] = len(p.resources)
			p.resources = append(p.resources, res)
		}
	}
	return p
}

// Resources returns the merged resources of the given type, in the order the
// modules declared them.
func (p *ShaderProgram) Resources(t ShaderResourceType) []ShaderResource {
	var out []ShaderResource
	for _, res := range p.resources {
		if res.Type == t {
			out = append(out, res)
		}
	}
	return out
}

// ShaderSets groups the program's descriptor bound resources by set index.
// Inputs, outputs, push constants and specialization constants have no
// binding and are left out.
func (p *ShaderProgram) ShaderSets() map[uint32][]ShaderResource {
	sets := make(map[uint32][]ShaderResource)
	for _, res := range p.resources {
		switch res.Type {
		case ShaderResourceInput, ShaderResourceOutput,
			ShaderResourcePushConstant, ShaderResourceSpecializationConstant:
			continue
		}
		sets[res.Set] = append(sets[res.Set], res)
	}
	return sets
}

func sliceUint32(data []byte) []uint32 {
	const m = 0x7fffffff
	return (*[m / 4]uint32)(unsafe.Pointer((*sliceHeader)(unsafe.Pointer(&data)).Data))[:len(data)/4]
}

type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}
