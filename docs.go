/*
Package vkb implements a framework layer atop the Vulkan graphics API for go. It wraps
the raw Vulkan objects (instances, devices, buffers, images, pipelines) with a set of
helper types, and on top of those it derives descriptor set layouts and pipeline layouts
automatically from shader reflection data, so applications describe their shader
interface once and the plumbing objects fall out of it.

The central pieces are:

ShaderModule / ShaderProgram:
	a shader module carries the SPIR-V handle plus the resources reflected out of it
	(uniform buffers, samplers, push constants and so on). A program links modules
	together and merges their resources per stage.
ResourceCache:
	a content addressed cache owned by the Device. Identical requests for descriptor
	set layouts or pipeline layouts return the same object, so layouts are created at
	most once no matter how many pipelines share them.
DescriptorSetLayout / PipelineLayout:
	derived objects. A descriptor set layout is built from the shader resources of one
	set index, a pipeline layout is built from a whole program and borrows its set
	layouts from the cache.
Gui:
	an immediate mode overlay renderer built on dear imgui, which exercises the whole
	derivation path for its own pipeline.

A typical use looks like:

	vert, _ := device.LoadShaderModuleFromFile("overlay.vert.spv")
	frag, _ := device.LoadShaderModuleFromFile("overlay.frag.spv")
	program := NewShaderProgram(vert, frag)
	layout, err := device.ResourceCache().RequestPipelineLayout(program, false)

The cache exclusively owns what it hands out. Callers never destroy a requested layout
themselves; Device.Destroy tears the cache down in dependency order, pipeline layouts
first and the descriptor set layouts they borrow after.

As with the rest of the package the native handles are exposed on every wrapper with a
'VK' prefixed field, so applications can always drop down to raw Vulkan when the helpers
get in the way.
*/
package vkb
