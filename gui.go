package vkb

import (
	"fmt"
	"math"
	"unsafe"

	imgui "github.com/inkyblackness/imgui-go/v2"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"
)

// GuiPoolName is the buffer pool the overlay's per frame vertex and index
// data lives in.
const GuiPoolName = "gui-vdata"

// GuiPipelineName is the name the overlay registers its pipeline config under.
const GuiPipelineName = "gui"

// GuiPushConstants is the push constant block of the overlay vertex shader.
// Scale and translate map imgui's pixel space onto clip space.
type GuiPushConstants struct {
	Scale     lin.Vec2
	Translate lin.Vec2
}

func (p *GuiPushConstants) Bytes() []byte {
	return ToBytes(unsafe.Pointer(p), int(unsafe.Sizeof(*p)))
}

// GuiVertexShaderResources is the reflected interface of the overlay vertex
// shader.
func GuiVertexShaderResources() []ShaderResource {
	return []ShaderResource{
		{Name: "push_const_block", Type: ShaderResourcePushConstant,
			Offset: 0, Size: uint32(unsafe.Sizeof(GuiPushConstants{}))},
	}
}

// GuiFragmentShaderResources is the reflected interface of the overlay
// fragment shader.
func GuiFragmentShaderResources() []ShaderResource {
	return []ShaderResource{
		{Name: "fontTexture", Type: ShaderResourceImageSampler,
			Set: 0, Binding: 0, ArraySize: 1},
	}
}

type GuiOptions struct {
	// VertexShader and FragmentShader are paths to the overlay SPIR-V files.
	VertexShader   string
	FragmentShader string

	// PoolSize is the size of the vertex and index buffer pool, defaults
	// to 8MB.
	PoolSize uint64
}

// Gui renders a Dear ImGui overlay on top of a GraphicsApp. Each Gui owns its
// own imgui context, so independent windows don't share view state. The
// pipeline layout is derived from the overlay shader program through the
// device's resource cache.
type Gui struct {
	app     *GraphicsApp
	window  *glfw.Window
	context *imgui.Context
	io      imgui.IO

	vertShader *ShaderModule
	fragShader *ShaderModule
	program    *ShaderProgram

	pipelineLayout *PipelineLayout
	pushStages     vk.ShaderStageFlags

	descriptorPool *DescriptorPool
	descriptorSet  *DescriptorSet

	fontImage   *StagedBoundImage
	fontView    *ImageView
	fontSampler *Sampler

	vertexBuffer     *BufferResource
	indexBuffer      *BufferResource
	vertexBufferSize uint64
	indexBufferSize  uint64
	ownsPool         bool

	Drawer *Drawer

	time             float64
	mouseJustPressed [3]bool
}

// NewGui creates an overlay for the app. The app must be initialized but
// the pipeline is only built when the app prepares to draw, so create the
// Gui before calling PrepareToDraw.
func NewGui(app *GraphicsApp, window *glfw.Window, options *GuiOptions) (*Gui, error) {
	if options == nil || options.VertexShader == "" || options.FragmentShader == "" {
		return nil, fmt.Errorf("gui requires overlay shader paths")
	}

	poolSize := options.PoolSize
	if poolSize == 0 {
		poolSize = 8 * 1024 * 1024
	}

	g := &Gui{
		app:     app,
		window:  window,
		context: imgui.CreateContext(nil),
		Drawer:  &Drawer{},
	}
	g.io = imgui.CurrentIO()
	g.setKeyMapping()

	var err error

	g.vertShader, err = app.Device.LoadShaderModuleFromFile(options.VertexShader, GuiVertexShaderResources())
	if err != nil {
		return nil, fmt.Errorf("loading overlay vertex shader: %w", err)
	}

	g.fragShader, err = app.Device.LoadShaderModuleFromFile(options.FragmentShader, GuiFragmentShaderResources())
	if err != nil {
		return nil, fmt.Errorf("loading overlay fragment shader: %w", err)
	}

	g.program = NewShaderProgram(g.vertShader, g.fragShader)

	g.pipelineLayout, err = app.Device.ResourceCache().RequestPipelineLayout(g.program, false)
	if err != nil {
		return nil, fmt.Errorf("deriving overlay pipeline layout: %w", err)
	}

	pcSize := uint32(unsafe.Sizeof(GuiPushConstants{}))
	g.pushStages = g.pipelineLayout.GetPushConstantRangeStage(0, pcSize)
	if g.pushStages == 0 {
		return nil, fmt.Errorf("overlay shaders declare no push constant range covering %d bytes", pcSize)
	}

	err = g.createFontResources()
	if err != nil {
		return nil, err
	}

	err = g.createDescriptorSet()
	if err != nil {
		return nil, err
	}

	if app.ResourceManager.BufferPool(GuiPoolName) == nil {
		_, err = app.ResourceManager.AllocateHostVertexAndIndexBufferPool(GuiPoolName, poolSize)
		if err != nil {
			return nil, fmt.Errorf("allocating overlay buffer pool: %w", err)
		}
		g.ownsPool = true
	}

	g.createPipelineConfig()

	return g, nil
}

func (g *Gui) createFontResources() error {
	fontTexture := g.io.Fonts().TextureDataRGBA32()

	var err error
	g.fontImage, err = g.app.Device.StageRGBAImageFromMemory(fontTexture.Pixels, fontTexture.Width, fontTexture.Height)
	if err != nil {
		return fmt.Errorf("staging font atlas: %w", err)
	}

	cb, err := g.app.GraphicsCommandPool.AllocateBuffer()
	if err != nil {
		return err
	}
	defer g.app.GraphicsCommandPool.FreeBuffer(cb)

	colorRange := vk.ImageSubresourceRange{
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		LevelCount: 1,
		LayerCount: 1,
	}

	err = cb.BeginOneTime()
	if err != nil {
		return err
	}
	cb.SetImageLayout(g.fontImage.VKImage,
		vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
		vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		colorRange)
	cb.CopyImage(g.fontImage)
	cb.SetImageLayout(g.fontImage.VKImage,
		vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		colorRange)
	err = cb.End()
	if err != nil {
		return err
	}

	err = g.app.GraphicsQueue.SubmitWaitIdle(cb)
	if err != nil {
		return err
	}

	g.fontView, err = g.fontImage.CreateImageViewWithAspectMask(vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return err
	}

	g.fontSampler, err = g.app.Device.CreateSampler(vk.FilterLinear, vk.FilterLinear, vk.SamplerAddressModeClampToEdge)
	if err != nil {
		return err
	}

	return nil
}

func (g *Gui) createDescriptorSet() error {
	setLayout, err := g.pipelineLayout.GetDescriptorSetLayout(0)
	if err != nil {
		return fmt.Errorf("overlay shaders declare no descriptor set 0: %w", err)
	}

	dpool := g.app.Device.NewDescriptorPool()
	dpool.AddPoolSizesFromLayout(setLayout, 1)
	_, err = g.app.Device.CreateDescriptorPool(dpool, 1)
	if err != nil {
		return err
	}
	g.descriptorPool = dpool

	g.descriptorSet, err = dpool.Allocate(setLayout)
	if err != nil {
		return err
	}
	g.descriptorSet.AddCombinedImageSampler(0, vk.ImageLayoutShaderReadOnlyOptimal,
		g.fontView.VKImageView, g.fontSampler.VKSampler)
	g.descriptorSet.Write()

	return nil
}

// guiVertexBindingDescription describes the imgui vertex as one interleaved
// binding.
func guiVertexBindingDescription() vk.VertexInputBindingDescription {
	vertexSize, _, _, _ := imgui.VertexBufferLayout()
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(vertexSize),
		InputRate: vk.VertexInputRateVertex,
	}
}

func guiVertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	_, posOffset, uvOffset, colOffset := imgui.VertexBufferLayout()
	return []vk.VertexInputAttributeDescription{
		{Binding: 0, Location: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(posOffset)},
		{Binding: 0, Location: 1, Format: vk.FormatR32g32Sfloat, Offset: uint32(uvOffset)},
		{Binding: 0, Location: 2, Format: vk.FormatR8g8b8a8Unorm, Offset: uint32(colOffset)},
	}
}

func (g *Gui) createPipelineConfig() {
	config := g.app.CreateGraphicsPipelineConfig()
	config.AddShaderStage(g.vertShader)
	config.AddShaderStage(g.fragShader)
	config.AddVertexInput(guiVertexBindingDescription(), guiVertexAttributeDescriptions()...)
	config.AddBlendAttachment(vk.PipelineColorBlendAttachmentState{
		ColorWriteMask:      vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
		BlendEnable:         vk.True,
	})
	config.SetDynamicState(vk.DynamicStateViewport, vk.DynamicStateScissor)
	config.SetCullMode(vk.CullModeNone)
	config.DepthTestEnable = false
	config.DepthWriteEnable = false
	config.SetPipelineLayout(g.pipelineLayout)

	g.app.AddGraphicsPipelineConfig(GuiPipelineName, config)
}

// NewFrame feeds input state to imgui and opens a new frame. Call once per
// application frame before any Drawer calls.
func (g *Gui) NewFrame() {
	extent := g.app.GetScreenExtent()
	g.io.SetDisplaySize(imgui.Vec2{X: float32(extent.Width), Y: float32(extent.Height)})

	currentTime := glfw.GetTime()
	if g.time > 0 {
		g.io.SetDeltaTime(float32(currentTime - g.time))
	}
	g.time = currentTime

	if g.window != nil {
		if g.window.GetAttrib(glfw.Focused) != 0 {
			x, y := g.window.GetCursorPos()
			g.io.SetMousePosition(imgui.Vec2{X: float32(x), Y: float32(y)})
		} else {
			g.io.SetMousePosition(imgui.Vec2{X: -math.MaxFloat32, Y: -math.MaxFloat32})
		}

		for i := 0; i < len(g.mouseJustPressed); i++ {
			down := g.mouseJustPressed[i] || (g.window.GetMouseButton(guiButtonIDByIndex[i]) == glfw.Press)
			g.io.SetMouseButtonDown(i, down)
			g.mouseJustPressed[i] = false
		}
	}

	imgui.NewFrame()
}

// Render finalizes the imgui frame and uploads the generated vertex and
// index data. Call after the Drawer calls, before recording Draw.
func (g *Gui) Render() error {
	imgui.Render()
	return g.updateBuffers(imgui.RenderedDrawData())
}

func (g *Gui) updateBuffers(drawData imgui.DrawData) error {
	var vertexData, indexData []byte

	for _, list := range drawData.CommandLists() {
		vtx, vtxSize := list.VertexBuffer()
		idx, idxSize := list.IndexBuffer()
		vertexData = append(vertexData, ToBytes(vtx, vtxSize)...)
		indexData = append(indexData, ToBytes(idx, idxSize)...)
	}

	if len(vertexData) == 0 {
		return nil
	}

	pool := g.app.ResourceManager.BufferPool(GuiPoolName)

	var err error

	if g.vertexBuffer == nil || g.vertexBufferSize < uint64(len(vertexData)) {
		if g.vertexBuffer != nil {
			g.vertexBuffer.Free()
		}
		g.vertexBuffer, err = pool.AllocateBuffer(uint64(len(vertexData)), vk.BufferUsageVertexBufferBit)
		if err != nil {
			return fmt.Errorf("allocating overlay vertex buffer: %w", err)
		}
		g.vertexBufferSize = uint64(len(vertexData))
	}

	if g.indexBuffer == nil || g.indexBufferSize < uint64(len(indexData)) {
		if g.indexBuffer != nil {
			g.indexBuffer.Free()
		}
		g.indexBuffer, err = pool.AllocateBuffer(uint64(len(indexData)), vk.BufferUsageIndexBufferBit)
		if err != nil {
			return fmt.Errorf("allocating overlay index buffer: %w", err)
		}
		g.indexBufferSize = uint64(len(indexData))
	}

	err = g.vertexBuffer.Write(vertexData)
	if err != nil {
		return err
	}
	return g.indexBuffer.Write(indexData)
}

// Draw records the overlay draw commands into an already begun render pass.
func (g *Gui) Draw(cmd *CommandBuffer) {
	drawData := imgui.RenderedDrawData()
	if len(drawData.CommandLists()) == 0 || g.vertexBuffer == nil {
		return
	}

	drawData.ScaleClipRects(imgui.Vec2{X: 1.0, Y: 1.0})

	extent := g.app.GetScreenExtent()

	cmd.CmdBindGraphicsPipeline(g.app.GraphicsPipelines[GuiPipelineName])
	cmd.CmdBindDescriptorSets(vk.PipelineBindPointGraphics, g.pipelineLayout, 0, g.descriptorSet)

	pc := GuiPushConstants{
		Scale:     lin.Vec2{2.0 / float32(extent.Width), 2.0 / float32(extent.Height)},
		Translate: lin.Vec2{-1.0, -1.0},
	}
	cmd.CmdPushConstants(g.pipelineLayout, g.pushStages, 0, pc.Bytes())

	cmd.CmdSetViewport(0, 0, float32(extent.Width), float32(extent.Height))

	indexType := vk.IndexTypeUint16
	if imgui.IndexBufferLayout() == 4 {
		indexType = vk.IndexTypeUint32
	}

	cmd.CmdBindVertexBuffer(0, &g.vertexBuffer.Buffer, 0)
	cmd.CmdBindIndexBuffer(&g.indexBuffer.Buffer, 0, indexType)

	vertexSize, _, _, _ := imgui.VertexBufferLayout()

	var indexOffset uint32
	var vertexOffset int32

	for _, list := range drawData.CommandLists() {
		for _, c := range list.Commands() {
			if c.HasUserCallback() {
				c.CallUserCallback(list)
				indexOffset += uint32(c.ElementCount())
				continue
			}

			clipRect := c.ClipRect()

			var scissor vk.Rect2D
			if clipRect.X > 0 {
				scissor.Offset.X = int32(clipRect.X)
			}
			if clipRect.Y > 0 {
				scissor.Offset.Y = int32(clipRect.Y)
			}
			scissor.Extent.Width = uint32(clipRect.Z - clipRect.X)
			scissor.Extent.Height = uint32(clipRect.W - clipRect.Y)

			cmd.CmdSetScissor(scissor)
			cmd.CmdDrawIndexed(uint32(c.ElementCount()), 1, indexOffset, vertexOffset, 0)

			indexOffset += uint32(c.ElementCount())
		}

		_, vtxSize := list.VertexBuffer()
		vertexOffset += int32(vtxSize / vertexSize)
	}
}

// MouseButtonChange is a glfw mouse button callback feeding the overlay.
// Returns true when imgui wants the event.
func (g *Gui) MouseButtonChange(button glfw.MouseButton, action glfw.Action) bool {
	if i, known := guiButtonIndexByID[button]; known && action == glfw.Press {
		g.mouseJustPressed[i] = true
	}
	return g.io.WantCaptureMouse()
}

// MouseScrollChange is a glfw scroll callback feeding the overlay.
func (g *Gui) MouseScrollChange(x, y float64) bool {
	g.io.AddMouseWheelDelta(float32(x), float32(y))
	return g.io.WantCaptureMouse()
}

// KeyChange is a glfw key callback feeding the overlay.
func (g *Gui) KeyChange(key glfw.Key, action glfw.Action) bool {
	if action == glfw.Press {
		g.io.KeyPress(int(key))
	}
	if action == glfw.Release {
		g.io.KeyRelease(int(key))
	}

	g.io.KeyCtrl(int(glfw.KeyLeftControl), int(glfw.KeyRightControl))
	g.io.KeyShift(int(glfw.KeyLeftShift), int(glfw.KeyRightShift))
	g.io.KeyAlt(int(glfw.KeyLeftAlt), int(glfw.KeyRightAlt))
	g.io.KeySuper(int(glfw.KeyLeftSuper), int(glfw.KeyRightSuper))

	return g.io.WantCaptureKeyboard()
}

// CharChange is a glfw character callback feeding the overlay.
func (g *Gui) CharChange(char rune) bool {
	g.io.AddInputCharacters(string(char))
	return g.io.WantCaptureKeyboard()
}

// Destroy releases everything the overlay owns. The pipeline layout and its
// descriptor set layouts belong to the device's resource cache and are left
// alone.
func (g *Gui) Destroy() {
	if g.vertexBuffer != nil {
		g.vertexBuffer.Free()
		g.vertexBuffer = nil
	}
	if g.indexBuffer != nil {
		g.indexBuffer.Free()
		g.indexBuffer = nil
	}

	// The pool is shared between overlays on the same app; only the overlay
	// that created it tears it down.
	if g.ownsPool {
		if pool := g.app.ResourceManager.BufferPool(GuiPoolName); pool != nil {
			pool.Destroy()
		}
	}

	if g.descriptorPool != nil {
		g.descriptorPool.Destroy()
	}

	if g.fontSampler != nil {
		g.fontSampler.Destroy()
	}
	if g.fontView != nil {
		g.fontView.Destroy()
	}
	if g.fontImage != nil {
		g.fontImage.Destroy()
	}

	if g.vertShader != nil {
		g.vertShader.Destroy()
	}
	if g.fragShader != nil {
		g.fragShader.Destroy()
	}

	if g.context != nil {
		g.context.Destroy()
	}
}

func (g *Gui) setKeyMapping() {
	g.io.KeyMap(imgui.KeyTab, int(glfw.KeyTab))
	g.io.KeyMap(imgui.KeyLeftArrow, int(glfw.KeyLeft))
	g.io.KeyMap(imgui.KeyRightArrow, int(glfw.KeyRight))
	g.io.KeyMap(imgui.KeyUpArrow, int(glfw.KeyUp))
	g.io.KeyMap(imgui.KeyDownArrow, int(glfw.KeyDown))
	g.io.KeyMap(imgui.KeyPageUp, int(glfw.KeyPageUp))
	g.io.KeyMap(imgui.KeyPageDown, int(glfw.KeyPageDown))
	g.io.KeyMap(imgui.KeyHome, int(glfw.KeyHome))
	g.io.KeyMap(imgui.KeyEnd, int(glfw.KeyEnd))
	g.io.KeyMap(imgui.KeyInsert, int(glfw.KeyInsert))
	g.io.KeyMap(imgui.KeyDelete, int(glfw.KeyDelete))
	g.io.KeyMap(imgui.KeyBackspace, int(glfw.KeyBackspace))
	g.io.KeyMap(imgui.KeySpace, int(glfw.KeySpace))
	g.io.KeyMap(imgui.KeyEnter, int(glfw.KeyEnter))
	g.io.KeyMap(imgui.KeyEscape, int(glfw.KeyEscape))
	g.io.KeyMap(imgui.KeyA, int(glfw.KeyA))
	g.io.KeyMap(imgui.KeyC, int(glfw.KeyC))
	g.io.KeyMap(imgui.KeyV, int(glfw.KeyV))
	g.io.KeyMap(imgui.KeyX, int(glfw.KeyX))
	g.io.KeyMap(imgui.KeyY, int(glfw.KeyY))
	g.io.KeyMap(imgui.KeyZ, int(glfw.KeyZ))
}

var guiButtonIndexByID = map[glfw.MouseButton]int{
	glfw.MouseButton1: 0,
	glfw.MouseButton2: 1,
	glfw.MouseButton3: 2,
}

var guiButtonIDByIndex = map[int]glfw.MouseButton{
	0: glfw.MouseButton1,
	1: glfw.MouseButton2,
	2: glfw.MouseButton3,
}
