package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/trirast"
	"github.com/gekko3d/trirast/rt/shaders"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const depthFormat = wgpu.TextureFormatDepth24Plus

var _ trirast.Renderer = (*Renderer)(nil)

// Renderer draws SceneBuffers into a GLFW window through WebGPU.
type Renderer struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Pipeline  *wgpu.RenderPipeline
	BindGroup *wgpu.BindGroup

	VertexBuffer  *wgpu.Buffer
	IndexBuffer   *wgpu.Buffer
	UniformBuffer *wgpu.Buffer

	DepthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView

	Camera  trirast.Camera
	Buffers *trirast.SceneBuffers

	logger trirast.Logger
}

func NewRenderer(window *glfw.Window, cam trirast.Camera, buffers *trirast.SceneBuffers, logger trirast.Logger) *Renderer {
	if logger == nil {
		logger = trirast.NewNopLogger()
	}
	return &Renderer{
		Window:  window,
		Camera:  cam,
		Buffers: buffers,
		logger:  logger,
	}
}

// Init creates the device, uploads the scene and builds the pipeline.
func (r *Renderer) Init() error {
	r.Instance = wgpu.CreateInstance(nil)
	r.Surface = r.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(r.Window))

	adapter, err := r.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: r.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	r.Adapter = adapter

	r.Device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "trirast device"})
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	r.Queue = r.Device.GetQueue()

	width, height := r.Window.GetFramebufferSize()
	caps := r.Surface.GetCapabilities(adapter)
	r.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	if _, ok := surfaceAspect(r.Config.Width, r.Config.Height); ok {
		r.Surface.Configure(adapter, r.Device, r.Config)
		if err := r.createDepthTexture(); err != nil {
			return err
		}
	} else {
		r.logger.Warnf("window opened with a %dx%d framebuffer; drawing starts on resize", width, height)
	}
	if err := r.uploadScene(); err != nil {
		return err
	}
	if err := r.createPipeline(); err != nil {
		return err
	}

	r.logger.Infof("gpu renderer ready: %dx%d, format %v, %d sets", width, height, r.Config.Format, len(r.Buffers.Draws))
	return nil
}

func (r *Renderer) uploadScene() error {
	vertices, err := InterleaveVertices(r.Buffers)
	if err != nil {
		return err
	}
	for _, d := range r.Buffers.Draws {
		if err := r.Buffers.CheckRange(d.FirstIndex, d.IndexCount); err != nil {
			return fmt.Errorf("set %d: %w", d.Set, err)
		}
	}

	// Zero-sized buffers are rejected by most backends, so keep a dummy
	// element around for empty scenes.
	if len(vertices) == 0 {
		vertices = []Vertex{{}}
	}
	indices := r.Buffers.Indices
	if len(indices) == 0 {
		indices = []uint32{0}
	}

	r.VertexBuffer, err = r.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Vertex Buffer " + string(r.Buffers.VertexBufferID),
		Contents: wgpu.ToBytes(vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return fmt.Errorf("vertex buffer: %w", err)
	}
	r.IndexBuffer, err = r.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Index Buffer " + string(r.Buffers.IndexBufferID),
		Contents: wgpu.ToBytes(indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		return fmt.Errorf("index buffer: %w", err)
	}
	r.UniformBuffer, err = r.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera Uniform",
		Size:  cameraUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("uniform buffer: %w", err)
	}
	return nil
}

func (r *Renderer) createPipeline() error {
	shader, err := r.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Flat Triangles",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TrianglesWGSL},
	})
	if err != nil {
		return fmt.Errorf("compile shaders: %w", err)
	}
	defer shader.Release()

	stencilKeep := wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}

	r.Pipeline, err = r.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Flat Triangles Pipeline",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vertexBufferLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    r.Config.Format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      stencilKeep,
			StencilBack:       stencilKeep,
			StencilReadMask:   0xFFFFFFFF,
			StencilWriteMask:  0xFFFFFFFF,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("link pipeline: %w", err)
	}

	layout := r.Pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	r.BindGroup, err = r.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.UniformBuffer, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("bind group: %w", err)
	}
	return nil
}

func (r *Renderer) createDepthTexture() error {
	if r.DepthView != nil {
		r.DepthView.Release()
	}
	if r.DepthTexture != nil {
		r.DepthTexture.Release()
	}

	var err error
	r.DepthTexture, err = r.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth",
		Size:          wgpu.Extent3D{Width: r.Config.Width, Height: r.Config.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("depth texture: %w", err)
	}
	r.DepthView, err = r.DepthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("depth view: %w", err)
	}
	return nil
}

// Resize reconfigures the surface. A zero size, as reported for a minimized
// window, pauses drawing until the next non-zero resize.
func (r *Renderer) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		r.Config.Width, r.Config.Height = 0, 0
		return
	}
	r.Config.Width = uint32(w)
	r.Config.Height = uint32(h)
	r.Surface.Configure(r.Adapter, r.Device, r.Config)
	if err := r.createDepthTexture(); err != nil {
		r.logger.Errorf("resize to %dx%d: %v", w, h, err)
	}
}

// Render clears to the frame background and draws every triangle set. Frames
// are skipped while the surface has no area.
func (r *Renderer) Render(frame trirast.Frame) error {
	aspect, ok := surfaceAspect(r.Config.Width, r.Config.Height)
	if !ok || r.DepthView == nil {
		return nil
	}
	uniform := NewCameraUniform(r.Camera, aspect, frame.AltPosition)
	if err := r.Queue.WriteBuffer(r.UniformBuffer, 0, uniform.Bytes()); err != nil {
		return fmt.Errorf("write uniforms: %w", err)
	}

	nextTexture, err := r.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("get current texture: %w", err)
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create view: %w", err)
	}
	defer view.Release()

	encoder, err := r.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	bg := frame.Background
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: float64(bg[0]), G: float64(bg[1]), B: float64(bg[2]), A: float64(bg[3])},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	defer pass.Release()

	pass.SetPipeline(r.Pipeline)
	pass.SetBindGroup(0, r.BindGroup, nil)
	pass.SetVertexBuffer(0, r.VertexBuffer, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(r.IndexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	for _, d := range r.Buffers.Draws {
		if d.IndexCount == 0 {
			continue
		}
		pass.DrawIndexed(d.IndexCount, 1, d.FirstIndex, 0, 0)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("render pass end: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder finish: %w", err)
	}
	defer cmd.Release()

	r.Queue.Submit(cmd)
	r.Surface.Present()
	return nil
}

func (r *Renderer) Release() {
	for _, b := range []*wgpu.Buffer{r.VertexBuffer, r.IndexBuffer, r.UniformBuffer} {
		if b != nil {
			b.Release()
		}
	}
	if r.BindGroup != nil {
		r.BindGroup.Release()
	}
	if r.Pipeline != nil {
		r.Pipeline.Release()
	}
	if r.DepthView != nil {
		r.DepthView.Release()
	}
	if r.DepthTexture != nil {
		r.DepthTexture.Release()
	}
	if r.Surface != nil {
		r.Surface.Release()
	}
	if r.Device != nil {
		r.Device.Release()
	}
	if r.Adapter != nil {
		r.Adapter.Release()
	}
	if r.Instance != nil {
		r.Instance.Release()
	}
}
