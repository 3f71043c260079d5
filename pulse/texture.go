package pulse

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
	"github.com/oliverbestmann/tessel/glm"
	"github.com/oliverbestmann/tessel/pulse/driver"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureFormat is the format of all textures created from images.
const TextureFormat = wgpu.TextureFormatRGBA8UnormSrgb

var ErrEmptyImage = errors.New("image has no pixels")

// Texture is an image on the gpu with a default view and a sampler. A texture
// can be shared by multiple renderers.
type Texture struct {
	ID    uuid.UUID
	Label string

	texture driver.Texture
	view    driver.TextureView
	sampler driver.Sampler

	width, height uint32
}

type NewTextureOptions struct {
	Label  string
	Width  uint32
	Height uint32
}

// NewTexture creates an empty texture of the given size.
func NewTexture(base *Base, opts NewTextureOptions) (*Texture, error) {
	if opts.Width == 0 || opts.Height == 0 {
		return nil, ErrEmptyImage
	}

	texture, err := base.Device.CreateTexture(wgpu.TextureDescriptor{
		Label:         opts.Label,
		Format:        TextureFormat,
		SampleCount:   1,
		MipLevelCount: 1,
		Dimension:     wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              opts.Width,
			Height:             opts.Height,
			DepthOrArrayLayers: 1,
		},
		Usage: wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})

	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}

	textureGuard := NewReleaseGuard(texture)
	defer textureGuard.Release()

	// now create a default texture view
	view, err := texture.CreateView()
	if err != nil {
		return nil, fmt.Errorf("create texture view: %w", err)
	}

	viewGuard := NewReleaseGuard(view)
	defer viewGuard.Release()

	sampler, err := CachedSampler(base.Device, DefaultSamplerDescriptor)
	if err != nil {
		return nil, err
	}

	textureGuard.Keep()
	viewGuard.Keep()

	return &Texture{
		ID:      uuid.New(),
		Label:   opts.Label,
		texture: texture,
		view:    view,
		sampler: sampler,
		width:   opts.Width,
		height:  opts.Height,
	}, nil
}

// TextureFromBytes decodes an encoded image and uploads it into a new texture.
// Supported formats are png, jpeg, gif, bmp, tiff and webp.
func TextureFromBytes(base *Base, label string, buf []byte) (*Texture, error) {
	src, format, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", label, err)
	}

	tex, err := TextureFromImage(base, label, src)
	if err != nil {
		return nil, fmt.Errorf("texture from %s image: %w", format, err)
	}

	return tex, nil
}

// TextureFromImage uploads the image into a new texture.
func TextureFromImage(base *Base, label string, src image.Image) (*Texture, error) {
	iw, ih := src.Bounds().Dx(), src.Bounds().Dy()
	if iw <= 0 || ih <= 0 {
		return nil, ErrEmptyImage
	}

	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Stride != 4*iw || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, iw, ih))
		draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)
	}

	t, err := NewTexture(base, NewTextureOptions{
		Label:  label,
		Width:  uint32(iw),
		Height: uint32(ih),
	})

	if err != nil {
		return nil, err
	}

	if err := t.WritePixels(base.Queue, rgba.Pix); err != nil {
		t.Release()
		return nil, fmt.Errorf("upload texture: %w", err)
	}

	return t, nil
}

// WritePixels replaces the content of the texture. Pixels
// must hold tightly packed rgba values.
func (t *Texture) WritePixels(queue driver.Queue, pixels []byte) error {
	bounds := t.Bounds()

	expected := int(bounds.Width()) * int(bounds.Height()) * 4
	if len(pixels) != expected {
		return fmt.Errorf("expected %d bytes of pixel data, got %d", expected, len(pixels))
	}

	layout := wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  bounds.Width() * 4,
		RowsPerImage: bounds.Height(),
	}

	size := wgpu.Extent3D{
		Width:              bounds.Width(),
		Height:             bounds.Height(),
		DepthOrArrayLayers: 1,
	}

	return queue.WriteTexture(t.texture, pixels, layout, size)
}

func (t *Texture) Width() uint32 {
	return t.width
}

func (t *Texture) Height() uint32 {
	return t.height
}

// Bounds is the pixel rectangle of the texture, starting at the origin.
func (t *Texture) Bounds() Rectangle2u {
	return RectangleFromSize(glm.Vec2u{}, glm.Vec2u{t.width, t.height})
}

func (t *Texture) View() driver.TextureView {
	return t.view
}

// Sampler returns the shared sampler of this texture. Do not release it.
func (t *Texture) Sampler() driver.Sampler {
	return t.sampler
}

// Release releases the texture and its view. The texture must not be used
// by any renderer afterwards.
func (t *Texture) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}

	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}
