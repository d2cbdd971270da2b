package shading

import (
	"math"

	"github.com/Carmen-Shannon/oxy-lit/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Sampler returns a filtered texel for a UV coordinate.
type Sampler interface {
	// Sample reads the texture at uv. Coordinates outside [0,1] follow the addressing mode.
	//
	// Parameters:
	//   - uv: texture coordinates
	//
	// Returns:
	//   - [4]float32: RGBA in [0,1], linear
	Sample(uv [2]float32) [4]float32
}

// Constant is a Sampler that returns the same texel everywhere.
type Constant [4]float32

// Sample implements Sampler.
func (c Constant) Sample([2]float32) [4]float32 {
	return c
}

// srgbToLinear maps each 8-bit sRGB value to linear light.
var srgbToLinear = func() (lut [256]float32) {
	for i := range lut {
		c := float64(i) / 255
		if c <= 0.04045 {
			lut[i] = float32(c / 12.92)
		} else {
			lut[i] = float32(math.Pow((c+0.055)/1.055, 2.4))
		}
	}
	return lut
}()

// Texture samples RGBA8 pixels the way a GPU sampler would.
// Color textures are decoded from sRGB on read; Linear textures are read as stored.
type Texture struct {
	width, height int
	pix           []byte
	srgb          bool
	linearFilter  bool
	addressU      wgpu.AddressMode
	addressV      wgpu.AddressMode
}

var _ Sampler = &Texture{}

// NewTexture wraps staged pixels with a sampler configuration.
// Only the U/V address modes and the mag filter are honored; there are no mipmaps.
//
// Parameters:
//   - data: the staged RGBA pixels
//   - s: the sampler configuration
//
// Returns:
//   - *Texture: the sampler
//   - error: the validation error of data
func NewTexture(data common.TextureStagingData, s common.SamplerStagingData) (*Texture, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &Texture{
		width:        int(data.Width),
		height:       int(data.Height),
		pix:          data.Pixels,
		srgb:         !data.Linear,
		linearFilter: s.MagFilter == wgpu.FilterModeLinear,
		addressU:     s.AddressModeU,
		addressV:     s.AddressModeV,
	}, nil
}

// Sample implements Sampler.
func (t *Texture) Sample(uv [2]float32) [4]float32 {
	if !t.linearFilter {
		x := address(int(math.Floor(float64(uv[0])*float64(t.width))), t.width, t.addressU)
		y := address(int(math.Floor(float64(uv[1])*float64(t.height))), t.height, t.addressV)
		return t.texel(x, y)
	}

	fx := float64(uv[0])*float64(t.width) - 0.5
	fy := float64(uv[1])*float64(t.height) - 0.5
	x0f, y0f := math.Floor(fx), math.Floor(fy)
	ax, ay := float32(fx-x0f), float32(fy-y0f)
	x0, y0 := int(x0f), int(y0f)

	xa, xb := address(x0, t.width, t.addressU), address(x0+1, t.width, t.addressU)
	ya, yb := address(y0, t.height, t.addressV), address(y0+1, t.height, t.addressV)
	c00, c10 := t.texel(xa, ya), t.texel(xb, ya)
	c01, c11 := t.texel(xa, yb), t.texel(xb, yb)

	var out [4]float32
	for i := range 4 {
		top := c00[i] + (c10[i]-c00[i])*ax
		bottom := c01[i] + (c11[i]-c01[i])*ax
		out[i] = top + (bottom-top)*ay
	}
	return out
}

func (t *Texture) texel(x, y int) [4]float32 {
	p := t.pix[(y*t.width+x)*4:]
	var out [4]float32
	for i := range 3 {
		if t.srgb {
			out[i] = srgbToLinear[p[i]]
		} else {
			out[i] = float32(p[i]) / 255
		}
	}
	out[3] = float32(p[3]) / 255
	return out
}

// address resolves an integer texel coordinate into [0,n).
func address(i, n int, mode wgpu.AddressMode) int {
	switch mode {
	case wgpu.AddressModeClampToEdge:
		return min(max(i, 0), n-1)
	case wgpu.AddressModeMirrorRepeat:
		period := 2 * n
		i = ((i % period) + period) % period
		if i >= n {
			i = period - 1 - i
		}
		return i
	default:
		return ((i % n) + n) % n
	}
}
