package sketch

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// The functions below mirror the fragment shaders on the CPU.

// Sampler returns the color of a texture at uv.
type Sampler func(uv mgl32.Vec2) mgl32.Vec3

func Fresnel(view, normal mgl32.Vec3, bias, power float32) float32 {
	return math32.Pow(bias+view.Dot(normal), power)
}

// Refract follows GLSL refract, eta is the ratio of indices of refraction.
func Refract(incident, normal mgl32.Vec3, eta float32) mgl32.Vec3 {
	d := normal.Dot(incident)
	k := 1 - eta*eta*(1-d*d)
	if k < 0 {
		return mgl32.Vec3{}
	}
	return incident.Mul(eta).Sub(normal.Mul(eta*d + math32.Sqrt(k)))
}

func MixWhite(color mgl32.Vec3, f float32) mgl32.Vec3 {
	return color.Mul(1 - f).Add(mgl32.Vec3{f, f, f})
}

func Smoothstep(edge0, edge1, x float32) float32 {
	t := math32.Max(0, math32.Min(1, (x-edge0)/(edge1-edge0)))
	return t * t * (3 - 2*t)
}

func fract(v float32) float32 {
	return v - math32.Floor(v)
}

// ShadeRefraction is the single pass refraction of a fragment at fragCoord.
func ShadeRefraction(env Sampler, fragCoord, resolution mgl32.Vec2, view, worldNormal mgl32.Vec3) mgl32.Vec3 {
	normal := worldNormal.Mul(1 - NormalBlend)
	uv := mgl32.Vec2{fragCoord[0] / resolution[0], fragCoord[1] / resolution[1]}
	uv = mgl32.Vec2{
		fract(uv[0]*RefractionTiles + 0.5),
		fract(uv[1]*RefractionTiles - 0.5),
	}
	r := Refract(view, normal, IORRatio)
	uv = uv.Add(mgl32.Vec2{r[0], r[1]})

	f := Fresnel(view, normal, RefractionFresnelBias, RefractionFresnelPower)
	return MixWhite(env(uv), f)
}

// ShadeDispersion is the two pass refraction of a fragment at fragCoord,
// backNormal is the value of the back face target under the fragment.
func ShadeDispersion(env Sampler, fragCoord, resolution mgl32.Vec2, view, worldNormal, backNormal mgl32.Vec3) mgl32.Vec3 {
	normal := worldNormal.Mul(1 - NormalBlend).Sub(backNormal.Mul(BackfaceWeight))
	uv := mgl32.Vec2{fragCoord[0] / resolution[0], fragCoord[1] / resolution[1]}

	f := Fresnel(view, normal, DispersionFresnelBias, DispersionFresnelPower)
	r := Refract(view, normal, IORRatio)
	uv = uv.Add(mgl32.Vec2{r[0], r[1]})

	offset := mgl32.Vec2{ChannelOffset * f, ChannelOffset * f}
	color := mgl32.Vec3{
		env(uv.Add(offset))[0],
		env(uv)[1],
		env(uv.Sub(offset))[2],
	}
	return MixWhite(color, f)
}

// ShadeText maps the red channel of the text texture to a grey level.
func ShadeText(r float32) float32 {
	return Smoothstep(TextEdgeLow, TextEdgeHigh, r) * TextBrightness
}
