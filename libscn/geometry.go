package libscn

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Uv       mgl32.Vec2
}

// Geometry is an indexed triangle list with counter-clockwise front faces.
type Geometry struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// Plane is centered on the origin in the xy plane and faces +z.
func Plane(width, height float32) *Geometry {
	w, h := width/2, height/2
	n := mgl32.Vec3{0, 0, 1}
	return &Geometry{
		Name: "plane",
		Vertices: []Vertex{
			{Position: mgl32.Vec3{-w, -h, 0}, Normal: n, Uv: mgl32.Vec2{0, 0}},
			{Position: mgl32.Vec3{w, -h, 0}, Normal: n, Uv: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec3{-w, h, 0}, Normal: n, Uv: mgl32.Vec2{0, 1}},
			{Position: mgl32.Vec3{w, h, 0}, Normal: n, Uv: mgl32.Vec2{1, 1}},
		},
		Indices: []uint32{0, 1, 2, 2, 1, 3},
	}
}

// Sphere is a uv sphere, the seam is duplicated so uvs wrap correctly.
func Sphere(radius float32, widthSegments, heightSegments int) *Geometry {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}
	geom := &Geometry{Name: "sphere"}

	for y := 0; y <= heightSegments; y++ {
		v := float32(y) / float32(heightSegments)
		theta := v * math32.Pi
		for x := 0; x <= widthSegments; x++ {
			u := float32(x) / float32(widthSegments)
			phi := u * 2 * math32.Pi
			n := mgl32.Vec3{
				-math32.Cos(phi) * math32.Sin(theta),
				math32.Cos(theta),
				math32.Sin(phi) * math32.Sin(theta),
			}
			geom.Vertices = append(geom.Vertices, Vertex{
				Position: n.Mul(radius),
				Normal:   n,
				Uv:       mgl32.Vec2{u, 1 - v},
			})
		}
	}

	stride := uint32(widthSegments + 1)
	for y := 0; y < heightSegments; y++ {
		for x := 0; x < widthSegments; x++ {
			a := uint32(y)*stride + uint32(x) + 1
			b := uint32(y)*stride + uint32(x)
			c := uint32(y+1)*stride + uint32(x)
			d := uint32(y+1)*stride + uint32(x) + 1
			// the pole rows collapse to a point, skip their degenerate halves
			if y != 0 {
				geom.Indices = append(geom.Indices, a, b, d)
			}
			if y != heightSegments-1 {
				geom.Indices = append(geom.Indices, b, c, d)
			}
		}
	}
	return geom
}

var icosahedronVertices = func() []mgl32.Vec3 {
	t := (1 + math32.Sqrt(5)) / 2
	return []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
}()

var icosahedronFaces = [][3]int{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

// Icosahedron is flat shaded: every face has its own three vertices and the
// face normal. Each detail level splits every triangle edge into detail+1
// segments and projects the new points onto the sphere.
func Icosahedron(radius float32, detail int) *Geometry {
	geom := &Geometry{Name: "icosahedron"}
	for _, f := range icosahedronFaces {
		a := icosahedronVertices[f[0]].Normalize()
		b := icosahedronVertices[f[1]].Normalize()
		c := icosahedronVertices[f[2]].Normalize()
		subdivide(geom, a, b, c, detail, radius)
	}
	return geom
}

func subdivide(geom *Geometry, a, b, c mgl32.Vec3, detail int, radius float32) {
	cols := detail + 1
	grid := make([][]mgl32.Vec3, cols+1)
	for i := 0; i <= cols; i++ {
		aj := a.Mul(1 - float32(i)/float32(cols)).Add(c.Mul(float32(i) / float32(cols)))
		bj := b.Mul(1 - float32(i)/float32(cols)).Add(c.Mul(float32(i) / float32(cols)))
		rows := cols - i
		grid[i] = make([]mgl32.Vec3, rows+1)
		for j := 0; j <= rows; j++ {
			if j == 0 && i == cols {
				grid[i][j] = aj
			} else {
				grid[i][j] = aj.Mul(1 - float32(j)/float32(rows)).Add(bj.Mul(float32(j) / float32(rows)))
			}
		}
	}

	for i := 0; i < cols; i++ {
		for j := 0; j < 2*(cols-i)-1; j++ {
			k := j / 2
			if j%2 == 0 {
				geom.addFlatFace(grid[i][k+1], grid[i+1][k], grid[i][k], radius)
			} else {
				geom.addFlatFace(grid[i][k+1], grid[i+1][k+1], grid[i+1][k], radius)
			}
		}
	}
}

func (geom *Geometry) addFlatFace(a, b, c mgl32.Vec3, radius float32) {
	a = a.Normalize().Mul(radius)
	b = b.Normalize().Mul(radius)
	c = c.Normalize().Mul(radius)
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	// keep faces wound counter-clockwise when seen from outside
	if n.Dot(a.Add(b).Add(c)) < 0 {
		b, c = c, b
		n = n.Mul(-1)
	}
	base := uint32(len(geom.Vertices))
	for _, p := range []mgl32.Vec3{a, b, c} {
		geom.Vertices = append(geom.Vertices, Vertex{Position: p, Normal: n, Uv: sphericalUv(p)})
	}
	geom.Indices = append(geom.Indices, base, base+1, base+2)
}

func sphericalUv(p mgl32.Vec3) mgl32.Vec2 {
	n := p.Normalize()
	u := math32.Atan2(n.Z(), -n.X())/(2*math32.Pi) + 0.5
	v := math32.Asin(mgl32.Clamp(n.Y(), -1, 1))/math32.Pi + 0.5
	return mgl32.Vec2{u, v}
}
