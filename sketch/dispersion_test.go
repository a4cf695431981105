package sketch_test

import (
	"testing"

	"refraction-gl/libscn"
	"refraction-gl/render"
	"refraction-gl/sketch"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDispersionMount(t *testing.T) {
	ctx, dev := newContext(1280, 720, 2)
	s := sketch.NewDispersion()
	if err := s.Mount(ctx); err != nil {
		t.Fatal(err)
	}

	if len(dev.targets) != 2 {
		t.Fatalf("got %d targets, want 2", len(dev.targets))
	}
	for _, target := range dev.targets {
		if target.w != 2560 || target.h != 1440 {
			t.Errorf("target %s is %dx%d, want 2560x1440", target.name, target.w, target.h)
		}
	}
	if dev.targets[1].format != render.FormatRGBA16F {
		t.Errorf("back face target format %v, want %v", dev.targets[1].format, render.FormatRGBA16F)
	}
	if s.Sphere.Position != (mgl32.Vec3{0, 0, -5}) {
		t.Errorf("sphere starts at %v", s.Sphere.Position)
	}
	if !s.Sphere.Layers.IsEnabled(1) || s.Sphere.Layers.IsEnabled(0) {
		t.Errorf("sphere should only be on layer 1")
	}
	if !s.Plane.Layers.IsEnabled(0) || s.Plane.Layers.IsEnabled(1) {
		t.Errorf("background should only be on layer 0")
	}
}

func TestDispersionMissingBackground(t *testing.T) {
	ctx, _ := newContext(800, 600, 1)
	s := sketch.NewDispersion()
	s.Background = "missing"
	if err := s.Mount(ctx); err == nil {
		t.Errorf("expected mount to fail without the background texture")
	}
}

func TestDispersionPasses(t *testing.T) {
	ctx, dev := newContext(800, 600, 1)
	s := sketch.NewDispersion()
	if err := s.Mount(ctx); err != nil {
		t.Fatal(err)
	}
	checkClears(t, dev.clears, []string{"environment 3", "backface normals 3"})
	dev.clears = nil
	s.Frame(ctx, sketch.Frame{})

	want := []drawCall{
		{target: "environment", layers: libscn.Layer(0), materials: map[string]string{"background": "background"}},
		{target: "backface normals", layers: libscn.Layer(1), materials: map[string]string{"sphere": "backface normals"}},
		{target: "screen", layers: libscn.Layer(0), materials: map[string]string{"background": "background"}},
		{target: "screen", layers: libscn.Layer(1), materials: map[string]string{"sphere": "dispersion"}},
	}
	if len(dev.draws) != len(want) {
		t.Fatalf("got %d draws, want %d", len(dev.draws), len(want))
	}
	for i, w := range want {
		got := dev.draws[i]
		if got.target != w.target || got.layers != w.layers {
			t.Errorf("pass %d: drew layers %b into %s, want layers %b into %s", i, got.layers, got.target, w.layers, w.target)
		}
		if len(got.materials) != len(w.materials) {
			t.Errorf("pass %d: drew %v, want %v", i, got.materials, w.materials)
			continue
		}
		for mesh, mat := range w.materials {
			if got.materials[mesh] != mat {
				t.Errorf("pass %d: %s drawn with %q, want %q", i, mesh, got.materials[mesh], mat)
			}
		}
	}

	checkClears(t, dev.clears, []string{"environment 3", "backface normals 3", "screen 2"})

	if s.Sphere.Material.Name != "dispersion" {
		t.Errorf("sphere material changed to %q", s.Sphere.Material.Name)
	}
}

func TestDispersionFollowsPointer(t *testing.T) {
	// half extents of 10 by 6 world units
	ctx, _ := newContext(2000, 1200, 1)
	s := sketch.NewDispersion()
	if err := s.Mount(ctx); err != nil {
		t.Fatal(err)
	}

	pointer := mgl32.Vec2{0.5, 0.5}
	target := sketch.PointerTarget(ctx.Camera, pointer)
	if !target.ApproxEqualThreshold(mgl32.Vec3{5, 3, -5}, epsilon) {
		t.Fatalf("pointer target %v, want (5, 3, -5)", target)
	}

	s.Frame(ctx, sketch.Frame{Pointer: pointer})
	if !s.Sphere.Position.ApproxEqualThreshold(mgl32.Vec3{0.25, 0.15, -5}, epsilon) {
		t.Errorf("after one frame: %v, want (0.25, 0.15, -5)", s.Sphere.Position)
	}

	prev := target.Sub(s.Sphere.Position).Len()
	for i := 0; i < 50; i++ {
		s.Frame(ctx, sketch.Frame{Pointer: pointer})
		dist := target.Sub(s.Sphere.Position).Len()
		if dist >= prev {
			t.Fatalf("frame %d: distance grew from %v to %v", i, prev, dist)
		}
		if s.Sphere.Position[0] > target[0] || s.Sphere.Position[1] > target[1] {
			t.Fatalf("frame %d: overshoot to %v", i, s.Sphere.Position)
		}
		prev = dist
	}
}

func TestDispersionAtTargetStaysPut(t *testing.T) {
	ctx, _ := newContext(800, 600, 1)
	s := sketch.NewDispersion()
	if err := s.Mount(ctx); err != nil {
		t.Fatal(err)
	}
	s.Frame(ctx, sketch.Frame{})
	if s.Sphere.Position != (mgl32.Vec3{0, 0, -5}) {
		t.Errorf("sphere moved to %v", s.Sphere.Position)
	}
}

func TestDispersionResizeAndRelease(t *testing.T) {
	ctx, dev := newContext(800, 600, 1)
	s := sketch.NewDispersion()
	if err := s.Mount(ctx); err != nil {
		t.Fatal(err)
	}

	resize(t, ctx, s, 800, 600, 2)
	live := dev.live()
	if len(live) != 2 {
		t.Fatalf("got %d live targets, want 2", len(live))
	}
	for _, target := range live {
		if target.w != 1600 || target.h != 1200 {
			t.Errorf("target %s is %dx%d after resize", target.name, target.w, target.h)
		}
	}
	if res := s.Sphere.Material.Uniforms["u_resolution"]; res != (mgl32.Vec2{1600, 1200}) {
		t.Errorf("resolution uniform is %v", res)
	}

	s.Release(ctx)
	for _, target := range dev.targets {
		if target.deleted != 1 {
			t.Errorf("target %s %dx%d deleted %d times", target.name, target.w, target.h, target.deleted)
		}
	}
	if dev.textures[0].deleted != 1 {
		t.Errorf("background texture deleted %d times", dev.textures[0].deleted)
	}
	if len(ctx.Scene.Meshes) != 0 {
		t.Errorf("scene still holds %d meshes", len(ctx.Scene.Meshes))
	}
}
