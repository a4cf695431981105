package libscn

// Layers is a bit mask of the 32 render layers. Objects are drawn by a pass
// when their mask shares at least one bit with the pass mask.
type Layers uint32

const AllLayers Layers = 0xffff_ffff

// Layer returns a mask containing only layer n.
func Layer(n int) Layers {
	return Layers(1) << uint(n)
}

func (l *Layers) Enable(n int) {
	*l |= Layer(n)
}

func (l *Layers) Disable(n int) {
	*l &^= Layer(n)
}

func (l Layers) Test(other Layers) bool {
	return l&other != 0
}

func (l Layers) IsEnabled(n int) bool {
	return l&Layer(n) != 0
}
