package libscn

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type AssetIndex struct {
	Textures []string `json:"textures"`
}

// DirPack resolves asset names to files listed by index files. A name is
// the file name up to its first dot, so "background.jpg.lz4" is "background".
type DirPack struct {
	TextureIndex map[string]string
}

func (pack *DirPack) AddIndexFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("could not add index file %q: %w", name, err)
	}
	defer file.Close()

	return pack.AddIndex(file, path.Dir(filepath.ToSlash(name)))
}

func (pack *DirPack) AddIndex(r io.Reader, root string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	index := AssetIndex{}
	if err = json.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("could not unmarshal asset index: %w", err)
	}

	if pack.TextureIndex == nil {
		pack.TextureIndex = map[string]string{}
	}

	return addAllMatches(path.Clean(root), index.Textures, pack.TextureIndex)
}

func addAllMatches(root string, patterns []string, index map[string]string) error {
	for _, pattern := range patterns {
		matches, err := filepath.Glob(path.Join(root, pattern))
		if err != nil {
			return err
		}
		for _, match := range matches {
			match = filepath.ToSlash(match)
			name, _, _ := strings.Cut(path.Base(match), ".")
			index[name] = match
		}
	}
	return nil
}

func (pack *DirPack) LoadTexture(name string) (*image.RGBA, error) {
	filename, ok := pack.TextureIndex[name]
	if !ok {
		return nil, fmt.Errorf("texture %q is not registered in this pack", name)
	}
	return LoadTextureImage(filename)
}

// LoadTextureImage decodes png, jpeg, webp or bmp files, optionally lz4
// compressed (".lz4" suffix).
func LoadTextureImage(filename string) (*image.RGBA, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open texture image file %q: %w", filename, err)
	}
	defer file.Close()

	var src io.Reader = file
	if strings.HasSuffix(filename, ".lz4") {
		src = lz4.NewReader(file)
	}

	img, err := DecodeTextureImage(src)
	if err != nil {
		return nil, fmt.Errorf("could not decode texture image file %q: %w", filename, err)
	}
	return img, nil
}

func DecodeTextureImage(r io.Reader) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	return rgba, nil
}
