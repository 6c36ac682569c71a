package nx8

import (
	"crypto/sha1"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Image is an NX-8 program image: raw machine code loaded at address 0.
type Image struct {
	Name string
	Code []byte
}

// Open loads a program image from file.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img := &Image{Name: filepath.Base(path)}
	if _, err := img.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// ReadFrom implements io.ReaderFrom.
func (img *Image) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(io.LimitReader(r, MaxProgram+1))
	if err != nil {
		return 0, err
	}
	switch {
	case len(buf) == 0:
		return 0, fmt.Errorf("empty program image")
	case len(buf) > MaxProgram:
		return 0, fmt.Errorf("program image too large (max %d bytes)", MaxProgram)
	}
	img.Code = buf
	return int64(len(buf)), nil
}

// PrintInfos writes a summary of the image.
func (img *Image) PrintInfos(w io.Writer) {
	fmt.Fprintf(w, "name:   %s\n", img.Name)
	fmt.Fprintf(w, "size:   %d bytes (%d instructions)\n", len(img.Code), (len(img.Code)+3)/4)
	fmt.Fprintf(w, "sha1:   %x\n", sha1.Sum(img.Code))
	if len(img.Code)%4 != 0 {
		fmt.Fprintf(w, "warning: size is not a multiple of 4\n")
	}
}
