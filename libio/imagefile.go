package libio

import (
	"fmt"
	goimg "image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// DecodeImage decodes any registered image format into a 4 channel 8 bit image.
// Rows are kept in file order, the first row of the file is row 0.
func DecodeImage(r io.Reader) (*IntImage, string, error) {
	src, format, err := goimg.Decode(r)
	if err != nil {
		return nil, "", err
	}

	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, format, fmt.Errorf("%s image is empty", format)
	}

	var nrgba *goimg.NRGBA
	if img, ok := src.(*goimg.NRGBA); ok && img.Stride == 4*bounds.Dx() {
		nrgba = img
	} else {
		nrgba = goimg.NewNRGBA(goimg.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		xdraw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, xdraw.Src)
	}

	return NewIntImage(nrgba.Pix[:4*bounds.Dx()*bounds.Dy()], 4, bounds.Dx(), bounds.Dy()), format, nil
}

func DecodeImageFile(path string) (*IntImage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := DecodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", path, err)
	}
	return img, nil
}
