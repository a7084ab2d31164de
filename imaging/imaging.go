package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"

	"github.com/apex/log"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"

	_ "image/png"

	_ "golang.org/x/image/webp"
)

const jpegQuality = 85

// ErrNotAnImage is returned when the uploaded bytes are not a decodable
// JPEG, PNG or WEBP raster image.
var ErrNotAnImage = errors.New("file is not a decodable image (supported formats: JPEG, PNG, WEBP)")

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Validate checks that data is a decodable raster image of an allowed format
// and returns its MIME type.
func Validate(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNotAnImage
	}

	mimeType := http.DetectContentType(data)
	if !allowedMimeTypes[mimeType] {
		return "", fmt.Errorf("invalid file type %q: %w", mimeType, ErrNotAnImage)
	}

	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return "", ErrNotAnImage
	}

	return mimeType, nil
}

// Normalize prepares an upload for the outbound model call: it corrects the
// EXIF orientation and downscales the image so neither dimension exceeds
// maxDim, re-encoding as JPEG. Images already within bounds are returned
// untouched with their original MIME type.
func Normalize(data []byte, mimeType string, maxDim int) ([]byte, string, error) {
	orientation := getOrientation(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	if originalWidth <= maxDim && originalHeight <= maxDim {
		return data, mimeType, nil
	}

	if orientation != 1 {
		img = correctOrientation(img, orientation)
		bounds = img.Bounds()
		originalWidth = bounds.Dx()
		originalHeight = bounds.Dy()
	}

	// Scale to fit within maxDim while preserving aspect ratio
	scaleX := float64(maxDim) / float64(originalWidth)
	scaleY := float64(maxDim) / float64(originalHeight)
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	newWidth := int(float64(originalWidth) * scale)
	newHeight := int(float64(originalHeight) * scale)
	if newWidth > maxDim {
		newWidth = maxDim
	}
	if newHeight > maxDim {
		newHeight = maxDim
	}

	newImg := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.ApproxBiLinear.Scale(newImg, newImg.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, newImg, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode scaled image: %w", err)
	}

	log.Infof("Image normalized: %d bytes -> %d bytes (original: %dx%d, new: %dx%d, orientation: %d)",
		len(data), buf.Len(), originalWidth, originalHeight, newWidth, newHeight, orientation)

	return buf.Bytes(), "image/jpeg", nil
}

// getOrientation extracts the EXIF orientation from JPEG data
func getOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1 // Default orientation if no EXIF data or error
	}

	orientation, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientVal, err := orientation.Int(0)
	if err != nil {
		return 1
	}

	return orientVal
}

// correctOrientation applies the EXIF orientation to the decoded image
func correctOrientation(img image.Image, orientation int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	switch orientation {
	case 2: // Flip horizontal
		newImg := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(width-1-x, y, img.At(x, y))
			}
		}
		return newImg
	case 3: // Rotate 180
		newImg := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(width-1-x, height-1-y, img.At(x, y))
			}
		}
		return newImg
	case 4: // Flip vertical
		newImg := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(x, height-1-y, img.At(x, y))
			}
		}
		return newImg
	case 5: // Transpose
		newImg := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(y, x, img.At(x, y))
			}
		}
		return newImg
	case 6: // Rotate 90 clockwise
		newImg := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(height-1-y, x, img.At(x, y))
			}
		}
		return newImg
	case 7: // Transverse
		newImg := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(height-1-y, width-1-x, img.At(x, y))
			}
		}
		return newImg
	case 8: // Rotate 90 counter-clockwise
		newImg := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				newImg.Set(y, width-1-x, img.At(x, y))
			}
		}
		return newImg
	default: // Orientation 1 or unknown
		return img
	}
}
