package imaging

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
)

// JPEGQuality matches the encoder default the photo archive was produced with.
const JPEGQuality = 75

// Load decodes the JPEG at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// Save encodes img as a JPEG at path, replacing any existing file.
func Save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// ProcessFile produces the edited photo and the mask for one raw photo.
// The mask is derived from the re-decoded edited JPEG so that it reflects
// exactly what sits in the edited directory.
func ProcessFile(rawPath, editedPath, maskPath string) error {
	raw, err := Load(rawPath)
	if err != nil {
		return err
	}
	edited, err := CropAndResize(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", rawPath, err)
	}
	if err := Save(editedPath, edited); err != nil {
		return err
	}

	reloaded, err := Load(editedPath)
	if err != nil {
		return err
	}
	mask, err := Threshold(reloaded)
	if err != nil {
		return fmt.Errorf("%s: %w", editedPath, err)
	}
	return Save(maskPath, mask)
}
