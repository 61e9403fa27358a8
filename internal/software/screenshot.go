package software

import (
	"fmt"
	"image/png"
	"os"
)

// SavePNG writes a buffer's colour plane to path. Handy for eyeballing the
// intermediate mask/blur output from headless runs.
func SavePNG(buf *Buffer, path string) error {
	buf.check()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := png.Encode(f, buf.pix); err != nil {
		_ = f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
