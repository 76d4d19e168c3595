package images

import (
	"fmt"
	"os"
	"os/exec"
)

// Converter turns a source image into the normalized compressed cover
// format.
type Converter interface {
	Convert(src, dest string) error
}

// FFmpeg invokes the external ffmpeg binary once per image. A non-zero
// exit is the failure signal.
type FFmpeg struct {
	bin string
}

func NewFFmpeg(bin string) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{bin: bin}
}

func (f *FFmpeg) Convert(src, dest string) error {
	// ffmpeg truncates the output while still reading the input, so an
	// in-place conversion must go through a temp file.
	if src == dest {
		tmp := dest + ".tmp"
		if err := f.run(src, tmp); err != nil {
			return err
		}
		return os.Rename(tmp, dest)
	}
	return f.run(src, dest)
}

func (f *FFmpeg) run(src, dest string) error {
	cmd := exec.Command(f.bin, "-y", "-i", src, "-c:v", "libwebp", "-f", "webp", dest)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("convert %s: %v: %s", src, err, tail(out))
	}
	return nil
}

// Check reports whether the configured ffmpeg binary is runnable.
func Check(bin string) bool {
	if bin == "" {
		bin = "ffmpeg"
	}
	return exec.Command(bin, "-version").Run() == nil
}

func tail(out []byte) string {
	const max = 256
	if len(out) > max {
		out = out[len(out)-max:]
	}
	return string(out)
}
