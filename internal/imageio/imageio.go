// Package imageio reads dataset images and writes normalized canvases.
//
// Sources may be BMP (display format) or any netpbm format (processing
// format). Output is always binary PGM, written through a temporary file in
// the destination directory and atomically renamed into place, so a reader
// never observes a partially written canvas under its final name.
package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/andresmejia3/gestureprep/internal/types"
	"github.com/google/renameio"
	"github.com/spakin/netpbm"
	_ "golang.org/x/image/bmp" // Register BMP decoder
)

// ErrEmptyImage is returned for sources with a zero width or height.
var ErrEmptyImage = errors.New("image has zero width or height")

// Decode loads the image at path. Every failure is a *types.DecodeError.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	img, err := DecodeReader(bufio.NewReader(f))
	if err != nil {
		return nil, &types.DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// DecodeReader decodes a BMP or netpbm stream and rejects empty images.
func DecodeReader(r io.Reader) (image.Image, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var img image.Image
	var err error
	if isNetpbm(br) {
		img, err = netpbm.Decode(br, &netpbm.DecodeOptions{Target: netpbm.PNM})
	} else {
		img, _, err = image.Decode(br)
	}
	if err != nil {
		return nil, err
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	return img, nil
}

// isNetpbm sniffs the "P1".."P7" magic number.
func isNetpbm(br *bufio.Reader) bool {
	magic, err := br.Peek(2)
	if err != nil {
		return false
	}
	return magic[0] == 'P' && magic[1] >= '1' && magic[1] <= '7'
}

// EncodePGM writes img as an 8-bit binary PGM.
func EncodePGM(w io.Writer, img image.Image) error {
	return netpbm.Encode(w, img, &netpbm.EncodeOptions{
		Format:   netpbm.PGM,
		MaxValue: 255,
		Plain:    false,
	})
}

// WriteAtomic encodes img as PGM and replaces path with it.
//
// Encoding failures return a *types.WriteError and the replace failure a
// *types.RenameError; in both cases the previous content of path, if any,
// is untouched and the temporary file is removed.
func WriteAtomic(path string, img image.Image) error {
	pending, err := renameio.TempFile(filepath.Dir(path), path)
	if err != nil {
		return &types.WriteError{Path: path, Err: err}
	}
	defer pending.Cleanup()

	buf := bufio.NewWriter(pending)
	if err := EncodePGM(buf, img); err != nil {
		return &types.WriteError{Path: path, Err: fmt.Errorf("encoding pgm: %w", err)}
	}
	if err := buf.Flush(); err != nil {
		return &types.WriteError{Path: path, Err: err}
	}
	if err := pending.Chmod(0644); err != nil {
		return &types.WriteError{Path: path, Err: err}
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return &types.RenameError{Path: path, Err: err}
	}
	return nil
}
