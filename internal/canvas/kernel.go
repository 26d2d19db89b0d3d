package canvas

import (
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

// Kernel selects the resampling filter used to resize a source image.
// The zero value is Linear.
type Kernel int

const (
	Linear Kernel = iota
	Nearest
	CatmullRom
	Lanczos
	Box
	MitchellNetravali
)

var kernelNames = []string{
	Linear:            "linear",
	Nearest:           "nearest",
	CatmullRom:        "catmullrom",
	Lanczos:           "lanczos",
	Box:               "box",
	MitchellNetravali: "mitchell",
}

func (k Kernel) String() string {
	if k < 0 || int(k) >= len(kernelNames) {
		return fmt.Sprintf("Kernel(%d)", int(k))
	}
	return kernelNames[k]
}

// ParseKernel maps a kernel name (case-insensitive) to a Kernel.
func ParseKernel(name string) (Kernel, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range kernelNames {
		if n == name {
			return Kernel(i), nil
		}
	}
	return Linear, fmt.Errorf("unknown kernel %q (want one of %s)", name, strings.Join(kernelNames, ", "))
}

func (k Kernel) filter() imaging.ResampleFilter {
	switch k {
	case Nearest:
		return imaging.NearestNeighbor
	case CatmullRom:
		return imaging.CatmullRom
	case Lanczos:
		return imaging.Lanczos
	case Box:
		return imaging.Box
	case MitchellNetravali:
		return imaging.MitchellNetravali
	default:
		return imaging.Linear
	}
}
