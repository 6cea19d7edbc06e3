package runner

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Request describes one evaluation of a superpixel map against its image
// and ground truth. It is built once per invocation and never mutated.
type Request struct {
	Extension         string `json:"ext"`
	ImagePath         string `json:"img"`
	GroundTruthPath   string `json:"gt"`
	SuperpixelMapPath string `json:"label"`
	SavePath          string `json:"save"`
	MinSuperpixelSize int    `json:"rmsize"`
}

// Validate reports every malformed field at once. Paths are only checked
// for presence; whether they exist is left to the evaluation tool.
func (r Request) Validate() error {
	var errs *multierror.Error

	required := []struct {
		flag  string
		value string
	}{
		{"ext", r.Extension},
		{"img", r.ImagePath},
		{"gt", r.GroundTruthPath},
		{"label", r.SuperpixelMapPath},
		{"save", r.SavePath},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = multierror.Append(errs, fmt.Errorf("%s is required", f.flag))
		}
	}
	if r.MinSuperpixelSize < 0 {
		errs = multierror.Append(errs, fmt.Errorf("rmsize must be >= 0, got %d", r.MinSuperpixelSize))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}
