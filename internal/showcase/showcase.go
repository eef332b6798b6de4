// Package showcase draws one randomly chosen cleaned annotation on its source
// image, as a visual check that coordinates were converted correctly.
package showcase

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/ironsheep/labeldb/internal/annotation"
	"github.com/ironsheep/labeldb/internal/errors"
	"github.com/ironsheep/labeldb/internal/imaging"
	"github.com/ironsheep/labeldb/internal/logger"
	"github.com/ironsheep/labeldb/internal/store"
)

// DefaultImageExt is tried before falling back to a prefix match.
const DefaultImageExt = ".png"

// Options controls drawing.
type Options struct {
	BoxColor  color.RGBA
	Thickness int
	// Rand picks the annotation; nil uses the global source.
	Rand *rand.Rand
}

// Result describes the saved image.
type Result struct {
	Annotation annotation.Annotation `json:"annotation"`
	ImagePath  string                `json:"image_path"`
	OutputPath string                `json:"output_path,omitempty"`
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Box        annotation.Box        `json:"box"`
}

// Showcase renders annotations found in a dataset tree.
type Showcase struct {
	root  string
	cache *imaging.ImageCache
	log   *slog.Logger
}

// New returns a Showcase reading images below root through cache.
func New(root string, cache *imaging.ImageCache, log *slog.Logger) *Showcase {
	return &Showcase{root: root, cache: cache, log: logger.Module(log, "showcase")}
}

// CheckRoot fails when the dataset root is not a directory.
func (s *Showcase) CheckRoot() error {
	ok, err := afero.DirExists(s.cache.Fs(), s.root)
	if err != nil || !ok {
		return errors.Newf("dataset root not found: %s", s.root).
			Category(errors.CategoryNotFound).
			Context("path", s.root).
			Build()
	}
	return nil
}

// ResolveImage finds the image for a record. It tries
// {root}/{split}/images/{name}.png first, then the first file in lexical
// order matching {name}*. The prefix match covers exports whose image names
// carry extra suffixes such as "name.rf.<hash>.jpg".
func (s *Showcase) ResolveImage(a annotation.Annotation) (string, error) {
	dir := filepath.Join(s.root, string(a.Split), "images")
	fs := s.cache.Fs()

	exact := filepath.Join(dir, a.ImageFilename+DefaultImageExt)
	if ok, _ := afero.Exists(fs, exact); ok {
		return exact, nil
	}

	matches, err := afero.Glob(fs, filepath.Join(dir, globEscape(a.ImageFilename)+"*"))
	if err == nil && len(matches) > 0 {
		sort.Strings(matches)
		s.log.Debug("image resolved by prefix match", "image_filename", a.ImageFilename, "path", matches[0])
		return matches[0], nil
	}

	return "", errors.Newf("image file not found for annotation: %s", a.ImageFilename).
		Category(errors.CategoryNotFound).
		Context("split", a.Split).
		Context("dir", dir).
		Build()
}

// globEscape escapes glob metacharacters in a literal file name.
func globEscape(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// Draw loads the record's image and returns it with the box and class id drawn.
func (s *Showcase) Draw(a annotation.Annotation, opts Options) (*image.RGBA, *Result, error) {
	path, err := s.ResolveImage(a)
	if err != nil {
		return nil, nil, err
	}

	img, err := s.cache.Load(path)
	if err != nil {
		return nil, nil, errors.New(err).
			Category(errors.CategoryImage).
			Context("path", path).
			Build()
	}

	bounds := img.Bounds()
	box := a.PixelBox(bounds.Dx(), bounds.Dy())

	thickness := opts.Thickness
	if thickness <= 0 {
		thickness = 3
	}
	boxColor := opts.BoxColor
	if boxColor.A == 0 {
		boxColor = color.RGBA{255, 0, 0, 255}
	}

	out := imaging.DrawBox(img, box, boxColor, thickness)
	imaging.StampClass(out, box, a.ClassID, boxColor)

	return out, &Result{
		Annotation: a,
		ImagePath:  path,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Box:        box,
	}, nil
}

// Pick returns a cleaned annotation chosen uniformly at random.
func Pick(ctx context.Context, st *store.Store, rng *rand.Rand) (annotation.Annotation, error) {
	n, err := st.Count(ctx, store.CleanedTable)
	if err != nil {
		return annotation.Annotation{}, err
	}
	if n == 0 {
		return annotation.Annotation{}, errors.Newf("no cleaned annotations to showcase").
			Category(errors.CategoryNotFound).
			Context("path", st.Path()).
			Build()
	}

	var offset int
	if rng != nil {
		offset = rng.IntN(int(n))
	} else {
		offset = rand.IntN(int(n))
	}
	return st.CleanedAt(ctx, offset)
}

// Generate picks a random annotation, draws it, and writes the PNG to
// outputPath on the cache's filesystem.
func (s *Showcase) Generate(ctx context.Context, st *store.Store, outputPath string, opts Options) (*Result, error) {
	if err := s.CheckRoot(); err != nil {
		return nil, err
	}

	a, err := Pick(ctx, st, opts.Rand)
	if err != nil {
		return nil, err
	}

	out, res, err := s.Draw(a, opts)
	if err != nil {
		return nil, err
	}

	if err := imaging.SavePNG(s.cache.Fs(), outputPath, out); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Context("path", outputPath).
			Build()
	}
	res.OutputPath = outputPath
	return res, nil
}
