package vision

import (
	"context"
	"fmt"
	"math"

	"github.com/Kagami/go-face"
	"go.uber.org/zap"
	"peerlend.backend/pkg/logger"
)

// matchTolerance is the standard dlib decision threshold on the Euclidean
// distance between two 128-d face descriptors.
const matchTolerance = 0.6

// DlibMatcher decides whether two images depict the same person.
type DlibMatcher struct {
	rec *face.Recognizer
}

// NewDlibMatcher loads the recognition models from modelsDir. The recognizer
// is expensive to build, so one instance is shared for the process lifetime.
func NewDlibMatcher(modelsDir string) (*DlibMatcher, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load face recognition models: %w", err)
	}
	return &DlibMatcher{rec: rec}, nil
}

// Close releases the underlying recognizer
func (m *DlibMatcher) Close() {
	m.rec.Close()
}

// Match reports whether the two images each contain exactly one face and the
// two faces match. Ambiguous detection (zero or multiple faces) and any
// processing error count as a failed match, never as a fault.
func (m *DlibMatcher) Match(ctx context.Context, pathA, pathB string) bool {
	descA, ok := m.singleDescriptor(ctx, pathA)
	if !ok {
		return false
	}
	descB, ok := m.singleDescriptor(ctx, pathB)
	if !ok {
		return false
	}

	distance := math.Sqrt(float64(face.SquaredEuclideanDistance(descA, descB)))
	return distance < matchTolerance
}

func (m *DlibMatcher) singleDescriptor(ctx context.Context, path string) (face.Descriptor, bool) {
	faces, err := m.rec.RecognizeFile(path)
	if err != nil {
		logger.Warn(ctx, "face recognition failed", zap.String("path", path), zap.Error(err))
		return face.Descriptor{}, false
	}
	if len(faces) != 1 {
		logger.Debug(ctx, "ambiguous face detection", zap.String("path", path), zap.Int("faces", len(faces)))
		return face.Descriptor{}, false
	}
	return faces[0].Descriptor, true
}
