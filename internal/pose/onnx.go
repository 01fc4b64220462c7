package pose

import (
	"context"
	"fmt"
	"image"

	"github.com/keagan/squatprep/pkg/util"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig describes a single-person keypoint model with a square NHWC
// input of InputSize and a [1, 1, 17, 3] output of (y, x, score) rows.
type ONNXConfig struct {
	ModelPath         string
	SharedLibraryPath string
	InputSize         int
	InputType         string // int32 or float32
	InputName         string
	OutputName        string
	ScoreThreshold    float64
}

// ONNXEstimator runs a MoveNet-style pose model through onnxruntime.
type ONNXEstimator struct {
	logger  zerolog.Logger
	cfg     ONNXConfig
	session *ort.DynamicAdvancedSession
}

// NewONNXEstimator loads the model once; the session is reused for every
// frame of the run.
func NewONNXEstimator(logger zerolog.Logger, cfg ONNXConfig) (*ONNXEstimator, error) {
	if !util.FileExists(cfg.ModelPath) {
		return nil, fmt.Errorf("pose model not found: %s", cfg.ModelPath)
	}
	if cfg.InputSize <= 0 {
		return nil, fmt.Errorf("pose input size must be positive, got %d", cfg.InputSize)
	}
	if cfg.InputType != "int32" && cfg.InputType != "float32" {
		return nil, fmt.Errorf("unsupported pose input type %q", cfg.InputType)
	}

	if cfg.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
		}
	}

	sess, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pose session: %w", err)
	}

	logger.Info().
		Str("model", cfg.ModelPath).
		Int("input_size", cfg.InputSize).
		Str("input_type", cfg.InputType).
		Msg("pose model loaded")

	return &ONNXEstimator{
		logger:  logger.With().Str("component", "pose").Logger(),
		cfg:     cfg,
		session: sess,
	}, nil
}

// Infer resizes the image to the model input and decodes the keypoints.
func (e *ONNXEstimator) Infer(ctx context.Context, img image.Image) ([]Skeleton, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := e.cfg.InputSize
	shape := ort.NewShape(1, int64(size), int64(size), 3)
	resized := resize.Resize(uint(size), uint(size), img, resize.Bilinear)

	var input ort.Value
	var err error
	if e.cfg.InputType == "int32" {
		input, err = ort.NewTensor(shape, pixelsNHWC[int32](resized))
	} else {
		input, err = ort.NewTensor(shape, pixelsNHWC[float32](resized))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := e.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("pose inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("pose output is not a float32 tensor")
	}

	skeletons := decodeKeypoints(out.GetData(), e.cfg.ScoreThreshold)

	e.logger.Debug().
		Int("skeletons", len(skeletons)).
		Msg("pose inference complete")

	return skeletons, nil
}

// Close releases the session and the ONNX environment.
func (e *ONNXEstimator) Close() error {
	e.logger.Debug().Msg("closing pose model session")
	if e.session != nil {
		if err := e.session.Destroy(); err != nil {
			return err
		}
		e.session = nil
	}
	return ort.DestroyEnvironment()
}

// pixelsNHWC lays the RGB channels out as [height][width][channel] with raw
// 0-255 values.
func pixelsNHWC[T int32 | float32](img image.Image) []T {
	bounds := img.Bounds()
	data := make([]T, 0, bounds.Dx()*bounds.Dy()*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			data = append(data, T(r>>8), T(g>>8), T(b>>8))
		}
	}
	return data
}

// decodeKeypoints reads consecutive (y, x, score) triples, one skeleton per
// 17 of them. A skeleton whose mean score is under threshold is dropped.
func decodeKeypoints(data []float32, threshold float64) []Skeleton {
	const stride = NumKeypoints * 3

	var skeletons []Skeleton
	for base := 0; base+stride <= len(data); base += stride {
		var s Skeleton
		total := 0.0
		for k := 0; k < NumKeypoints; k++ {
			row := data[base+k*3 : base+k*3+3]
			s.Keypoints[k] = Keypoint{
				Y:     float64(row[0]),
				X:     float64(row[1]),
				Score: float64(row[2]),
			}
			total += float64(row[2])
		}
		s.Score = total / NumKeypoints
		if s.Score >= threshold {
			skeletons = append(skeletons, s)
		}
	}
	return skeletons
}
