package opencv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"EmotionLens/pkg/model"
	"EmotionLens/pkg/vision"

	"gocv.io/x/gocv"
)

type dnnNetwork struct {
	mu  sync.Mutex
	net gocv.Net
}

// OpenNetwork is a model.Backend that reads an ONNX (or any format OpenCV's dnn
// module understands) artifact. The input layer is fed an NHWC float32 blob.
func OpenNetwork(path string) (model.Network, error) {
	net := gocv.ReadNet(path, "")
	if net.Empty() {
		net.Close()
		return nil, errors.New("opencv dnn could not parse the model")
	}
	return &dnnNetwork{net: net}, nil
}

func (n *dnnNetwork) Forward(input vision.Tensor) ([]float32, error) {
	blob, err := gocv.NewMatWithSizesFromBytes(input.Shape(), gocv.MatTypeCV32F, float32Bytes(input.Data))
	if err != nil {
		return nil, fmt.Errorf("build input blob: %w", err)
	}
	defer blob.Close()

	n.mu.Lock()
	defer n.mu.Unlock()

	n.net.SetInput(blob, "")
	out := n.net.Forward("")
	defer out.Close()

	scores, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read network output: %w", err)
	}
	res := make([]float32, len(scores))
	copy(res, scores)
	return res, nil
}

func (n *dnnNetwork) Close() error {
	return n.net.Close()
}

func float32Bytes(fa []float32) []byte {
	buf := bytes.Buffer{}
	_ = binary.Write(&buf, binary.LittleEndian, fa)
	return buf.Bytes()
}
