package suite

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/ahmedtd/lcals/loops"
	"github.com/sbinet/npyio/npz"
)

// Snapshot formats.
const (
	FormatNPZ         = "npz"
	FormatSafeTensors = "safetensors"
)

const scalarsKey = "scalars"

// snapshotTensor is one named entry of a workspace snapshot.  Data is a
// []float32, []float64 or []int64.
type snapshotTensor struct {
	DType string
	Data  any
}

func dtypeOf[T loops.Real]() string {
	if loops.PrecisionName[T]() == "float32" {
		return "F32"
	}
	return "F64"
}

func workspaceTensors[T loops.Real](ws *loops.Workspace[T]) map[string]snapshotTensor {
	tensors := map[string]snapshotTensor{}
	for h := loops.ArrayHandle(0); h < loops.NumArrays; h++ {
		tensors[h.String()] = snapshotTensor{DType: dtypeOf[T](), Data: ws.Array(h)}
	}
	scalars := make([]T, loops.NumScalars)
	for h := loops.ScalarHandle(0); h < loops.NumScalars; h++ {
		scalars[h] = ws.Scalar(h)
	}
	tensors[scalarsKey] = snapshotTensor{DType: dtypeOf[T](), Data: scalars}
	for h := loops.IndexHandle(0); h < loops.NumIndexArrays; h++ {
		idx := ws.IndexArray(h)
		v := make([]int64, len(idx))
		for j := range idx {
			v[j] = int64(idx[j])
		}
		tensors[h.String()] = snapshotTensor{DType: "I64", Data: v}
	}
	return tensors
}

func tensorLen(data any) int {
	switch v := data.(type) {
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	case []int64:
		return len(v)
	}
	panic(fmt.Sprintf("unsupported tensor data %T", data))
}

// WriteSnapshot writes every array, scalar and index array of ws in format.
func WriteSnapshot[T loops.Real](w io.Writer, ws *loops.Workspace[T], format string) error {
	tensors := workspaceTensors(ws)
	switch format {
	case FormatNPZ:
		return writeNPZ(w, tensors)
	case FormatSafeTensors:
		return writeSafeTensors(w, tensors)
	default:
		return fmt.Errorf("unknown snapshot format %q", format)
	}
}

// ReadSnapshot reads a snapshot written by WriteSnapshot for a workspace of the
// same precision and capacity.
func ReadSnapshot[T loops.Real](r io.ReaderAt, size int64, format string) (*loops.Workspace[T], error) {
	var (
		tensors map[string]any
		err     error
	)
	switch format {
	case FormatNPZ:
		tensors, err = readNPZ[T](r, size)
	case FormatSafeTensors:
		tensors, err = readSafeTensors[T](r, size)
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return workspaceFromTensors[T](tensors)
}

func workspaceFromTensors[T loops.Real](tensors map[string]any) (*loops.Workspace[T], error) {
	real0, ok := tensors[loops.Real0.String()].([]T)
	if !ok {
		return nil, fmt.Errorf("snapshot has no %s %s array", dtypeOf[T](), loops.Real0)
	}
	ws := loops.NewWorkspace[T](len(real0))

	for h := loops.ArrayHandle(0); h < loops.NumArrays; h++ {
		v, ok := tensors[h.String()].([]T)
		if !ok {
			return nil, fmt.Errorf("snapshot has no %s %s array", dtypeOf[T](), h)
		}
		if len(v) != ws.Capacity() {
			return nil, fmt.Errorf("snapshot array %s has %d elements, want %d", h, len(v), ws.Capacity())
		}
		copy(ws.Array(h), v)
	}

	scalars, ok := tensors[scalarsKey].([]T)
	if !ok || len(scalars) != int(loops.NumScalars) {
		return nil, fmt.Errorf("snapshot has no %d-element %s tensor", loops.NumScalars, scalarsKey)
	}
	for h := loops.ScalarHandle(0); h < loops.NumScalars; h++ {
		ws.SetScalar(h, scalars[h])
	}

	for h := loops.IndexHandle(0); h < loops.NumIndexArrays; h++ {
		v, ok := tensors[h.String()].([]int64)
		if !ok {
			return nil, fmt.Errorf("snapshot has no I64 %s array", h)
		}
		idx := ws.IndexArray(h)
		if len(v) != len(idx) {
			return nil, fmt.Errorf("snapshot index array %s has %d elements, want %d", h, len(v), len(idx))
		}
		for j := range v {
			idx[j] = int(v[j])
		}
	}

	return ws, nil
}

func sortedKeys(tensors map[string]snapshotTensor) []string {
	keys := []string{}
	for k := range tensors {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func writeNPZ(w io.Writer, tensors map[string]snapshotTensor) error {
	wz := npz.NewWriter(w)
	for _, k := range sortedKeys(tensors) {
		if err := wz.Write(k+".npy", tensors[k].Data); err != nil {
			wz.Close()
			return fmt.Errorf("while writing %s: %w", k, err)
		}
	}
	if err := wz.Close(); err != nil {
		return fmt.Errorf("while closing npz archive: %w", err)
	}
	return nil
}

func readNPZ[T loops.Real](r io.ReaderAt, size int64) (map[string]any, error) {
	rz, err := npz.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("while opening npz archive: %w", err)
	}

	tensors := map[string]any{}
	for h := loops.ArrayHandle(0); h < loops.NumArrays; h++ {
		var v []T
		if err := rz.Read(h.String()+".npy", &v); err != nil {
			return nil, fmt.Errorf("while reading %s: %w", h, err)
		}
		tensors[h.String()] = v
	}

	var scalars []T
	if err := rz.Read(scalarsKey+".npy", &scalars); err != nil {
		return nil, fmt.Errorf("while reading %s: %w", scalarsKey, err)
	}
	tensors[scalarsKey] = scalars

	for h := loops.IndexHandle(0); h < loops.NumIndexArrays; h++ {
		var v []int64
		if err := rz.Read(h.String()+".npy", &v); err != nil {
			return nil, fmt.Errorf("while reading %s: %w", h, err)
		}
		tensors[h.String()] = v
	}

	return tensors, nil
}

type safeTensorInfo struct {
	DType       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets []int  `json:"data_offsets"`
}

var dtypeSize = map[string]int{"F32": 4, "F64": 8, "I64": 8}

func writeSafeTensors(w io.Writer, tensors map[string]snapshotTensor) error {
	header := map[string]safeTensorInfo{}
	dataOffset := 0

	keys := sortedKeys(tensors)
	for _, k := range keys {
		n := tensorLen(tensors[k].Data)
		begin := dataOffset
		dataOffset += n * dtypeSize[tensors[k].DType]
		end := dataOffset

		header[k] = safeTensorInfo{
			DType:       tensors[k].DType,
			Shape:       []int{n},
			DataOffsets: []int{begin, end},
		}
	}

	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerBytes))); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(headerBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	for _, k := range keys {
		if err := binary.Write(w, binary.LittleEndian, tensors[k].Data); err != nil {
			return fmt.Errorf("while writing %s values: %w", k, err)
		}
	}

	return nil
}

func readSafeTensors[T loops.Real](r io.ReaderAt, size int64) (map[string]any, error) {
	var lenBytes [8]byte
	if _, err := r.ReadAt(lenBytes[:], 0); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}
	headerLen := binary.LittleEndian.Uint64(lenBytes[:])
	if headerLen > uint64(size-8) {
		return nil, fmt.Errorf("header length %d exceeds file size %d", headerLen, size)
	}

	headerBytes := make([]byte, int(headerLen))
	if _, err := r.ReadAt(headerBytes, 8); err != nil {
		return nil, fmt.Errorf("while reading header: %w", err)
	}

	header := map[string]safeTensorInfo{}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("while reading header: %w", err)
	}

	tensors := map[string]any{}
	for k, hdr := range header {
		elemSize, ok := dtypeSize[hdr.DType]
		if !ok {
			return nil, fmt.Errorf("unsupported dtype %s", hdr.DType)
		}
		if len(hdr.Shape) != 1 || hdr.Shape[0] < 0 {
			return nil, fmt.Errorf("unsupported shape %v", hdr.Shape)
		}
		if len(hdr.DataOffsets) != 2 || hdr.DataOffsets[1]-hdr.DataOffsets[0] != hdr.Shape[0]*elemSize {
			return nil, fmt.Errorf("bad data offsets %v for %s", hdr.DataOffsets, k)
		}

		if hdr.DataOffsets[0] < 0 || 8+int64(headerLen)+int64(hdr.DataOffsets[1]) > size {
			return nil, fmt.Errorf("data offsets %v for %s exceed file size", hdr.DataOffsets, k)
		}

		valBytes := make([]byte, hdr.Shape[0]*elemSize)
		if _, err := r.ReadAt(valBytes, 8+int64(headerLen)+int64(hdr.DataOffsets[0])); err != nil && len(valBytes) > 0 {
			return nil, fmt.Errorf("while reading bytes for %s: %w", k, err)
		}

		var data any
		switch {
		case hdr.DType == "I64":
			data = make([]int64, hdr.Shape[0])
		case hdr.DType == dtypeOf[T]():
			data = make([]T, hdr.Shape[0])
		default:
			return nil, fmt.Errorf("%s has dtype %s, want %s", k, hdr.DType, dtypeOf[T]())
		}
		if err := binary.Read(bytes.NewReader(valBytes), binary.LittleEndian, data); err != nil {
			return nil, fmt.Errorf("while decoding %s: %w", k, err)
		}
		tensors[k] = data
	}

	return tensors, nil
}
