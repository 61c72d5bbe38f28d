package memory

import "reflect"

const (
	defaultScalarSize = 16
	numericSize       = 8
	sampleSize        = 16
	maxEstimateDepth  = 3
)

// Sizer is implemented by values that know their approximate footprint.
type Sizer interface {
	SizeBytes() int64
}

// EstimateSize returns a cheap, deterministic approximation of v's memory footprint.
// Vectors are sized exactly, containers by sampling at most 16 elements.
func EstimateSize(v any) int64 {
	return estimate(v, 0)
}

func estimate(v any, depth int) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case Sizer:
		return t.SizeBytes()
	case []float64:
		return numericSize * int64(len(t))
	case []float32:
		return 4 * int64(len(t))
	case string:
		return int64(len(t))
	case []byte:
		return int64(len(t))
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return numericSize
	case map[string]any:
		return sampleMap(len(t), depth, func(yield func(string, any) bool) {
			for k, val := range t {
				if !yield(k, val) {
					return
				}
			}
		})
	case map[string]string:
		return sampleMap(len(t), depth, func(yield func(string, any) bool) {
			for k, val := range t {
				if !yield(k, val) {
					return
				}
			}
		})
	case []any:
		return sampleSlice(len(t), depth, func(i int) any { return t[i] })
	case []map[string]any:
		return sampleSlice(len(t), depth, func(i int) any { return t[i] })
	case []string:
		return sampleSlice(len(t), depth, func(i int) any { return t[i] })
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		return sampleSlice(rv.Len(), depth, func(i int) any { return rv.Index(i).Interface() })
	}

	return defaultScalarSize
}

func sampleMap(n, depth int, each func(yield func(string, any) bool)) int64 {
	if n == 0 {
		return 0
	}
	if depth >= maxEstimateDepth {
		return int64(n) * defaultScalarSize
	}

	var total int64
	sampled := 0
	each(func(k string, val any) bool {
		total += int64(len(k)) + estimate(val, depth+1)
		sampled++
		return sampled < sampleSize
	})

	return total / int64(sampled) * int64(n)
}

func sampleSlice(n, depth int, at func(int) any) int64 {
	if n == 0 {
		return 0
	}
	if depth >= maxEstimateDepth {
		return int64(n) * defaultScalarSize
	}

	sampled := min(n, sampleSize)
	var total int64
	for i := range sampled {
		total += estimate(at(i), depth+1)
	}

	return total / int64(sampled) * int64(n)
}
