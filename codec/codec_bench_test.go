package codec

import (
	"testing"
)

type benchLayer struct {
	Name  string `json:"name"`
	Dim   int    `json:"dim"`
	Seed  uint64 `json:"seed"`
	Count int    `json:"count"`
}

type benchManifest struct {
	Layers          []benchLayer `json:"layers"`
	TrainSize       int          `json:"train_size"`
	CalibrationSize int          `json:"calibration_size"`
}

type benchRecord struct {
	Label  int                  `json:"label"`
	Layers map[string][]float32 `json:"layers"`
}

func benchmarkCodecMarshal(b *testing.B, c Codec, v any) {
	b.Helper()
	b.ReportAllocs()
	warm, err := c.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(warm)))

	var sink []byte
	b.ResetTimer()
	for b.Loop() {
		out, err := c.Marshal(v)
		if err != nil {
			b.Fatal(err)
		}
		sink = out
	}
	_ = sink
}

func benchmarkCodecUnmarshal[T any](b *testing.B, c Codec, data []byte) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	var v T
	b.ResetTimer()
	for b.Loop() {
		if err := c.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
}

func manifestFixture() benchManifest {
	return benchManifest{
		Layers: []benchLayer{
			{Name: "conv1", Dim: 512, Seed: 1234, Count: 60000},
			{Name: "conv2", Dim: 1024, Seed: 1234, Count: 60000},
			{Name: "fc", Dim: 128, Seed: 1234, Count: 60000},
		},
		TrainSize:       60000,
		CalibrationSize: 750,
	}
}

func recordFixture() benchRecord {
	vec := make([]float32, 256)
	for i := range vec {
		vec[i] = float32(i) / 256
	}
	return benchRecord{
		Label:  3,
		Layers: map[string][]float32{"conv1": vec, "fc": vec[:64]},
	}
}

func BenchmarkCodec_Marshal_Manifest(b *testing.B) {
	m := manifestFixture()
	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, JSON{}, m) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, GoJSON{}, m) })
}

func BenchmarkCodec_Unmarshal_Record(b *testing.B) {
	data := MustMarshal(JSON{}, recordFixture())
	b.Run("stdlib", func(b *testing.B) { benchmarkCodecUnmarshal[benchRecord](b, JSON{}, data) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecUnmarshal[benchRecord](b, GoJSON{}, data) })
}
