package testutil

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/dknn/distance"
)

// SearchResult represents an exact search result.
type SearchResult struct {
	Position   int
	Similarity float32
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// GaussianVectors generates random vectors with values from a standard normal distribution.
func (r *RNG) GaussianVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = float32(r.rand.NormFloat64())
		}
		vectors[i] = vec
	}

	return vectors
}

// UnitVectors generates L2-normalized random vectors (on the hypersphere).
// Uses Gaussian distribution for uniform distribution on the sphere.
func (r *RNG) UnitVectors(num int, dimensions int) [][]float32 {
	vectors := r.GaussianVectors(num, dimensions)
	for _, vec := range vectors {
		distance.NormalizeL2InPlace(vec)
	}
	return vectors
}

// UnitVector generates a single L2-normalized random vector.
func (r *RNG) UnitVector(dimensions int) []float32 {
	return r.UnitVectors(1, dimensions)[0]
}

// ClusteredVectors generates vectors clustered around random unit centroids.
// Vector i belongs to cluster i % clusters.
func (r *RNG) ClusteredVectors(num, dim, clusters int, spread float32) [][]float32 {
	vectors, _ := r.LabeledClusters(num, dim, clusters, spread)
	return vectors
}

// LabeledClusters generates vectors around random unit centroids and
// returns the cluster of each vector as its label.
// Vector i belongs to cluster i % clusters.
func (r *RNG) LabeledClusters(num, dim, clusters int, spread float32) ([][]float32, []int) {
	centroids := r.UnitVectors(clusters, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	vectors := make([][]float32, num)
	labels := make([]int, num)

	for i := range num {
		c := i % clusters
		centroid := centroids[c]
		vec := data[i*dim : (i+1)*dim]

		for j := range dim {
			// Add Gaussian noise to centroid
			vec[j] = centroid[j] + float32(r.rand.NormFloat64())*spread
		}
		vectors[i] = vec
		labels[i] = c
	}

	return vectors, labels
}

// Perturb returns a copy of v with Gaussian noise of the given scale added.
func (r *RNG) Perturb(v []float32, noise float32) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x + float32(r.rand.NormFloat64())*noise
	}
	return out
}

// BruteForceSearch returns the exact top-k positions by cosine similarity,
// highest similarity first, ties broken by position.
func BruteForceSearch(vectors [][]float32, query []float32, k int) []SearchResult {
	qn := distance.Norm(query)
	results := make([]SearchResult, len(vectors))
	for i, v := range vectors {
		sim := float32(0)
		if vn := distance.Norm(v); vn > 0 && qn > 0 {
			sim = distance.Dot(v, query) / (vn * qn)
		}
		results[i] = SearchResult{Position: i, Similarity: sim}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// ComputeRecall returns the fraction of groundTruth positions found in approximate.
func ComputeRecall(groundTruth []SearchResult, approximate []int) float64 {
	if len(groundTruth) == 0 {
		return 1
	}
	found := make(map[int]struct{}, len(approximate))
	for _, p := range approximate {
		found[p] = struct{}{}
	}
	var hits int
	for _, gt := range groundTruth {
		if _, ok := found[gt.Position]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(groundTruth))
}

// MeanRecall averages per-query recall values.
func MeanRecall(recalls []float64) float64 {
	if len(recalls) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, r := range recalls {
		sum += r
	}
	return sum / float64(len(recalls))
}
