package dknn_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/dknn"
	"github.com/hupe1980/dknn/blobstore"
)

func Example() {
	ctx := context.Background()

	clf, err := dknn.New[point](dknn.EmbedFunc[point](embedPoints)).
		Layers("conv1", "conv2", "fc").
		K(2).
		NumClasses(2).
		Build(ctx, train, cal)
	if err != nil {
		log.Fatal(err)
	}
	defer clf.Close()

	results, err := clf.Evaluate(ctx, []point{{0.1, 1}})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(results[0].Label, results[0].Votes, results[0].Credibility)
	// Output: 1 [0 6] 1
}

func Example_publish() {
	ctx := context.Background()
	b := dknn.New[point](dknn.EmbedFunc[point](embedPoints)).
		Layers("conv1", "conv2", "fc").
		K(2).
		NumClasses(2)

	clf, err := b.Build(ctx, train, cal)
	if err != nil {
		log.Fatal(err)
	}

	store := blobstore.NewMemoryStore()
	if err := clf.Publish(ctx, store, "snap-0001.dknn"); err != nil {
		log.Fatal(err)
	}

	restored, err := b.LoadCurrent(ctx, store)
	if err != nil {
		log.Fatal(err)
	}
	labels, err := restored.Predict(ctx, []point{{1, 0.1}, {0.1, 1}})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(labels)
	// Output: [0 1]
}
