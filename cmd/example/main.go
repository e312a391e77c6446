package main

import (
	"flag"
	"fmt"

	"github.com/LynnColeArt/gridreduce"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagItems     = flag.Int("items", 4096, "Number of work items to reduce.")
	flagBlock     = flag.Int("block", 32, "Threads per block.")
	flagSubgroups = flag.Bool("subgroups", false, "Use the two-level sub-group block reduction.")
	flagNative    = flag.String("native", "", `Flat-range strategy: "none", "identity-pair" or "preseeded". Empty keeps the build default.`)
)

// value is the contribution of work item i.
func value(i int) gridreduce.Stats {
	return gridreduce.NewStats(i*12345%4792 + 101)
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	var opts []gridreduce.Option
	switch *flagNative {
	case "":
	case "none":
		opts = append(opts, gridreduce.WithNativeReduction(gridreduce.NativeNone))
	case "identity-pair":
		opts = append(opts, gridreduce.WithNativeReduction(gridreduce.NativeIdentityPair))
	case "preseeded":
		opts = append(opts, gridreduce.WithNativeReduction(gridreduce.NativePreseeded))
	default:
		klog.Fatalf("unknown -native=%q", *flagNative)
	}
	q := gridreduce.NewQueue(opts...)
	defer q.Close()

	version, _ := gridreduce.Version()
	fmt.Printf("gridreduce %s on %s\n", version, q.Device())

	// Like a parallel for, but every work item returns a Stats by value.
	rng := must.M1(gridreduce.NewNDRange(gridreduce.Dim1(*flagItems), gridreduce.Dim1(*flagBlock)))
	red := gridreduce.NewReducer[gridreduce.Stats](gridreduce.StatsOp{})
	launch := gridreduce.ParallelReduce[gridreduce.Stats, gridreduce.StatsOp]
	if *flagSubgroups {
		launch = gridreduce.ParallelReduceSubgroups[gridreduce.Stats, gridreduce.StatsOp]
	}
	ev := must.M1(launch(q, rng, red, func(it gridreduce.Item) gridreduce.Stats {
		return value(it.GlobalLinearID())
	}))
	must.M(ev.Wait())
	ans := red.Get()
	fmt.Printf("nd-range:   %d %d %d %d (%d blocks)\n", ans.Count, ans.Sum, ans.Min, ans.Max, red.Len())

	flat := gridreduce.NewReducer[gridreduce.Stats](gridreduce.StatsOp{})
	ev = must.M1(gridreduce.ParallelReduceRange(q, *flagItems, flat, value))
	must.M(ev.Wait())
	ans = flat.Get()
	fmt.Printf("flat range: %d %d %d %d (native=%s)\n", ans.Count, ans.Sum, ans.Min, ans.Max, q.Config().Native)

	fmt.Printf("memory: %s\n", gridreduce.DefaultMemoryPool().GetStats())
}
