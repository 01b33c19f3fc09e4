package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/born-ml/digitnet/internal/train"
)

// report is the textual summary printed by eval.
type report struct {
	stats   train.EvalStats
	preds   []int
	labels  []int
	correct []int // per class
	total   []int // per class
}

func newReport(stats train.EvalStats, preds, labels []int, classes int) *report {
	r := &report{
		stats:   stats,
		preds:   preds,
		labels:  labels,
		correct: make([]int, classes),
		total:   make([]int, classes),
	}
	for i, y := range labels {
		r.total[y]++
		if preds[i] == y {
			r.correct[y]++
		}
	}
	return r
}

func (r *report) write(w io.Writer, show int) error {
	fmt.Fprintf(w, "samples=%d loss=%.4f accuracy=%.4f\n\n", r.stats.Samples, r.stats.MeanLoss, r.stats.Accuracy)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "class\tcorrect\ttotal\taccuracy")
	for c := range r.total {
		acc := 0.0
		if r.total[c] > 0 {
			acc = float64(r.correct[c]) / float64(r.total[c])
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.4f\n", c, r.correct[c], r.total[c], acc)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	show = min(show, len(r.labels))
	if show <= 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "sample\tlabel\tpredicted\t")
	for i := range show {
		mark := ""
		if r.preds[i] != r.labels[i] {
			mark = "x"
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", i, r.labels[i], r.preds[i], mark)
	}
	return tw.Flush()
}
